package regs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTableShape(t *testing.T) {
	table := Default()
	assert.Len(t, table, 12)

	byOffset := make(map[int]Entry)
	for _, e := range table {
		byOffset[e.Offset] = e
	}

	cap0 := byOffset[OffCAPLow]
	assert.Equal(t, uint32(0x0F0103FF), cap0.Reset)
	assert.Equal(t, uint32(0), cap0.RWMask)

	cc := byOffset[OffCC]
	assert.Equal(t, uint32(0x00FFFFF1), cc.RWMask)

	intms := byOffset[OffINTMS]
	assert.Equal(t, uint32(0xFFFFFFFF), intms.RWSMask)

	intmc := byOffset[OffINTMC]
	assert.Equal(t, uint32(0xFFFFFFFF), intmc.RWCMask)
}

func TestMergeOverridesByOffset(t *testing.T) {
	base := Default()
	overridden := Merge(base, []Entry{
		{Offset: OffCC, Length: 4, RWMask: 0x1},
		{Offset: 0x800, Length: 4, Reset: 42},
	})

	assert.Len(t, overridden, len(base)+1)

	var gotCC, gotNew bool
	for _, e := range overridden {
		if e.Offset == OffCC {
			assert.Equal(t, uint32(0x1), e.RWMask)
			gotCC = true
		}
		if e.Offset == 0x800 {
			assert.Equal(t, uint32(42), e.Reset)
			gotNew = true
		}
	}
	assert.True(t, gotCC)
	assert.True(t, gotNew)

	// base is untouched
	for _, e := range base {
		if e.Offset == OffCC {
			assert.Equal(t, uint32(0x00FFFFF1), e.RWMask)
		}
	}
}
