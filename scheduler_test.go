package nvme

import (
	"encoding/binary"
	"testing"

	"github.com/nisheethbhat/nvmeqemu/regs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario4PhaseTagWrap(t *testing.T) {
	c, host := newTestController(t)
	bringUp(c, 3, 3, 0x10000000, 0x10100000) // admin CQ size=3 -> 4 slots

	for i := 0; i < 5; i++ {
		cmd := buildRawCommand(OpAsyncEventRequest, uint16(i), 0, 0, 0, 0, 0, 0)
		copy(host.RAM[c.sq[0].BaseGPA+uint64(i%4)*CommandSize:], cmd)
		c.OnDoorbellWrite(DoorbellBase, uint32(i+1)%4)
		host.Drain(4)
		c.OnDoorbellWrite(DoorbellBase+4, uint32(i+1)%4) // guest consumes the CQE
	}

	phaseAt := func(tail uint16) uint16 {
		var buf [CompletionSize]byte
		copy(buf[:], host.RAM[c.cq[0].BaseGPA+uint64(tail)*CompletionSize:])
		return binary.LittleEndian.Uint16(buf[14:16]) & 1
	}

	// Slots 1-3 were only ever written once, with the pre-wrap phase.
	assert.Equal(t, uint16(1), phaseAt(1))
	assert.Equal(t, uint16(1), phaseAt(2))
	assert.Equal(t, uint16(1), phaseAt(3))
	// Slot 0 was written twice: once pre-wrap (phase 1), then again by the
	// 5th completion after the wrap (phase 0, the value left in memory).
	assert.Equal(t, uint16(0), phaseAt(0))
}

func TestDoorbellDropsInvalidQueueID(t *testing.T) {
	c, host := newTestController(t)
	bringUp(c, 63, 63, 0x10000000, 0x10100000)

	// Queue id 5 was never created; writing its tail doorbell must be a
	// silent no-op, not a panic or a spurious completion.
	c.OnDoorbellWrite(DoorbellBase+5*8, 1)
	host.Drain(4)

	assert.False(t, c.schedArmed)
}

func TestSchedulerDrainsIOSubmissionQueue(t *testing.T) {
	c, host := newTestController(t)
	bringUp(c, 63, 63, 0x10000000, 0x10100000)

	createCQ := buildRawCommand(OpCreateCQ, 1, 0, 0x30000000, 0, (63<<16)|1, (1<<16)|0x3, 0)
	copy(host.RAM[c.sq[0].BaseGPA:], createCQ)
	c.OnDoorbellWrite(DoorbellBase, 1)
	host.Drain(4)

	createSQ1 := buildRawCommand(OpCreateSQ, 2, 0, 0x31000000, 0, (63<<16)|1, (1<<16)|0x1, 0)
	copy(host.RAM[c.sq[0].BaseGPA+CommandSize:], createSQ1)
	c.OnDoorbellWrite(DoorbellBase, 2)
	host.Drain(4)

	require.True(t, c.sq[1].Live)

	for i := 0; i < 2; i++ {
		cmd := buildRawCommand(OpAsyncEventRequest, uint16(i), 0, 0, 0, 0, 0, 0)
		copy(host.RAM[c.sq[1].BaseGPA+uint64(i)*CommandSize:], cmd)
	}
	c.OnDoorbellWrite(DoorbellBase+1*8, 2)
	host.Drain(4)

	assert.True(t, c.sq[1].Empty())
	assert.Equal(t, uint16(2), c.cq[1].Tail)
}

func TestDisableCancelsPendingSchedulerTick(t *testing.T) {
	c, host := newTestController(t)
	bringUp(c, 63, 63, 0x10000000, 0x10100000)

	cmd := buildRawCommand(OpAsyncEventRequest, 1, 0, 0, 0, 0, 0, 0)
	copy(host.RAM[c.sq[0].BaseGPA:], cmd)
	c.OnDoorbellWrite(DoorbellBase, 1)
	require.True(t, c.schedArmed)

	c.WriteRegister(regs.OffCC, 0, 4) // EN: 1->0 before the tick fires
	assert.False(t, c.schedArmed)
	assert.Equal(t, 0, host.PendingCount())
}
