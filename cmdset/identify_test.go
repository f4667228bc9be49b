package cmdset

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyStructSizes(t *testing.T) {
	// Struct layouts must stay byte-exact with the NVMe wire format, the
	// same invariant the teacher checks for its passthrough structs.
	assert.Equal(t, uintptr(32), unsafe.Sizeof(PowerState{}))
	assert.Equal(t, uintptr(4096), unsafe.Sizeof(ControllerIdentify{}))
	assert.Equal(t, uintptr(4096), unsafe.Sizeof(NamespaceIdentify{}))
}

func TestBuildControllerIdentify(t *testing.T) {
	buf := BuildControllerIdentify(IdentParams{
		SerialNumber: "NVMEQEMU0000000000001",
		ModelNumber:  "Qemu NVMe Controller",
		Firmware:     "1.0",
	})

	assert.Len(t, buf, PageSize)
	assert.Equal(t, uint16(0x8086), binary.LittleEndian.Uint16(buf[0:2]))
	assert.Equal(t, uint16(0x0111), binary.LittleEndian.Uint16(buf[2:4]))
	assert.True(t, bytes.HasPrefix(buf[24:64], []byte("Qemu NVMe Controller")))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[516:520]))
	assert.Equal(t, byte(0x66), buf[512])
	assert.Equal(t, byte(0x44), buf[513])
}

func TestBuildNamespaceIdentify(t *testing.T) {
	buf := BuildNamespaceIdentify(IdentParams{TotalBlocks: 2097152})

	assert.Len(t, buf, PageSize)
	assert.Equal(t, uint64(2097152), binary.LittleEndian.Uint64(buf[0:8]))
	assert.Equal(t, uint64(2097152), binary.LittleEndian.Uint64(buf[8:16]))
	// lbaf0 starts at offset 128; Ds (lbads) is its third byte.
	assert.Equal(t, byte(9), buf[128+2])
}
