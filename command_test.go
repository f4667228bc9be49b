package nvme

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildRawCommand(opcode uint8, cid uint16, nsid uint32, prp1, prp2 uint64, cdw10, cdw11, cdw12 uint32) []byte {
	buf := make([]byte, CommandSize)
	buf[0] = opcode
	binary.LittleEndian.PutUint16(buf[2:4], cid)
	binary.LittleEndian.PutUint32(buf[4:8], nsid)
	binary.LittleEndian.PutUint64(buf[24:32], prp1)
	binary.LittleEndian.PutUint64(buf[32:40], prp2)
	binary.LittleEndian.PutUint32(buf[40:44], cdw10)
	binary.LittleEndian.PutUint32(buf[44:48], cdw11)
	binary.LittleEndian.PutUint32(buf[48:52], cdw12)
	return buf
}

func TestDecodeCommandFields(t *testing.T) {
	raw := buildRawCommand(0x06, 7, 1, 0x20000000, 0, 1, 0, 0)
	cmd := DecodeCommand(raw)

	assert.Equal(t, uint8(0x06), cmd.Opcode())
	assert.Equal(t, uint16(7), cmd.CommandID())
	assert.Equal(t, uint32(1), cmd.NSID())
	assert.Equal(t, uint64(0x20000000), cmd.PRP1())
	assert.Equal(t, uint32(1), cmd.CDW(0))
}

func TestCommandSLBANLB(t *testing.T) {
	raw := buildRawCommand(0x01, 1, 1, 0x1000, 0, 0, 0, 7)
	cmd := DecodeCommand(raw)

	assert.Equal(t, uint64(0), cmd.SLBA())
	assert.Equal(t, uint16(7), cmd.NLB())
}

func TestCompletionEncode(t *testing.T) {
	c := Completion{SQHead: 1, SQID: 0, CommandID: 7, Status: 0x0001}
	enc := c.Encode()

	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(enc[8:10]))
	assert.Equal(t, uint16(7), binary.LittleEndian.Uint16(enc[12:14]))
	assert.Equal(t, uint16(0x0001), binary.LittleEndian.Uint16(enc[14:16]))
}
