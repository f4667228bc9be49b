package nvme

import (
	"encoding/binary"

	"github.com/nisheethbhat/nvmeqemu/regs"
)

// RegWindowSize is the size of the byte-addressable controller register
// window below the doorbells, per spec.md §4.1.
const RegWindowSize = 4096

// RegisterFile is the byte-addressable register array with per-byte
// RO/RW/W1C/W1S masks, per spec.md §4.1. INTMS/INTMC are special-cased: their
// "register" storage is really the shadow intr_vect, per spec.md §3/§4.1.
type RegisterFile struct {
	reg [RegWindowSize]byte
	rw  [RegWindowSize]byte
	rwc [RegWindowSize]byte
	rws [RegWindowSize]byte
	use [RegWindowSize]byte

	intrVect    uint32
	msixEnabled bool
}

// NewRegisterFile builds a register file from the given declarative table,
// with every byte outside the table left RO zero.
func NewRegisterFile(table []regs.Entry) *RegisterFile {
	rf := &RegisterFile{}
	rf.ApplyTable(table)
	return rf
}

// ApplyTable (re)applies reset values and masks from table, expanding each
// multi-byte Entry into its constituent bytes. Bytes not covered by any
// entry are reset to RO zero.
func (rf *RegisterFile) ApplyTable(table []regs.Entry) {
	rf.reg = [RegWindowSize]byte{}
	rf.rw = [RegWindowSize]byte{}
	rf.rwc = [RegWindowSize]byte{}
	rf.rws = [RegWindowSize]byte{}
	rf.use = [RegWindowSize]byte{}

	for _, e := range table {
		var resetBuf [4]byte
		binary.LittleEndian.PutUint32(resetBuf[:], e.Reset)

		for i := 0; i < e.Length; i++ {
			off := e.Offset + i
			if off < 0 || off >= RegWindowSize {
				continue
			}
			rf.reg[off] = resetBuf[i]
			rf.rw[off] = byte(e.RWMask >> (8 * uint(i)))
			rf.rwc[off] = byte(e.RWCMask >> (8 * uint(i)))
			rf.rws[off] = byte(e.RWSMask >> (8 * uint(i)))
			rf.use[off] = 0xFF
		}
	}
}

// SetMSIXEnabled records whether MSI-X interrupt masking is in effect, which
// changes INTMS/INTMC read behavior per spec.md §4.1.
func (rf *RegisterFile) SetMSIXEnabled(enabled bool) {
	rf.msixEnabled = enabled
}

func clipLength(off, length int) int {
	if off >= RegWindowSize {
		return 0
	}
	if off+length > RegWindowSize {
		return RegWindowSize - off
	}
	return length
}

// Read returns the little-endian integer assembled from length bytes
// starting at off, where length is 1, 2 or 4. Out-of-range or misaligned
// reads never panic: length is tail-clipped at the register window edge.
func (rf *RegisterFile) Read(off, length int) uint32 {
	length = clipLength(off, length)
	if length <= 0 {
		return 0
	}

	if off == regs.OffINTMS || off == regs.OffINTMC {
		if rf.msixEnabled {
			return 0
		}
		return rf.intrVect
	}

	var buf [4]byte
	copy(buf[:], rf.reg[off:off+length])
	return binary.LittleEndian.Uint32(buf[:])
}

// Write applies a masked write of length bytes at off, per spec.md §4.1's
// per-byte formula. INTMS/INTMC writes apply the same W1C/W1S arithmetic to
// the shadow intr_vect instead of the register bytes.
func (rf *RegisterFile) Write(off int, val uint32, length int) {
	length = clipLength(off, length)
	if length <= 0 {
		return
	}

	var valBuf [4]byte
	binary.LittleEndian.PutUint32(valBuf[:], val)

	if off == regs.OffINTMS || off == regs.OffINTMC {
		rf.writeIntrVect(off, valBuf, length)
		return
	}

	for i := 0; i < length; i++ {
		b := off + i
		valByte := valBuf[i]

		keepMask := ^rf.rw[b] | ^rf.use[b]
		rf.reg[b] = (rf.reg[b] & keepMask) | (valByte & rf.rw[b])
		rf.reg[b] &^= valByte & rf.rwc[b]
		rf.reg[b] |= valByte & rf.rws[b]
	}
}

func (rf *RegisterFile) writeIntrVect(off int, valBuf [4]byte, length int) {
	var vectBuf [4]byte
	binary.LittleEndian.PutUint32(vectBuf[:], rf.intrVect)

	for i := 0; i < length; i++ {
		b := off + i
		valByte := valBuf[i]

		vectBuf[i] &^= valByte & rf.rwc[b]
		vectBuf[i] |= valByte & rf.rws[b]
	}

	rf.intrVect = binary.LittleEndian.Uint32(vectBuf[:])
}

// Raw32 reads a raw little-endian dword directly from register storage,
// bypassing masks. Used by the controller FSM to read ASQ/ACQ/AQA without
// going through the guest-facing masked path.
func (rf *RegisterFile) Raw32(off int) uint32 {
	if off < 0 || off+4 > RegWindowSize {
		return 0
	}
	return binary.LittleEndian.Uint32(rf.reg[off : off+4])
}

// SetRaw32 writes a raw little-endian dword directly into register storage,
// bypassing masks. Used by the controller FSM to set CSTS.RDY and similar
// fields that are not guest-writable.
func (rf *RegisterFile) SetRaw32(off int, val uint32) {
	if off < 0 || off+4 > RegWindowSize {
		return
	}
	binary.LittleEndian.PutUint32(rf.reg[off:off+4], val)
}
