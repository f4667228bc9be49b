package cmdset

import (
	"bytes"
	"encoding/binary"
)

// PageSize is the NVMe/PRP page size used throughout this controller.
const PageSize = 4096

// PowerState mirrors the 32-byte NVMe power state descriptor, field for
// field, the way the teacher's nvmeIdentPowerState struct does for a real
// device's Identify Controller response.
type PowerState struct {
	MaxPower        uint16 // Centiwatts
	Rsvd2           uint8
	Flags           uint8
	EntryLat        uint32 // Microseconds
	ExitLat         uint32 // Microseconds
	ReadTput        uint8
	ReadLat         uint8
	WriteTput       uint8
	WriteLat        uint8
	IdlePower       uint16
	IdleScale       uint8
	Rsvd19          uint8
	ActivePower     uint16
	ActiveWorkScale uint8
	Rsvd23          [9]byte
} // 32 bytes

// LBAFormat mirrors the NVMe LBA Format descriptor.
type LBAFormat struct {
	Ms uint16
	Ds uint8
	Rp uint8
}

// ControllerIdentify is the 4096-byte Identify Controller data structure,
// populated per spec.md §4.5's fixed-value list instead of read back from a
// real device over ioctl.
type ControllerIdentify struct {
	VendorID     uint16
	Ssvid        uint16
	SerialNumber [20]byte
	ModelNumber  [40]byte
	Firmware     [8]byte
	Rab          uint8
	IEEE         [3]byte
	Cmic         uint8
	Mdts         uint8
	Cntlid       uint16
	Ver          uint32
	Rtd3r        uint32
	Rtd3e        uint32
	Oaes         uint32
	Rsvd96       [160]byte
	Oacs         uint16
	Acl          uint8
	Aerl         uint8
	Frmw         uint8
	Lpa          uint8
	Elpe         uint8
	Npss         uint8
	Avscc        uint8
	Apsta        uint8
	Wctemp       uint16
	Cctemp       uint16
	Mtfa         uint16
	Hmpre        uint32
	Hmmin        uint32
	Tnvmcap      [16]byte
	Unvmcap      [16]byte
	Rpmbs        uint32
	Rsvd316      [196]byte
	Sqes         uint8
	Cqes         uint8
	Rsvd514      [2]byte
	Nn           uint32
	Oncs         uint16
	Fuses        uint16
	Fna          uint8
	Vwc          uint8
	Awun         uint16
	Awupf        uint16
	Nvscc        uint8
	Rsvd531      uint8
	Acwu         uint16
	Rsvd534      [2]byte
	Sgls         uint32
	Rsvd540      [1508]byte
	Psd          [32]PowerState
	Vs           [1024]byte
} // 4096 bytes

// NamespaceIdentify is the 4096-byte Identify Namespace data structure.
type NamespaceIdentify struct {
	Nsze    uint64
	Ncap    uint64
	Nuse    uint64
	Nsfeat  uint8
	Nlbaf   uint8
	Flbas   uint8
	Mc      uint8
	Dpc     uint8
	Dps     uint8
	Nmic    uint8
	Rescap  uint8
	Fpi     uint8
	Rsvd33  uint8
	Nawun   uint16
	Nawupf  uint16
	Nacwu   uint16
	Nabsn   uint16
	Nabo    uint16
	Nabspf  uint16
	Rsvd46  [2]byte
	Nvmcap  [16]byte
	Rsvd64  [40]byte
	Nguid   [16]byte
	EUI64   [8]byte
	Lbaf    [16]LBAFormat
	Rsvd192 [192]byte
	Vs      [3712]byte
} // 4096 bytes

// IdentParams carries the fixed identity values spec.md §4.5 lists.
type IdentParams struct {
	SerialNumber string
	ModelNumber  string
	Firmware     string
	TotalBlocks  uint64
}

func putASCII(dst []byte, s string) {
	for i := range dst {
		if i < len(s) {
			dst[i] = s[i]
		} else {
			dst[i] = ' '
		}
	}
}

// BuildControllerIdentify fills the fixed-value Identify Controller
// structure spec.md §4.5 specifies: VID=0x8086, SSVID=0x0111, nn=1, acl=10,
// aerl=4, sqes=0x66, cqes=0x44.
func BuildControllerIdentify(p IdentParams) []byte {
	var ic ControllerIdentify

	ic.VendorID = 0x8086
	ic.Ssvid = 0x0111
	putASCII(ic.SerialNumber[:], p.SerialNumber)
	putASCII(ic.ModelNumber[:], p.ModelNumber)
	putASCII(ic.Firmware[:], p.Firmware)
	ic.Rab = 6
	ic.Mdts = 5 // 2^5 pages max transfer
	ic.Cntlid = 1
	ic.Ver = 0x00010000
	ic.Oacs = 0
	ic.Acl = 10
	ic.Aerl = 4
	ic.Sqes = 0x66
	ic.Cqes = 0x44
	ic.Nn = 1

	buf := &bytes.Buffer{}
	buf.Grow(PageSize)
	_ = binary.Write(buf, binary.LittleEndian, &ic)
	return buf.Bytes()
}

// BuildNamespaceIdentify fills the fixed-value Identify Namespace structure:
// size/capacity/utilization in blocks, lbaf0.lbads=9 (512-byte blocks).
func BuildNamespaceIdentify(p IdentParams) []byte {
	var ns NamespaceIdentify

	ns.Nsze = p.TotalBlocks
	ns.Ncap = p.TotalBlocks
	ns.Nuse = p.TotalBlocks
	ns.Nlbaf = 0
	ns.Flbas = 0
	ns.Lbaf[0] = LBAFormat{Ms: 0, Ds: 9, Rp: 0}

	buf := &bytes.Buffer{}
	buf.Grow(PageSize)
	_ = binary.Write(buf, binary.LittleEndian, &ns)
	return buf.Bytes()
}
