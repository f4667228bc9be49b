// Package cmdset holds the stateless pieces of the NVMe command engine:
// status codes, the fixed Identify payloads, feature-record storage and the
// PRP addressing walk. None of it touches queue or register state, so it has
// no dependency on the controller and can be unit tested in isolation.
package cmdset

// Status is an NVMe completion status: a status-code type (SCT) and a
// status code (SC), per spec.md §3's Completion layout and §7's taxonomy.
type Status struct {
	SCT uint8
	SC  uint8
}

// Word packs the status into the 16-bit completion status field: bit 0 is
// the phase tag (set to phase & 1, normally overwritten by the completion
// queue at push time), bits 1-8 the SC, bits 9-11 the SCT, bit 14 More,
// bit 15 Do-Not-Retry.
func (s Status) Word(phase uint8, more, dnr bool) uint16 {
	w := uint16(phase & 1)
	w |= uint16(s.SC) << 1
	w |= uint16(s.SCT&0x7) << 9
	if more {
		w |= 1 << 14
	}
	if dnr {
		w |= 1 << 15
	}
	return w
}

// Generic status codes (SCT=0), per spec.md §7.
var (
	Success           = Status{SCT: 0, SC: 0x00}
	InvalidOpcode     = Status{SCT: 0, SC: 0x01}
	InvalidField      = Status{SCT: 0, SC: 0x02}
	CommandIDConflict = Status{SCT: 0, SC: 0x03}
	DataTransferError = Status{SCT: 0, SC: 0x04}
	Internal          = Status{SCT: 0, SC: 0x06}
	AbortRequested    = Status{SCT: 0, SC: 0x07}
	AbortSQDeletion   = Status{SCT: 0, SC: 0x08}
	FusedFailed       = Status{SCT: 0, SC: 0x09}
	FusedMissing      = Status{SCT: 0, SC: 0x0A}
	InvalidNamespace  = Status{SCT: 0, SC: 0x0B}
	LBARange          = Status{SCT: 0, SC: 0x80}
	CapacityExceeded  = Status{SCT: 0, SC: 0x81}
	NamespaceNotReady = Status{SCT: 0, SC: 0x82}
)

// Command-specific status codes (SCT=1), per spec.md §7. SC 0x0A for
// RequestToAbortNotFound does not correspond to a code the real NVMe spec
// assigns to Abort; spec.md's source returns this outcome as its own status
// rather than Abort's usual "not found" result bit, so it is given a free
// command-specific slot here (see DESIGN.md).
var (
	CompletionQueueInvalid    = Status{SCT: 1, SC: 0x00}
	InvalidQueueIdentifier    = Status{SCT: 1, SC: 0x01}
	MaxQueueSizeExceeded      = Status{SCT: 1, SC: 0x02}
	AbortCommandLimitExceeded = Status{SCT: 1, SC: 0x03}
	InvalidInterruptVector    = Status{SCT: 1, SC: 0x08}
	InvalidLogPage            = Status{SCT: 1, SC: 0x09}
	RequestToAbortNotFound    = Status{SCT: 1, SC: 0x0A}
)
