package cmdset

// Feature identifiers for Get/Set Features (cdw10.fid), per spec.md §3/§4.5.
const (
	FeatArbitration            = 0x01
	FeatPowerManagement        = 0x02
	FeatLBARangeType           = 0x03
	FeatTemperatureThreshold   = 0x04
	FeatErrorRecovery          = 0x05
	FeatVolatileWriteCache     = 0x06
	FeatNumberOfQueues         = 0x07
	FeatInterruptCoalescing    = 0x08
	FeatInterruptVectorConfig  = 0x09
	FeatWriteAtomicity         = 0x0A
	FeatAsyncEventConfig       = 0x0B
	FeatSoftwareProgressMarker = 0x80
)

// Features holds the current value of every settable feature spec.md §3
// names. LBA-range-type is stubbed as a raw byte buffer since its content is
// explicitly out of scope (spec.md §4.5).
type Features struct {
	Arbitration            uint32
	PowerManagement        uint32
	LBARangeType           [64]byte
	TemperatureThreshold   uint32
	ErrorRecovery          uint32
	VolatileWriteCache     uint32
	NumberOfQueues         uint32
	InterruptCoalescing    uint32
	InterruptVectorConfig  uint32
	WriteAtomicity         uint32
	AsyncEventConfig       uint32
	SoftwareProgressMarker uint32
}

// Get returns the current dword value for the named feature. The LBA range
// type feature has no scalar value; callers needing its buffer should read
// LBARangeType directly.
func (f *Features) Get(fid uint8) (uint32, bool) {
	switch fid {
	case FeatArbitration:
		return f.Arbitration, true
	case FeatPowerManagement:
		return f.PowerManagement, true
	case FeatTemperatureThreshold:
		return f.TemperatureThreshold, true
	case FeatErrorRecovery:
		return f.ErrorRecovery, true
	case FeatVolatileWriteCache:
		return f.VolatileWriteCache, true
	case FeatNumberOfQueues:
		return f.NumberOfQueues, true
	case FeatInterruptCoalescing:
		return f.InterruptCoalescing, true
	case FeatInterruptVectorConfig:
		return f.InterruptVectorConfig, true
	case FeatWriteAtomicity:
		return f.WriteAtomicity, true
	case FeatAsyncEventConfig:
		return f.AsyncEventConfig, true
	case FeatSoftwareProgressMarker:
		return f.SoftwareProgressMarker, true
	case FeatLBARangeType:
		return 0, true
	default:
		return 0, false
	}
}

// Set stores val as the new value for the named feature. Reports false for
// an unrecognized feature id.
func (f *Features) Set(fid uint8, val uint32) bool {
	switch fid {
	case FeatArbitration:
		f.Arbitration = val
	case FeatPowerManagement:
		f.PowerManagement = val
	case FeatTemperatureThreshold:
		f.TemperatureThreshold = val
	case FeatErrorRecovery:
		f.ErrorRecovery = val
	case FeatVolatileWriteCache:
		f.VolatileWriteCache = val
	case FeatNumberOfQueues:
		f.NumberOfQueues = val
	case FeatInterruptCoalescing:
		f.InterruptCoalescing = val
	case FeatInterruptVectorConfig:
		f.InterruptVectorConfig = val
	case FeatWriteAtomicity:
		f.WriteAtomicity = val
	case FeatAsyncEventConfig:
		f.AsyncEventConfig = val
	case FeatSoftwareProgressMarker:
		f.SoftwareProgressMarker = val
	case FeatLBARangeType:
		// stubbed: value carried via DMA buffer, not a scalar dword.
	default:
		return false
	}
	return true
}
