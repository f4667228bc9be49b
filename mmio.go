package nvme

// CSSOffset is the command-set-specific dword in BAR0, per spec.md §6: reads
// always return 0x1000, the offset of the SQ0 tail doorbell.
const CSSOffset = 0x0F00

// MMIORead dispatches a guest MMIO read of width 1/2/4 bytes against BAR0,
// per spec.md §6's layout. The command-set-specific dword reads 0x1000, the
// rest of the register window goes through the register file, and the
// doorbell region and anything beyond read as 0 — this controller exposes no
// other BAR0 content itself (the MSI-X table is appended, and serviced, by
// the host framework).
func (c *Controller) MMIORead(off, length int) uint32 {
	switch {
	case off >= CSSOffset && off < CSSOffset+4:
		return 0x1000
	case off < RegWindowSize:
		return c.ReadRegister(off, length)
	default:
		return 0
	}
}

// MMIOWrite dispatches a guest MMIO write of width 1/2/4 bytes against BAR0.
// Writes into the doorbell region go to the scheduler; writes into the
// register window (including the command-set-specific dword, which has no
// writable bits) go through the masked register primitive; anything else is
// dropped.
func (c *Controller) MMIOWrite(off int, val uint32, length int) {
	switch {
	case off >= DoorbellBase && off < DoorbellBase+8*MaxQID:
		c.OnDoorbellWrite(off, val)
	case off < RegWindowSize:
		c.WriteRegister(off, val, length)
	}
}
