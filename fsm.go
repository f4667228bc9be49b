package nvme

import (
	"github.com/nisheethbhat/nvmeqemu/backend"
	"github.com/nisheethbhat/nvmeqemu/regs"
)

func (c *Controller) asq() uint64 {
	return uint64(c.reg.Raw32(regs.OffASQHigh))<<32 | uint64(c.reg.Raw32(regs.OffASQLow))
}

func (c *Controller) acq() uint64 {
	return uint64(c.reg.Raw32(regs.OffACQHigh))<<32 | uint64(c.reg.Raw32(regs.OffACQLow))
}

// enable implements the disabled→enabled CC.EN transition of spec.md §4.3:
// open the backing store, stand up the admin queue pair from AQA/ASQ/ACQ,
// and set CSTS.RDY. Leaves CSTS.RDY at 0, without signalling an error, when
// ASQ/ACQ are unset or the backing store can't be opened — this device
// never becomes permanently fatal after attach (spec.md §7).
func (c *Controller) enable() {
	asq, acq := c.asq(), c.acq()
	if asq == 0 || acq == 0 {
		return
	}

	store, err := backend.Open(c.cfg.ImagePath, c.cfg.ImageSize)
	if err != nil {
		return
	}

	aqa := c.reg.Raw32(regs.OffAQA)
	sqSize := uint16(aqa & 0xFFF)
	cqSize := uint16((aqa >> 16) & 0xFFF)

	c.store = store
	c.totalBlocks = uint64(c.cfg.ImageSize) / BlockSize

	c.sq[0] = SubmissionQueue{ID: 0, CQID: 0, Size: sqSize, BaseGPA: asq, Live: true}
	c.cq[0] = CompletionQueue{ID: 0, Size: cqSize, BaseGPA: acq, PhaseTag: 1, Live: true, UsageCount: 1}

	c.reg.SetRaw32(regs.OffCSTS, 1)
}

// disable implements the enabled→disabled CC.EN transition of spec.md §4.3:
// cancel the scheduler, zero every queue descriptor, close the backing
// store, then re-apply the reset table while preserving the guest's
// AQA/ASQ/ACQ programming so it can re-enable without reprogramming them.
func (c *Controller) disable() {
	c.cancelScheduler()

	aqa := c.reg.Raw32(regs.OffAQA)
	asqLow := c.reg.Raw32(regs.OffASQLow)
	asqHigh := c.reg.Raw32(regs.OffASQHigh)
	acqLow := c.reg.Raw32(regs.OffACQLow)
	acqHigh := c.reg.Raw32(regs.OffACQHigh)

	for i := range c.sq {
		c.sq[i].Reset(i)
	}
	for i := range c.cq {
		c.cq[i].Reset(i)
	}
	c.abortInflight = 0

	if c.store != nil {
		c.store.Close()
		c.store = nil
	}

	c.reg.ApplyTable(c.cfg.RegisterTable())
	c.reg.SetRaw32(regs.OffAQA, aqa)
	c.reg.SetRaw32(regs.OffASQLow, asqLow)
	c.reg.SetRaw32(regs.OffASQHigh, asqHigh)
	c.reg.SetRaw32(regs.OffACQLow, acqLow)
	c.reg.SetRaw32(regs.OffACQHigh, acqHigh)
	c.reg.SetRaw32(regs.OffCSTS, 0)
}
