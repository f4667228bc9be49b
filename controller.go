package nvme

import (
	"github.com/nisheethbhat/nvmeqemu/backend"
	"github.com/nisheethbhat/nvmeqemu/cmdset"
	"github.com/nisheethbhat/nvmeqemu/hostio"
	"github.com/nisheethbhat/nvmeqemu/regs"
)

// Controller is the singleton emulated NVMe controller, per spec.md §3. Its
// methods are single-dispatch-context only: every call must come from the
// host framework's serialized MMIO/timer callback path, never concurrently
// (spec.md §5).
type Controller struct {
	host hostio.HostOps
	cfg  Config
	reg  *RegisterFile

	sq [MaxQID]SubmissionQueue
	cq [MaxQID]CompletionQueue

	abortInflight int
	features      cmdset.Features
	ident         cmdset.IdentParams

	store       *backend.Store
	totalBlocks uint64

	schedArmed bool
	schedTimer hostio.Timer
}

// NewController creates a controller with registers reset to their defaults
// and no backing store opened yet; the store is opened on the first
// CC.EN 0→1 transition, per spec.md §3/§4.3.
func NewController(host hostio.HostOps, cfg Config) *Controller {
	c := &Controller{
		host: host,
		cfg:  cfg,
		reg:  NewRegisterFile(cfg.RegisterTable()),
		ident: cmdset.IdentParams{
			SerialNumber: "NVMEQEMU0000000000001",
			ModelNumber:  "Qemu NVMe Controller",
			Firmware:     "1.0",
		},
	}
	for i := range c.sq {
		c.sq[i].Reset(i)
	}
	for i := range c.cq {
		c.cq[i].Reset(i)
	}
	return c
}

// ReadRegister services a guest MMIO read from the register window.
func (c *Controller) ReadRegister(off, length int) uint32 {
	return c.reg.Read(off, length)
}

// WriteRegister services a guest MMIO write into the register window,
// applying the masked-write primitive and then checking for a CC.EN
// transition, per spec.md §4.1/§4.3.
func (c *Controller) WriteRegister(off int, val uint32, length int) {
	prevEN := c.reg.Raw32(regs.OffCC) & 1
	c.reg.Write(off, val, length)

	touchesCC := off < regs.OffCC+4 && off+length > regs.OffCC
	if !touchesCC {
		return
	}

	newEN := c.reg.Raw32(regs.OffCC) & 1
	switch {
	case prevEN == 0 && newEN == 1:
		c.enable()
	case prevEN == 1 && newEN == 0:
		c.disable()
	}
}
