package nvme

import "github.com/nisheethbhat/nvmeqemu/cmdset"

// I/O command opcodes, per spec.md §4.5.
const (
	OpIOFlush = 0x00
	OpIOWrite = 0x01
	OpIORead  = 0x02
)

func (c *Controller) dispatchIO(cmd Command) (cmdset.Status, uint32) {
	switch cmd.Opcode() {
	case OpIOFlush:
		return c.ioFlush(), 0
	case OpIOWrite:
		return c.ioWrite(cmd), 0
	case OpIORead:
		return c.ioRead(cmd), 0
	default:
		return cmdset.InvalidOpcode, 0
	}
}

// ioFlush is a no-op beyond an explicit Sync: the backing store is mapped
// MAP_SHARED, so writes are already visible to any other mapper, per
// spec.md §4.5.
func (c *Controller) ioFlush() cmdset.Status {
	if c.store != nil {
		_ = c.store.Sync()
	}
	return cmdset.Success
}

func (c *Controller) checkLBARange(cmd Command) (slba, nlb uint64, ok bool) {
	slba = cmd.SLBA()
	nlb = uint64(cmd.NLB()) + 1
	return slba, nlb, slba+nlb <= c.totalBlocks
}

// ioWrite copies guest memory, resolved via the command's PRP1/PRP2, into
// the backing store at the command's LBA range, per spec.md §4.5.
func (c *Controller) ioWrite(cmd Command) cmdset.Status {
	slba, nlb, ok := c.checkLBARange(cmd)
	if !ok {
		return cmdset.LBARange
	}
	if c.store == nil {
		return cmdset.Internal
	}

	total := int(nlb * BlockSize)
	data, err := cmdset.ReadAll(c.host, total, cmd.PRP1(), cmd.PRP2())
	if err != nil {
		return cmdset.DataTransferError
	}

	if err := c.store.WriteAt(int64(slba*BlockSize), data); err != nil {
		return cmdset.Internal
	}
	return cmdset.Success
}

// ioRead copies the backing store's data at the command's LBA range out to
// guest memory, resolved via PRP1/PRP2, per spec.md §4.5.
func (c *Controller) ioRead(cmd Command) cmdset.Status {
	slba, nlb, ok := c.checkLBARange(cmd)
	if !ok {
		return cmdset.LBARange
	}
	if c.store == nil {
		return cmdset.Internal
	}

	total := int(nlb * BlockSize)
	data := make([]byte, total)
	if err := c.store.ReadAt(int64(slba*BlockSize), data); err != nil {
		return cmdset.Internal
	}

	if err := cmdset.WriteAll(c.host, data, cmd.PRP1(), cmd.PRP2()); err != nil {
		return cmdset.DataTransferError
	}
	return cmdset.Success
}
