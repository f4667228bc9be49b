package nvme

import (
	"github.com/nisheethbhat/nvmeqemu/cmdset"
)

// Admin command opcodes, per spec.md §4.5.
const (
	OpDeleteSQ          = 0x00
	OpCreateSQ          = 0x01
	OpGetLogPage        = 0x02
	OpDeleteCQ          = 0x04
	OpCreateCQ          = 0x05
	OpIdentify          = 0x06
	OpAbort             = 0x08
	OpSetFeatures       = 0x09
	OpGetFeatures       = 0x0A
	OpAsyncEventRequest = 0x0C
)

// MQES is the Maximum Queue Entries Supported (0-based) CAP[15:0] encodes,
// per spec.md §6.
const MQES = 1023

func (c *Controller) dispatchAdmin(cmd Command) (cmdset.Status, uint32) {
	switch cmd.Opcode() {
	case OpDeleteSQ:
		return c.adminDeleteSQ(cmd), 0
	case OpCreateSQ:
		return c.adminCreateSQ(cmd), 0
	case OpGetLogPage:
		return cmdset.Success, 0
	case OpDeleteCQ:
		return c.adminDeleteCQ(cmd), 0
	case OpCreateCQ:
		return c.adminCreateCQ(cmd), 0
	case OpIdentify:
		return c.adminIdentify(cmd), 0
	case OpAbort:
		return c.adminAbort(cmd), 0
	case OpSetFeatures:
		return c.adminSetFeatures(cmd), 0
	case OpGetFeatures:
		return c.adminGetFeatures(cmd)
	case OpAsyncEventRequest:
		return cmdset.Success, 0
	default:
		return cmdset.InvalidOpcode, 0
	}
}

func (c *Controller) adminCreateCQ(cmd Command) cmdset.Status {
	qid := int(cmd.CDW(0) & 0xFFFF)
	qsize := uint16(cmd.CDW(0) >> 16)
	pc := cmd.CDW(1)&0x1 != 0
	ien := cmd.CDW(1)&0x2 != 0
	iv := uint16(cmd.CDW(1) >> 16)
	prp1 := cmd.PRP1()

	if qid == 0 || qid >= MaxQID {
		return cmdset.InvalidQueueIdentifier
	}
	if c.cq[qid].Live {
		return cmdset.InvalidQueueIdentifier
	}
	if uint32(qsize) > MQES {
		return cmdset.MaxQueueSizeExceeded
	}
	if !pc {
		return cmdset.InvalidField
	}
	if prp1 == 0 {
		return cmdset.InvalidField
	}

	c.cq[qid] = CompletionQueue{
		ID: qid, Size: qsize, BaseGPA: prp1, PhaseTag: 1,
		IRQEnabled: ien, MSIXVector: iv, Live: true,
	}
	return cmdset.Success
}

func (c *Controller) adminCreateSQ(cmd Command) cmdset.Status {
	qid := int(cmd.CDW(0) & 0xFFFF)
	qsize := uint16(cmd.CDW(0) >> 16)
	pc := cmd.CDW(1)&0x1 != 0
	prio := uint8((cmd.CDW(1) >> 1) & 0x3)
	cqid := int(cmd.CDW(1) >> 16)
	prp1 := cmd.PRP1()

	if qid == 0 || qid >= MaxQID {
		return cmdset.InvalidQueueIdentifier
	}
	if c.sq[qid].Live {
		return cmdset.InvalidQueueIdentifier
	}
	if cqid < 0 || cqid >= MaxQID || !c.cq[cqid].Live {
		return cmdset.CompletionQueueInvalid
	}
	if uint32(qsize) > MQES {
		return cmdset.MaxQueueSizeExceeded
	}
	if !pc {
		return cmdset.InvalidField
	}
	if prp1 == 0 {
		return cmdset.InvalidField
	}

	c.sq[qid] = SubmissionQueue{
		ID: qid, CQID: cqid, Size: qsize, Priority: prio, BaseGPA: prp1, Live: true,
	}
	c.cq[cqid].UsageCount++
	return cmdset.Success
}

func (c *Controller) adminDeleteSQ(cmd Command) cmdset.Status {
	qid := int(cmd.CDW(0) & 0xFFFF)
	if qid == 0 || qid >= MaxQID || !c.sq[qid].Live {
		return cmdset.InvalidQueueIdentifier
	}

	cqid := c.sq[qid].CQID
	c.sq[qid].Reset(qid)
	if c.cq[cqid].UsageCount > 0 {
		c.cq[cqid].UsageCount--
	}
	return cmdset.Success
}

func (c *Controller) adminDeleteCQ(cmd Command) cmdset.Status {
	qid := int(cmd.CDW(0) & 0xFFFF)
	if qid == 0 || qid >= MaxQID || !c.cq[qid].Live {
		return cmdset.InvalidQueueIdentifier
	}
	if c.cq[qid].UsageCount > 0 {
		return cmdset.InvalidField
	}

	c.cq[qid].Reset(qid)
	return cmdset.Success
}

func (c *Controller) adminIdentify(cmd Command) cmdset.Status {
	cns := cmd.CDW(0) & 0xFF

	var buf []byte
	if cns == 1 {
		buf = cmdset.BuildControllerIdentify(c.ident)
	} else {
		buf = cmdset.BuildNamespaceIdentify(cmdset.IdentParams{TotalBlocks: c.totalBlocks})
	}

	if err := c.host.DMAWrite(cmd.PRP1(), buf); err != nil {
		return cmdset.DataTransferError
	}
	return cmdset.Success
}

// adminAbort implements spec.md §4.5's ABORT handling: admin-queue aborts
// are rejected outright, the per-controller abort limit is enforced before
// any scan, and otherwise the target SQ's in-flight range is scanned for a
// matching command id.
func (c *Controller) adminAbort(cmd Command) cmdset.Status {
	sqid := int(cmd.CDW(0) & 0xFFFF)
	cid := uint16(cmd.CDW(0) >> 16)

	if sqid == 0 {
		return cmdset.RequestToAbortNotFound
	}
	if c.abortInflight >= AbortCommandLimit {
		return cmdset.AbortCommandLimitExceeded
	}
	if sqid >= MaxQID || !c.sq[sqid].Live {
		return cmdset.RequestToAbortNotFound
	}

	return c.scanAndMarkAbort(sqid, cid)
}

// scanAndMarkAbort walks sq's currently in-flight entries [head, tail) for
// one with command id cid. On a match it records the abort marker so the
// scheduler discards the command instead of executing it, per spec.md §9's
// abort-semantics design note.
func (c *Controller) scanAndMarkAbort(sqid int, cid uint16) cmdset.Status {
	sq := &c.sq[sqid]

	found := false
	for h := sq.Head; h != sq.Tail; h = (h + 1) % (sq.Size + 1) {
		buf := make([]byte, CommandSize)
		gpa := sq.BaseGPA + uint64(h)*CommandSize
		if err := c.host.DMARead(gpa, buf); err != nil {
			break
		}
		if DecodeCommand(buf).CommandID() == cid {
			found = true
			break
		}
	}

	if !found {
		return cmdset.RequestToAbortNotFound
	}
	if !sq.markAbort(cid) {
		return cmdset.AbortCommandLimitExceeded
	}
	c.abortInflight++
	return cmdset.Success
}

func (c *Controller) adminSetFeatures(cmd Command) cmdset.Status {
	fid := uint8(cmd.CDW(0) & 0xFF)
	if !c.features.Set(fid, cmd.CDW(1)) {
		return cmdset.InvalidField
	}
	return cmdset.Success
}

func (c *Controller) adminGetFeatures(cmd Command) (cmdset.Status, uint32) {
	fid := uint8(cmd.CDW(0) & 0xFF)
	val, ok := c.features.Get(fid)
	if !ok {
		return cmdset.InvalidField, 0
	}
	return cmdset.Success, val
}
