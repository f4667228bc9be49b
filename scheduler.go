package nvme

// DoorbellBase is the guest MMIO offset where the doorbell region begins,
// per spec.md §4.4/§6.
const DoorbellBase = 0x1000

// SchedulerTickNS is the deferred-timer delay armed by a submission
// doorbell write, per spec.md §4.4.
const SchedulerTickNS = 5000

// EntriesToProcess bounds how many commands the scheduler executes in a
// single tick before re-arming, per spec.md §4.4.
const EntriesToProcess = 4

// OnDoorbellWrite decodes a write into the doorbell region and applies it,
// per spec.md §4.4. Even slots are SQ tail doorbells, odd slots are CQ head
// doorbells; queue id = slot/2. Writes to an unallocated queue id are
// dropped silently, with no completion posted.
func (c *Controller) OnDoorbellWrite(off int, val uint32) {
	rel := off - DoorbellBase
	if rel < 0 || rel >= 8*MaxQID {
		return
	}

	qid := rel / 8
	isSQTail := rel%8 == 0

	if isSQTail {
		if !c.sq[qid].Live {
			return
		}
		c.sq[qid].Tail = uint16(val & 0xFFFF)
		c.armScheduler()
		return
	}

	if !c.cq[qid].Live {
		return
	}
	c.cq[qid].Head = uint16(val & 0xFFFF)
}

// armScheduler arms the drain timer if one isn't already pending, per
// spec.md §4.4's "record the deadline; otherwise leave the pending tick
// alone" rule. sched_deadline_ns itself has no host-visible read primitive,
// so schedArmed stands in as the 0-vs-nonzero marker spec.md §3 describes.
func (c *Controller) armScheduler() {
	if c.schedArmed {
		return
	}
	c.schedArmed = true
	c.schedTimer = c.host.ScheduleAfter(SchedulerTickNS, c.tick)
}

// cancelScheduler cancels any pending tick and idles the scheduler, per
// spec.md §4.3's CC.EN 1→0 cancellation rule and §5's "only CC.EN: 1→0
// cancels in-flight work".
func (c *Controller) cancelScheduler() {
	if c.schedTimer != nil {
		c.schedTimer.Cancel()
	}
	c.schedTimer = nil
	c.schedArmed = false
}

// tick drains submission queues round-robin, per spec.md §4.4: one entry
// per live, non-empty SQ per pass, up to EntriesToProcess entries total: a
// fairness policy chosen per spec.md §5's reference rule. Re-arms
// immediately if the budget was exhausted with work remaining.
func (c *Controller) tick() {
	c.schedArmed = false
	c.schedTimer = nil

	budget := EntriesToProcess
	for budget > 0 {
		progressed := false
		for qid := 0; qid < MaxQID; qid++ {
			if budget == 0 {
				break
			}
			sq := &c.sq[qid]
			if !sq.Live || sq.Empty() {
				continue
			}
			c.executeOne(qid)
			budget--
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if c.hasPendingWork() {
		c.armScheduler()
	}
}

func (c *Controller) hasPendingWork() bool {
	for qid := 0; qid < MaxQID; qid++ {
		if c.sq[qid].Live && !c.sq[qid].Empty() {
			return true
		}
	}
	return false
}

// executeOne runs the command at the head of sq[qid] and posts its
// completion, per spec.md §4.4's ordering: if the owning CQ is full, the
// command is left unread (sq.head untouched) for retry next tick; otherwise
// it is read, executed, the CQE pushed, sq.head advanced, then the
// interrupt raised — in that order, so the guest never observes a
// completion before its CQE DMA retires.
func (c *Controller) executeOne(qid int) {
	sq := &c.sq[qid]
	cq := &c.cq[sq.CQID]

	if cq.Full() {
		return
	}

	cmd, err := sq.Peek(c.host)
	if err != nil {
		return
	}

	if sq.AbortMatch(cmd.CommandID()) {
		if c.abortInflight > 0 {
			c.abortInflight--
		}
		sq.Advance()
		return
	}

	status, cmdSpecific := c.executeCommand(qid, cmd)
	nextHead := (sq.Head + 1) % (sq.Size + 1)

	cqe := Completion{
		CmdSpecific: cmdSpecific,
		SQHead:      nextHead,
		SQID:        uint16(qid),
		CommandID:   cmd.CommandID(),
		Status:      status.Word(cq.PhaseTag, false, false),
	}

	if err := cq.Push(c.host, cqe); err != nil {
		return
	}
	sq.Head = nextHead

	if qid == 0 {
		c.host.RaiseMSIX(0)
	} else if cq.IRQEnabled {
		c.host.RaiseMSIX(cq.MSIXVector)
	}
}
