package nvme

import (
	"github.com/nisheethbhat/nvmeqemu/hostio"
)

// MaxQID is one past the highest valid queue id; id 0 is reserved for the
// admin queue pair.
const MaxQID = 64

// AbortCommandLimit bounds the number of simultaneously pending abort
// markers per spec.md §3.
const AbortCommandLimit = 10

// SubmissionQueue is the controller's view of a guest-resident circular
// buffer of 64-byte commands. Only head/tail/phase-adjacent bookkeeping and
// the base GPA live here; the entries themselves are never copied out except
// one at a time via Pop.
type SubmissionQueue struct {
	ID             int
	CQID           int
	Head           uint16
	Tail           uint16
	Priority       uint8
	Size           uint16 // 0-based, matches MQES encoding
	BaseGPA        uint64
	Live           bool
	AbortCmdIDs    [AbortCommandLimit]uint16
	AbortCmdIDSet  [AbortCommandLimit]bool
}

// Empty reports whether the queue has no unprocessed entries.
func (sq *SubmissionQueue) Empty() bool {
	return sq.Head == sq.Tail
}

// Peek reads one 64-byte command at the current head via DMA without
// advancing head. The scheduler uses this so a command whose completion
// can't yet be posted (CQ full) leaves the queue untouched for retry.
func (sq *SubmissionQueue) Peek(host hostio.HostOps) (Command, error) {
	buf := make([]byte, CommandSize)
	gpa := sq.BaseGPA + uint64(sq.Head)*CommandSize
	if err := host.DMARead(gpa, buf); err != nil {
		return Command{}, err
	}
	return DecodeCommand(buf), nil
}

// Advance moves head forward by one slot, modulo size+1.
func (sq *SubmissionQueue) Advance() {
	sq.Head = (sq.Head + 1) % (sq.Size + 1)
}

// Pop reads one 64-byte command at the current head via DMA and advances
// head modulo size+1. Callers must first check Empty.
func (sq *SubmissionQueue) Pop(host hostio.HostOps) (Command, error) {
	cmd, err := sq.Peek(host)
	if err != nil {
		return Command{}, err
	}
	sq.Advance()
	return cmd, nil
}

// markAbort records cid as a pending abort target, returning false if the
// per-SQ abort slot table is already full.
func (sq *SubmissionQueue) markAbort(cid uint16) bool {
	for i, used := range sq.AbortCmdIDSet {
		if !used {
			sq.AbortCmdIDs[i] = cid
			sq.AbortCmdIDSet[i] = true
			return true
		}
	}
	return false
}

// AbortMatch checks whether cid is a pending abort target for this queue; if
// so it clears the slot and reports true so the scheduler can discard the
// command instead of executing it.
func (sq *SubmissionQueue) AbortMatch(cid uint16) bool {
	for i, used := range sq.AbortCmdIDSet {
		if used && sq.AbortCmdIDs[i] == cid {
			sq.AbortCmdIDSet[i] = false
			return true
		}
	}
	return false
}

// Reset zeroes the queue descriptor back to its unallocated state.
func (sq *SubmissionQueue) Reset(id int) {
	*sq = SubmissionQueue{ID: id}
}

// CompletionQueue is the controller's view of a guest-resident circular
// buffer of 16-byte completions.
type CompletionQueue struct {
	ID          int
	Head        uint16
	Tail        uint16
	Size        uint16 // 0-based
	BaseGPA     uint64
	IRQEnabled  bool
	MSIXVector  uint16
	PhaseTag    uint8
	UsageCount  int
	Live        bool
}

// Full reports whether the queue has exactly one free slot left, per
// spec.md §3's `(tail+1) mod (size+1) == head` definition.
func (cq *CompletionQueue) Full() bool {
	return (cq.Tail+1)%(cq.Size+1) == cq.Head
}

// Push writes one completion at the current tail via DMA with the queue's
// current phase tag, advances tail modulo size+1, and flips the phase tag
// when tail wraps to 0. Callers must first check Full.
func (cq *CompletionQueue) Push(host hostio.HostOps, c Completion) error {
	status := c.Status
	status = (status &^ 1) | uint16(cq.PhaseTag&1)
	c.Status = status

	enc := c.Encode()
	gpa := cq.BaseGPA + uint64(cq.Tail)*CompletionSize
	if err := host.DMAWrite(gpa, enc[:]); err != nil {
		return err
	}

	cq.Tail = (cq.Tail + 1) % (cq.Size + 1)
	if cq.Tail == 0 {
		cq.PhaseTag ^= 1
	}
	return nil
}

// Reset zeroes the queue descriptor back to its unallocated state.
func (cq *CompletionQueue) Reset(id int) {
	*cq = CompletionQueue{ID: id}
}
