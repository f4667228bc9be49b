package hostio

import "fmt"

// FakeHost is an in-process stand-in for the hypervisor framework. It backs
// guest physical memory with a flat byte slice and runs deferred timers only
// when the caller explicitly asks it to (Fire), which keeps the single-
// threaded cooperative model from spec.md §5 deterministic under test and
// under the cmd/nvmectl reference driver alike.
type FakeHost struct {
	RAM           []byte
	RaisedVectors []uint16

	pending []fakeTimer
	nextID  int
}

type fakeTimer struct {
	id        int
	ns        uint64
	cb        func()
	cancelled bool
}

type fakeCancel struct {
	host *FakeHost
	id   int
}

func (c fakeCancel) Cancel() {
	for i := range c.host.pending {
		if c.host.pending[i].id == c.id {
			c.host.pending[i].cancelled = true
		}
	}
}

// NewFakeHost allocates a FakeHost with ramSize bytes of guest memory.
func NewFakeHost(ramSize int) *FakeHost {
	return &FakeHost{RAM: make([]byte, ramSize)}
}

func (h *FakeHost) DMARead(gpa uint64, buf []byte) error {
	if gpa > uint64(len(h.RAM)) || gpa+uint64(len(buf)) > uint64(len(h.RAM)) {
		return fmt.Errorf("hostio: dma read out of range: gpa=%#x len=%d", gpa, len(buf))
	}
	copy(buf, h.RAM[gpa:gpa+uint64(len(buf))])
	return nil
}

func (h *FakeHost) DMAWrite(gpa uint64, buf []byte) error {
	if gpa > uint64(len(h.RAM)) || gpa+uint64(len(buf)) > uint64(len(h.RAM)) {
		return fmt.Errorf("hostio: dma write out of range: gpa=%#x len=%d", gpa, len(buf))
	}
	copy(h.RAM[gpa:gpa+uint64(len(buf))], buf)
	return nil
}

func (h *FakeHost) RaiseMSIX(vector uint16) {
	h.RaisedVectors = append(h.RaisedVectors, vector)
}

func (h *FakeHost) ScheduleAfter(ns uint64, cb func()) Timer {
	h.nextID++
	h.pending = append(h.pending, fakeTimer{id: h.nextID, ns: ns, cb: cb})
	return fakeCancel{host: h, id: h.nextID}
}

// Fire runs every currently pending, non-cancelled timer once. Callbacks that
// re-arm a new timer (as the doorbell scheduler does) queue into the next
// Fire rather than running re-entrantly.
func (h *FakeHost) Fire() {
	due := h.pending
	h.pending = nil
	for _, t := range due {
		if !t.cancelled {
			t.cb()
		}
	}
}

// Drain repeatedly fires pending timers until none remain or the iteration
// budget is exhausted, for tests that want the scheduler to run to quiescence.
func (h *FakeHost) Drain(maxIterations int) {
	for i := 0; i < maxIterations && h.PendingCount() > 0; i++ {
		h.Fire()
	}
}

func (h *FakeHost) PendingCount() int {
	n := 0
	for _, t := range h.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}
