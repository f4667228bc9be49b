package nvme

import (
	"testing"

	"github.com/nisheethbhat/nvmeqemu/hostio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionQueueEmptyAndPop(t *testing.T) {
	host := hostio.NewFakeHost(1 << 20)
	sq := &SubmissionQueue{ID: 1, Size: 3, BaseGPA: 0x10000}
	assert.True(t, sq.Empty())

	raw := buildRawCommand(0x01, 42, 1, 0, 0, 0, 0, 0)
	copy(host.RAM[sq.BaseGPA:], raw)
	sq.Tail = 1

	cmd, err := sq.Pop(host)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), cmd.CommandID())
	assert.Equal(t, uint16(1), sq.Head)
	assert.True(t, sq.Empty())
}

func TestSubmissionQueueHeadWraps(t *testing.T) {
	host := hostio.NewFakeHost(1 << 20)
	sq := &SubmissionQueue{ID: 1, Size: 3, BaseGPA: 0x10000, Head: 3}
	_, err := sq.Pop(host)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), sq.Head)
}

func TestAbortMarkAndMatch(t *testing.T) {
	sq := &SubmissionQueue{ID: 1}
	assert.True(t, sq.markAbort(0x9999))
	assert.True(t, sq.AbortMatch(0x9999))
	assert.False(t, sq.AbortMatch(0x9999)) // cleared after first match
}

func TestAbortSlotsBounded(t *testing.T) {
	sq := &SubmissionQueue{ID: 1}
	for i := 0; i < AbortCommandLimit; i++ {
		assert.True(t, sq.markAbort(uint16(i)))
	}
	assert.False(t, sq.markAbort(9999))
}

func TestCompletionQueueFull(t *testing.T) {
	cq := &CompletionQueue{ID: 0, Size: 3}
	assert.False(t, cq.Full())
	cq.Tail = 3
	cq.Head = 0
	assert.True(t, cq.Full())
}

func TestCompletionQueuePushAdvancesAndWrapsPhase(t *testing.T) {
	host := hostio.NewFakeHost(1 << 20)
	cq := &CompletionQueue{ID: 0, Size: 3, BaseGPA: 0x20000, PhaseTag: 1}

	for i := 0; i < 4; i++ {
		require.False(t, cq.Full())
		require.NoError(t, cq.Push(host, Completion{CommandID: uint16(i)}))
		cq.Head = cq.Tail // guest consumes the entry
	}

	// tail wrapped 0->1->2->3->0, phase flipped once at the wrap to 0.
	assert.Equal(t, uint16(0), cq.Tail)
	assert.Equal(t, uint8(0), cq.PhaseTag)
}

func TestCompletionQueuePhaseBitsPerSpecScenario4(t *testing.T) {
	// spec.md §8 scenario 4: admin CQ size=3 (4 slots); first four
	// completions (tail 0..3) carry phase=1, the fifth (tail wraps to 0)
	// carries phase=0.
	host := hostio.NewFakeHost(1 << 20)
	cq := &CompletionQueue{ID: 0, Size: 3, BaseGPA: 0x30000, PhaseTag: 1}

	var lastPhase uint8
	for i := 0; i < 5; i++ {
		require.False(t, cq.Full())
		lastPhase = cq.PhaseTag
		require.NoError(t, cq.Push(host, Completion{}))
		cq.Head = cq.Tail // guest consumes the entry
	}
	assert.Equal(t, uint8(0), lastPhase)
}
