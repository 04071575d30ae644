// Package replacement implements the four pluggable page-replacement
// policies the buffer pool dispatches to when no empty frame is available:
// FIFO, LRU (Tanenbaum aging-matrix), CLOCK (second-chance), and LFU.
package replacement

import "github.com/tuannm99/novasql/internal/dberror"

// Strategy names a replacement policy.
type Strategy int

const (
	FIFO Strategy = iota
	LRU
	CLOCK
	LFU
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	case CLOCK:
		return "CLOCK"
	case LFU:
		return "LFU"
	default:
		return "UNKNOWN"
	}
}

// FixCounter is the slice of the buffer pool a policy needs to make a
// replacement decision: how many frames exist and each frame's current fix
// count. A frame with a fix count above zero is never a valid victim.
type FixCounter interface {
	NumFrames() int
	FixCount(frame int) int32
}

// Policy is the replacement-strategy contract shared by all four
// algorithms: init, pin, free, choose victim.
type Policy interface {
	// Init resets the policy's private state for a pool with fc.NumFrames() frames.
	Init(fc FixCounter)

	// Pin is called after every successful pin (whether the page was
	// already resident or freshly loaded into a frame).
	Pin(frame int)

	// ChooseVictim returns a frame with FixCount() == 0 to evict, or
	// ok == false if every frame is currently pinned.
	ChooseVictim() (frame int, ok bool)

	// Free releases the policy's private state.
	Free()
}

// New constructs the Policy for the named strategy.
func New(strategy Strategy) (Policy, error) {
	switch strategy {
	case FIFO:
		return newFIFO(), nil
	case LRU:
		return newLRU(), nil
	case CLOCK:
		return newClock(), nil
	case LFU:
		return newLFU(), nil
	default:
		return nil, dberror.ErrUnknownStrategy
	}
}
