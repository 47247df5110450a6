package tinytask

import "fmt"

// CapacityExceeded is returned by Task.Start when the registry has no
// free slots left.
type CapacityExceeded struct {
	N int // registry capacity
}

func (e *CapacityExceeded) Error() string {
	return fmt.Sprintf("tinytask: registry capacity %d exceeded", e.N)
}

// AllocFailed is returned by the stack adapters (StackFromArray,
// StackFromSlice) when handed a buffer they cannot use. The core itself never allocates and
// never returns this error.
type AllocFailed struct {
	N int // requested stack length
}

func (e *AllocFailed) Error() string {
	return fmt.Sprintf("tinytask: failed to allocate %d-byte stack", e.N)
}

// ErrNotFound would be returned by a lookup that fails to find a task,
// but Task.Stop treats "not registered" as a no-op rather than an error,
// per spec: stopping an un-started handle is indistinguishable from
// stopping it twice.
