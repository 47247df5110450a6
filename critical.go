package tinytask

// CriticalSection is a scoped global-interrupt-disable primitive. While any
// CriticalSection is live, the scheduler interrupt cannot fire and no other
// ISR can observe the task registry mid-update.
//
// Nesting is permitted: enter/exit calls may be paired arbitrarily deep, and
// only the outermost exit re-enables interrupts. Do not hold one across
// unbounded work or anything that could block.
type CriticalSection struct {
	released bool
}

// csDepth tracks nested enter/exit pairs. It is only ever touched with
// interrupts already masked (either we're the first enter, about to mask
// them, or a nested enter that can't race anything).
var csDepth uint32

// EnterCriticalSection disables all maskable interrupts and returns a token
// whose Exit method restores them. Prefer this scoped form; it guarantees
// release on every exit path:
//
//	cs := tinytask.EnterCriticalSection()
//	defer cs.Exit()
func EnterCriticalSection() *CriticalSection {
	maskInterrupts()
	csDepth++
	return &CriticalSection{}
}

// Exit releases the critical section. Calling Exit more than once on the
// same token is a programming error and is ignored on the second call.
func (cs *CriticalSection) Exit() {
	if cs.released {
		return
	}
	cs.released = true
	if csDepth > 0 {
		csDepth--
	}
	if csDepth == 0 {
		unmaskInterrupts()
		onInterruptsUnmasked()
	}
}

// withCriticalSection runs fn with interrupts masked and guarantees the
// mask is lifted even if fn panics.
func withCriticalSection(fn func()) {
	cs := EnterCriticalSection()
	defer cs.Exit()
	fn()
}
