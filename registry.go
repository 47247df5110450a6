package tinytask

// TaskID identifies a slot in a TaskRegistry.
type TaskID int

// InvalidTaskID is the sentinel meaning "no task is currently executing; we
// are on the main stack", or "no such slot" as a find/select_next result.
const InvalidTaskID TaskID = -1

// taskState distinguishes a Free slot from one seeded by alloc.
type taskState uint8

const (
	slotFree taskState = iota
	slotReady
)

// taskContext is one slot in the registry: the spec's TaskContext variant
// "Free | Ready(frame, entry, stack_base, stack_len)", except that the
// entry function is not stored here; it stays on the Task handle.
type taskContext struct {
	state taskState
	frame StackFrame
	stack Stack
}

// TaskRegistry is a fixed-capacity slot array of task contexts, with a
// current-index cursor. All methods are only safe to call under a
// CriticalSection or from the scheduler ISR — see spec §4.3.
type TaskRegistry struct {
	slots   []taskContext
	current TaskID
}

// NewTaskRegistry constructs a registry with capacity n (spec's
// compile-time N; small, 2-8 in practice, but expressed as a runtime
// parameter since Go has no const-generic array length). current starts at
// InvalidTaskID: we are on the main stack until the first dispatch.
func NewTaskRegistry(n int) *TaskRegistry {
	return &TaskRegistry{
		slots:   make([]taskContext, n),
		current: InvalidTaskID,
	}
}

// Cap returns the registry's fixed capacity N.
func (r *TaskRegistry) Cap() int { return len(r.slots) }

// Alloc scans slots in ascending order, flips the first Free slot to
// Ready with a zeroed frame, and returns its id and a pointer to that
// frame so the caller can seed PC/SP/R0 before enabling context switches.
func (r *TaskRegistry) Alloc() (TaskID, *StackFrame, error) {
	for i := range r.slots {
		if r.slots[i].state == slotFree {
			r.slots[i] = taskContext{state: slotReady}
			return TaskID(i), &r.slots[i].frame, nil
		}
	}
	return InvalidTaskID, nil, &CapacityExceeded{N: len(r.slots)}
}

// Dealloc frees id's slot. Infallible and idempotent: deallocating an
// already-Free slot, or an out-of-range id, is a no-op. If id was current,
// current becomes InvalidTaskID.
func (r *TaskRegistry) Dealloc(id TaskID) {
	if id < 0 || int(id) >= len(r.slots) {
		return
	}
	r.slots[id] = taskContext{}
	if r.current == id {
		r.current = InvalidTaskID
	}
}

// FrameOf returns a pointer to id's saved frame. Undefined (and, in this
// implementation, nil) if the slot is not Ready.
func (r *TaskRegistry) FrameOf(id TaskID) *StackFrame {
	if id < 0 || int(id) >= len(r.slots) || r.slots[id].state != slotReady {
		return nil
	}
	return &r.slots[id].frame
}

// IsReady reports whether id names a Ready slot.
func (r *TaskRegistry) IsReady(id TaskID) bool {
	return id >= 0 && int(id) < len(r.slots) && r.slots[id].state == slotReady
}

// Current returns the currently executing task's id, or InvalidTaskID.
func (r *TaskRegistry) Current() TaskID { return r.current }

// SetCurrent updates the current-index cursor. Called by the scheduler
// ISR after installing the incoming frame.
func (r *TaskRegistry) SetCurrent(id TaskID) { r.current = id }

// stackOf returns id's stack buffer, used by the simulator to read the
// seeded auto-stacked chunk on first dispatch.
func (r *TaskRegistry) stackOf(id TaskID) Stack {
	return r.slots[id].stack
}
