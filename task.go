package tinytask

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EntryFunc is a task's entry point: parameterless, no return value. Any
// func() value is accepted, closures included; the core does not inspect
// or restrict what a closure captures. Returning from EntryFunc is legal
// and terminates the task.
type EntryFunc func()

// Task is a caller-owned handle binding an entry function to a borrowed
// Stack. Constructing one has no side effect and performs no allocation;
// Start is what actually reserves a registry slot.
type Task struct {
	entry   EntryFunc
	stack   Stack
	id      TaskID
	started bool
}

// NewTask constructs a Pending task. It does not touch the registry.
func NewTask(entry EntryFunc, stack Stack) *Task {
	return &Task{entry: entry, stack: stack, id: InvalidTaskID}
}

// Start enqueues the task for scheduling: it acquires a CriticalSection,
// takes a registry slot via Alloc, and seeds the new StackFrame so the
// task begins executing entry the next time SwitchTrampoline dispatches
// it. It does not itself cause a switch. CapacityExceeded is returned,
// without side effects on the registry, if the registry is full.
func (t *Task) Start() error {
	if t.started {
		return nil // idempotent, mirrors Stop
	}

	cs := EnterCriticalSection()
	defer cs.Exit()

	id, frame, err := globalRegistry.Alloc()
	if err != nil {
		logFault(FaultRegistryExhausted, logrus.Fields{"capacity": globalRegistry.Cap()})
		return err
	}

	slot := &globalRegistry.slots[id]
	slot.stack = t.stack

	r0 := uint32(uintptr(reflectPointerOf(t)))
	seedFrame(frame, t.stack.base, t.stack.len, taskTrampolineAddr(), r0, t.stack.write)

	taskByR0[r0] = t
	t.id = id
	t.started = true
	return nil
}

// Stop removes the task's id from the registry, setting current to
// InvalidTaskID if it was the task currently executing. Idempotent:
// calling Stop twice, or on a never-started task, is a no-op.
func (t *Task) Stop() {
	if !t.started {
		return
	}
	withCriticalSection(func() {
		globalRegistry.Dealloc(t.id)
		delete(taskByR0, uint32(uintptr(reflectPointerOf(t))))
	})
	t.started = false
	t.id = InvalidTaskID
}

// Frame returns a pointer to the task's current StackFrame, or nil if it
// has not been started or has already terminated. Intended for
// diagnostics (cmd/tinytasksim's -dump) — never call this from inside
// the task's own EntryFunc, since the frame it names is only meaningful
// while the task is not the one executing.
func (t *Task) Frame() *StackFrame {
	if !t.started {
		return nil
	}
	var f *StackFrame
	withCriticalSection(func() {
		f = globalRegistry.FrameOf(t.id)
	})
	return f
}

// Close implements io.Closer-like cleanup for tasks constructed with
// defer in mind: "dropping a Running handle MUST stop it" (spec §3). Go
// has no destructors, so callers that want this guarantee should
// `defer task.Stop()` themselves; Close is provided as the idiomatic name
// for that deferred call.
func (t *Task) Close() error {
	t.Stop()
	return nil
}

// taskByR0 maps the R0 value seeded into a task's frame back to the Task
// handle, so taskTrampolineEntry (called with that value) can find it
// without the registry needing to store anything but integer ids (spec
// §9's note on breaking the Task<->registry cycle).
var taskByR0 = map[uint32]*Task{}

// reflectPointerOf obtains a stable address for t, used only as a lookup
// key (never dereferenced as anything but a map key). It reads the
// address through reflect.Value.Pointer rather than through unsafe.
func reflectPointerOf(t *Task) uintptr {
	return uintptr(reflect.ValueOf(t).Pointer())
}

// taskTrampolineAddr returns the address SwitchTrampoline seeds into PC
// for a never-yet-run task. On the real ARM target this is the actual
// code address of the assembly entry stub (trampoline_arm.s); on the host
// simulation surface there is no raw code address to jump to, and
// trampoline_sim.go never reads the seeded PC: on a slot's first dispatch
// it calls taskTrampolineEntry directly instead of "returning" into it.
func taskTrampolineAddr() uintptr { return taskTrampolineSentinel }

const taskTrampolineSentinel uintptr = 0xFFFF0000

// terminatorAddress is seeded into LR so that a task whose entry function
// never returns, yet whose LR is somehow popped (should not happen in
// correct operation, but matches spec's defensive design), lands on the
// terminator rather than an arbitrary address. It carries the same
// "sentinel, not a real code address" property as taskTrampolineSentinel.
const terminatorAddress uint32 = 0xFFFF0001

// taskTrampolineEntry is invoked on first dispatch with r0 equal to the
// value Start seeded into R0. It runs the user entry function, then
// deallocs its own slot and parks forever — the next tick will
// unschedule it by picking INVALID or a different task. A task that
// returns normally ends up exactly here, from the bottom: user code
// doesn't return into it, it falls out of EntryFunc into it, taken over
// from what would be LR on real hardware.
func taskTrampolineEntry(r0 uint32) {
	var t *Task
	withCriticalSection(func() {
		t = taskByR0[r0]
	})
	if t == nil {
		logFault(FaultUnknownTask, logrus.Fields{"r0": r0})
		return
	}

	t.entry()

	withCriticalSection(func() {
		globalRegistry.Dealloc(t.id)
		delete(taskByR0, r0)
	})
	t.started = false
	t.id = InvalidTaskID

	parkAfterTermination()
}
