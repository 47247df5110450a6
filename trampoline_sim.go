//go:build !arm

package tinytask

// trampoline_sim.go is the host-surface stand-in for trampoline_arm.s: the
// "host harness" spec §8 asks for, which "implements the ISR pending and
// the execute one instruction step". Real hardware preempts a task at an
// arbitrary instruction by saving its registers; a host goroutine already
// has its registers (the Go runtime's own, saved by the scheduler when the
// goroutine blocks), so the simulation represents a task as a goroutine
// that blocks on a channel handshake once per tick instead of being
// register-spilled. simYield is the handshake point: tests call it once
// per unit of simulated work inside a task's EntryFunc, standing in for
// "the instruction boundary at which the tick happened to land".
//
// Only one task goroutine is ever unblocked at a time -- dispatch
// only ever sends to one slot's resume channel before waiting on that same
// slot's paused channel -- so this reproduces the single-CPU, one-task-
// runs-at-a-time model faithfully, not just in spirit.

type simSlot struct {
	resume  chan struct{}
	paused  chan struct{}
	started bool
}

var simSlots = map[TaskID]*simSlot{}

// activeSimSlot names the one slot whose goroutine is currently permitted
// to run. It is written by dispatch strictly before the channel
// operation that wakes that goroutine, which is what makes the write
// visible to it (per the Go memory model's channel and goroutine-creation
// happens-before rules) without further synchronization.
var activeSimSlot *simSlot

func slotFor(id TaskID) *simSlot {
	s, ok := simSlots[id]
	if !ok {
		s = &simSlot{resume: make(chan struct{}), paused: make(chan struct{})}
		simSlots[id] = s
	}
	return s
}

// simYield is the host-only preemption point: a task's loop body calls it
// once per simulated tick's worth of work. It blocks until the next time
// this task is dispatched.
func simYield() {
	s := activeSimSlot
	s.paused <- struct{}{}
	<-s.resume
}

// simYieldHook backs the public Yield function on this build.
func simYieldHook() {
	simYield()
}

// parkAfterTermination is taskTrampolineEntry's final act on the host
// surface: it behaves exactly like simYield (so the caller waiting on this
// tick's paused signal unblocks), except it never expects to be resumed
// again, since the task's slot was already Dealloc'd.
func parkAfterTermination() {
	for {
		simYield()
	}
}

func installSchedulerISR() {}

// simTickEvent is closed-and-replaced each time deliverPendingSwitch runs, waking
// any Semaphore.Lock currently parked in waitForEvent — modeling "any
// interrupt can wake a WFE", not just the scheduler one, per spec §4.2.
// Access goes through currentTickEvent (arch_sim.go), which holds
// simTickMu for the read; the write below holds it too.
var simTickEvent = make(chan struct{})

var pendingSwitch bool

// pendSchedulerInterrupt sets the pending bit. If interrupts are currently
// masked, delivery is deferred to whichever CriticalSection.Exit drops the
// mask to zero -- the same behavior a real pended-but-masked NVIC
// interrupt has.
func pendSchedulerInterrupt() {
	pendingSwitch = true
	if !interruptsAreMasked() {
		deliverPendingSwitch()
	}
}

func onInterruptsUnmasked() {
	if pendingSwitch {
		deliverPendingSwitch()
	}
}

// deliverPendingSwitch is SwitchTrampoline's host-surface body: it
// performs spec §4.6 in full, using Go goroutines as the register file.
func deliverPendingSwitch() {
	pendingSwitch = false

	next := selectNext(globalRegistry)

	simTickMu.Lock()
	old := simTickEvent
	simTickEvent = make(chan struct{})
	simTickMu.Unlock()
	close(old)

	if next == InvalidTaskID {
		return
	}

	// Unlike real hardware, a parked task goroutine makes no progress on
	// its own between dispatches, so every tick resumes next's goroutine
	// for one slice of work even when next == current -- that slice is
	// the host-surface stand-in for "the task keeps running uninterrupted
	// until the next tick", not a register-level switch. No separate
	// "pause the outgoing task" step is needed: dispatch already left the
	// previous task blocked on its own simYield's <-s.resume the instant
	// it last yielded.
	globalRegistry.SetCurrent(next)
	dispatch(next)
}

// dispatch makes id the running task: starting its goroutine on first
// dispatch (reading the seeded R0 straight out of the stack buffer, the
// same place real hardware would find it), or resuming an already-started
// one and waiting for it to pause again.
func dispatch(id TaskID) {
	s := slotFor(id)
	activeSimSlot = s

	if !s.started {
		s.started = true
		stack := globalRegistry.stackOf(id)
		frame := globalRegistry.FrameOf(id)
		r0 := stack.read(frame.SP)
		go taskTrampolineEntry(r0)
	} else {
		s.resume <- struct{}{}
	}

	<-s.paused
}

// Tick is the host-surface equivalent of the platform timer ISR calling
// OnTick: it pends the scheduler interrupt and, since nothing on the host
// surface defers delivery across goroutines, blocks until the resulting
// switch (if any) has fully landed -- the newly current task has run
// until its next simYield or has terminated. Used by tests and by
// cmd/tinytasksim.
func Tick() {
	OnTick()
}
