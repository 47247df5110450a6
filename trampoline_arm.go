//go:build arm

package tinytask

// SchedulerISR is the symbol that must be installed into the vector table
// at the PendSV-equivalent slot (trampoline_arm.s). Its priority register
// must be programmed to the lowest maskable priority before any task
// starts; installSchedulerISR does that programming, not the vector-table
// installation itself, which is startup code's job per spec §6.
func SchedulerISR()

// installSchedulerISR programs the scheduler interrupt's priority to the
// lowest configurable value. The register address (SHPR3) is hard-coded
// in trampoline_arm.s's setLowestInterruptPriority.
func installSchedulerISR() {
	setLowestInterruptPriority()
}

func setLowestInterruptPriority()

// pendSchedulerInterrupt sets the PendSV-equivalent pending bit in the
// Interrupt Control and State Register. Implemented in assembly because
// it is a single memory-mapped store to a fixed address, and keeping it
// beside SchedulerISR keeps the two halves of "request a switch" /
// "perform a switch" in one file.
func pendSchedulerInterrupt()

// schedulerDecide is called from SchedulerISR (trampoline_arm.s) after it
// has spilled R4-R11 onto the outgoing process stack and read the
// resulting stack pointer into outgoingSP. It performs spec §4.6 steps
// 3-5 — consult the scheduler, save the outgoing frame (if any), install
// the incoming one, update current — entirely in Go, and returns the
// values the assembly epilogue needs to restore R4-R11 and the process
// stack pointer. switched is false when no task change should happen (no
// Ready slot, or the only Ready slot is already current); in that case
// incomingSP and the register values are unused and the epilogue must
// leave the outgoing task's just-spilled registers in place.
//
//go:nosplit
func schedulerDecide(outgoingSP uint32) (incomingSP uint32, r4, r5, r6, r7, r8, r9, r10, r11 uint32, switched bool) {
	next := selectNext(globalRegistry)
	cur := globalRegistry.Current()

	if next == InvalidTaskID || next == cur {
		return 0, 0, 0, 0, 0, 0, 0, 0, 0, false
	}

	if cur != InvalidTaskID {
		if f := globalRegistry.FrameOf(cur); f != nil {
			f.SP = outgoingSP
			f.R4, f.R5, f.R6, f.R7 = outgoingR4, outgoingR5, outgoingR6, outgoingR7
			f.R8, f.R9, f.R10, f.R11 = outgoingR8, outgoingR9, outgoingR10, outgoingR11
		}
	}

	in := globalRegistry.FrameOf(next)
	globalRegistry.SetCurrent(next)

	return in.SP, in.R4, in.R5, in.R6, in.R7, in.R8, in.R9, in.R10, in.R11, true
}

// parkAfterTermination is taskTrampolineEntry's final act once a task has
// returned and deallocated its own slot: spin on WFE forever. The next
// tick will simply never select this id again, since its slot is Free.
func parkAfterTermination() {
	for {
		waitForEvent()
	}
}

// simYieldHook backs the public Yield function on real hardware, where
// it is a documented no-op: see Yield's doc comment (tick.go).
func simYieldHook() {}

// outgoingR4..outgoingR11 are written by SchedulerISR immediately before
// calling schedulerDecide, since AAPCS only gives us four argument
// registers (R0-R3) and schedulerDecide needs eight register values in.
// Handler-mode code is never reentered before these are consumed, so a
// package-level staging area is safe.
var (
	outgoingR4, outgoingR5, outgoingR6, outgoingR7   uint32
	outgoingR8, outgoingR9, outgoingR10, outgoingR11 uint32
)
