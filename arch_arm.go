//go:build arm

package tinytask

// maskInterrupts and unmaskInterrupts are implemented in arch_arm.s as
// CPSID i / CPSIE i — the Cortex-M0 instructions that set and clear
// PRIMASK, the single maskable-interrupt gate this processor class has.
// Cortex-M0 has no BASEPRI, so there is no finer-grained mask to save and
// restore; nesting is handled entirely by csDepth in critical.go.
func maskInterrupts()
func unmaskInterrupts()

// interruptsAreMasked reports the current PRIMASK bit, read in assembly
// with MRS. Used only by tests compiled for this target.
func interruptsAreMasked() bool

// waitForEvent executes WFE; sendEvent executes SEV. Semaphore.Lock's wait
// loop and Semaphore.Unlock's wakeup use these directly, per spec.
func waitForEvent()
func sendEvent()

// onInterruptsUnmasked is a no-op on real hardware: clearing PRIMASK
// (unmaskInterrupts) is itself what lets the NVIC take a pending
// scheduler interrupt; nothing further needs to happen here.
func onInterruptsUnmasked() {}
