package tinytask

import "github.com/sirupsen/logrus"

// FaultKind names the condition that produced a fault record. Cortex-M0
// has no MMU and a much smaller fault taxonomy than the host hardware
// this package was modeled from; these are the ones a task-switching
// kernel core can itself detect without a HardFault handler.
type FaultKind int

const (
	// FaultRegistryExhausted is logged when Task.Start hits CapacityExceeded.
	FaultRegistryExhausted FaultKind = iota
	// FaultStackAllocFailed is logged when StackFromArray/StackFromSlice hits AllocFailed.
	FaultStackAllocFailed
	// FaultUnknownTask is logged when taskTrampolineEntry can't resolve its seeded R0.
	FaultUnknownTask
)

func (k FaultKind) String() string {
	switch k {
	case FaultRegistryExhausted:
		return "registry_exhausted"
	case FaultStackAllocFailed:
		return "stack_alloc_failed"
	case FaultUnknownTask:
		return "unknown_task"
	default:
		return "unknown"
	}
}

// faultLogger is package-level rather than constructed per call, mirroring
// the teacher's habit of logging exceptions through a single shared
// logger rather than threading one through every CPU method. SetFaultLogger
// lets a host harness (cmd/tinytasksim) swap in a configured instance.
var faultLogger = logrus.StandardLogger()

// SetFaultLogger replaces the logger used by logFault. Passing nil
// restores the standard logger.
func SetFaultLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	faultLogger = l
}

// logFault writes a single structured diagnostic line for a fault
// condition, pairing the kind with whatever the caller knew at the time
// (a task id, a requested size). It never panics and never blocks the
// kernel's normal error return -- callers still return the Capacity/Alloc
// error to the caller in addition to logging it here. It also pushes a
// two-byte banner (0xFA, then the FaultKind) through the spec's byte-sink (kernel.go), so a target
// with no attached debugger still gets a UART/SWO breadcrumb even though
// logrus output never leaves the host build.
func logFault(kind FaultKind, fields logrus.Fields) {
	if faultLogger != nil {
		entry := faultLogger.WithField("fault", kind.String())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		entry.Warn("tinytask: fault condition")
	}
	writeDiagnostic([]byte{0xFA, byte(kind)})
}
