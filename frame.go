package tinytask

import "encoding/binary"

// wordSize is the size in bytes of one Cortex-M0 machine word.
const wordSize = 4

// autoStackedWords is the number of words the hardware pushes automatically
// on exception entry: R0, R1, R2, R3, R12, LR, PC, xPSR.
const autoStackedWords = 8

// xpsrThumbBit is bit 24 of xPSR, the Thumb state bit. Cortex-M0 only
// executes Thumb code; a seeded frame with this bit clear hard-faults on
// exception return.
const xpsrThumbBit = 0x0100_0000

// StackFrame is the manually-stacked half of a suspended task's state: R4
// through R11 plus the process stack pointer at suspension. The other half
// — R0, R1, R2, R3, R12, LR, PC, xPSR — is never copied out of the task's
// own stack; it stays exactly where the hardware put it (or where Start
// wrote it, for a never-yet-run task), and SwitchTrampoline reaches it
// through SP. This is choice (b) of spec §9: the process stack is the
// backing store for the auto-stacked chunk, not a second copy in this
// struct. See StackFrame.Serialize for the on-disk layout of this struct
// alone (it does not include the auto-stacked chunk).
type StackFrame struct {
	R4, R5, R6, R7, R8, R9, R10, R11 uint32
	SP                               uint32 // process stack pointer at suspension, 8-byte aligned
}

// align8Down rounds addr down to the nearest multiple of 8, the alignment
// the AAPCS requires of SP at a public interface boundary (which an
// exception return is).
func align8Down(addr uint32) uint32 {
	return addr &^ 7
}

// seedFrame initializes frame and the top of the task's stack buffer so
// that the first switch-in dispatches to entryTrampoline with r0Arg in R0.
// stackBase+stackLen must describe the caller-owned buffer; the function
// reserves one auto-stacked-chunk-sized region at the top of that buffer
// for the initial exception-return frame (spec §9's open question: we
// reserve above the usable stack, documented here rather than guessed at
// by the caller).
func seedFrame(frame *StackFrame, stackBase, stackLen uint32, entryTrampoline uintptr, r0Arg uint32, writeWord func(addr, val uint32)) {
	top := align8Down(stackBase + stackLen)
	spAfterAutoChunk := top - autoStackedWords*wordSize

	// Auto-stacked chunk, ascending address order: R0, R1, R2, R3, R12,
	// LR, PC, xPSR — the order Cortex-M0 exception return expects to pop.
	writeWord(spAfterAutoChunk+0*wordSize, r0Arg)             // R0: address of the Task handle
	writeWord(spAfterAutoChunk+1*wordSize, 0)                 // R1
	writeWord(spAfterAutoChunk+2*wordSize, 0)                 // R2
	writeWord(spAfterAutoChunk+3*wordSize, 0)                 // R3
	writeWord(spAfterAutoChunk+4*wordSize, 0)                 // R12
	writeWord(spAfterAutoChunk+5*wordSize, terminatorAddress) // LR: terminator sentinel
	writeWord(spAfterAutoChunk+6*wordSize, uint32(entryTrampoline))
	writeWord(spAfterAutoChunk+7*wordSize, xpsrThumbBit)

	*frame = StackFrame{SP: spAfterAutoChunk}
}

// frameSerializeSize is the number of bytes StackFrame.Serialize produces.
const frameSerializeSize = 9 * wordSize

// SerializeSize returns the number of bytes needed for Serialize.
func (f *StackFrame) SerializeSize() int { return frameSerializeSize }

// Serialize writes the manually-stacked register chunk into buf, which must
// be at least SerializeSize() bytes. Cortex-M0 is little-endian, unlike the
// teacher's big-endian target, so this uses binary.LittleEndian where the
// teacher's Serialize (serialize.go) uses BigEndian; otherwise the same
// fixed-offset encoding idiom.
func (f *StackFrame) Serialize(buf []byte) error {
	if len(buf) < frameSerializeSize {
		return &frameBufferTooSmall{want: frameSerializeSize, got: len(buf)}
	}
	le := binary.LittleEndian
	words := [9]uint32{f.R4, f.R5, f.R6, f.R7, f.R8, f.R9, f.R10, f.R11, f.SP}
	for i, w := range words {
		le.PutUint32(buf[i*wordSize:], w)
	}
	return nil
}

// Deserialize restores a StackFrame from buf, the inverse of Serialize.
func (f *StackFrame) Deserialize(buf []byte) error {
	if len(buf) < frameSerializeSize {
		return &frameBufferTooSmall{want: frameSerializeSize, got: len(buf)}
	}
	le := binary.LittleEndian
	f.R4 = le.Uint32(buf[0*wordSize:])
	f.R5 = le.Uint32(buf[1*wordSize:])
	f.R6 = le.Uint32(buf[2*wordSize:])
	f.R7 = le.Uint32(buf[3*wordSize:])
	f.R8 = le.Uint32(buf[4*wordSize:])
	f.R9 = le.Uint32(buf[5*wordSize:])
	f.R10 = le.Uint32(buf[6*wordSize:])
	f.R11 = le.Uint32(buf[7*wordSize:])
	f.SP = le.Uint32(buf[8*wordSize:])
	return nil
}

type frameBufferTooSmall struct {
	want, got int
}

func (e *frameBufferTooSmall) Error() string {
	return "tinytask: stack frame buffer too small"
}
