package tinytask

import (
	"unsafe"

	"github.com/sirupsen/logrus"
)

// Stack describes a task's externally supplied stack buffer: a base
// address and a length, a multiple of 8 bytes. The core only stores these
// two numbers; it never allocates or frees the memory behind them. Two
// adapters below convert the common buffer shapes — a static array and a
// heap slice — into a Stack; both are optional conveniences, not part of
// the hot path.
type Stack struct {
	base uint32
	len  uint32
	// write is how the seeding code pokes words into this stack without
	// the core needing unsafe.Pointer arithmetic of its own; the adapters
	// below supply one backed by their buffer.
	write func(addr, val uint32)
	read  func(addr uint32) uint32
}

// StackFromArray wraps a caller-owned byte array (typically a static
// region or a local array whose lifetime the caller scopes correctly) as a
// Stack. buf's length must be a multiple of 8; it is not copied.
func StackFromArray(buf []byte) (Stack, error) {
	if len(buf) == 0 || len(buf)%8 != 0 {
		logFault(FaultStackAllocFailed, logrus.Fields{"size": len(buf)})
		return Stack{}, &AllocFailed{N: len(buf)}
	}
	base := uint32(0)
	if len(buf) > 0 {
		base = arrayBaseAddr(buf)
	}
	return Stack{
		base: base,
		len:  uint32(len(buf)),
		write: func(addr, val uint32) {
			putWordLE(buf, addr-base, val)
		},
		read: func(addr uint32) uint32 {
			return getWordLE(buf, addr-base)
		},
	}, nil
}

// StackFromSlice is the heap-backed convenience adapter from spec §9: it
// wraps a caller-allocated []byte (e.g. from make([]byte, n)) the same way
// StackFromArray wraps a fixed array. Neither the core nor this adapter
// calls make; the caller allocates the slice. AllocFailed is returned, never panics, if buf
// is nil/empty or misaligned — the core's only allocation-adjacent error
// path, per spec §7.
func StackFromSlice(buf []byte) (Stack, error) {
	return StackFromArray(buf)
}

// arrayBaseAddr returns buf's backing address, truncated to 32 bits (the
// full address space of a Cortex-M0). On the host simulation surface this
// value is never dereferenced as a real pointer — all reads/writes go
// through Stack.write/Stack.read, which close over buf directly — so
// truncation only needs to be internally consistent, not globally unique.
func arrayBaseAddr(buf []byte) uint32 {
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

func putWordLE(buf []byte, off, val uint32) {
	buf[off+0] = byte(val)
	buf[off+1] = byte(val >> 8)
	buf[off+2] = byte(val >> 16)
	buf[off+3] = byte(val >> 24)
}

func getWordLE(buf []byte, off uint32) uint32 {
	return uint32(buf[off+0]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
}
