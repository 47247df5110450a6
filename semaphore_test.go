package tinytask

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphoreTryLockRespectsFreeCount(t *testing.T) {
	s := NewSemaphore(2, 2)

	assert.True(t, s.TryLock())
	assert.True(t, s.TryLock())
	assert.False(t, s.TryLock())
	assert.True(t, s.IsLocked())
}

func TestSemaphoreUnlockRestoresACount(t *testing.T) {
	s := NewSemaphore(1, 1)
	require.True(t, s.TryLock())
	require.False(t, s.TryLock())

	s.Unlock()
	assert.True(t, s.TryLock())
}

func TestSemaphoreUnlockNeverExceedsMax(t *testing.T) {
	s := NewSemaphore(1, 1)
	s.Unlock()
	s.Unlock()
	assert.True(t, s.TryLock())
	assert.False(t, s.TryLock())
}

func TestSemaphoreISRVariantsBypassCriticalSection(t *testing.T) {
	s := NewSemaphore(1, 1)
	assert.True(t, s.TryLockISR())
	assert.False(t, s.TryLockISR())
	assert.True(t, s.IsLockedISR())

	s.UnlockISR()
	assert.False(t, s.IsLockedISR())
}

func TestSemaphoreConstructorRejectsFreeGreaterThanMax(t *testing.T) {
	assert.Panics(t, func() { NewSemaphore(2, 1) })
}

func TestSemaphoreLockBlocksUntilUnlock(t *testing.T) {
	s := NewSemaphore(1, 1)
	require.True(t, s.TryLock())

	unlocked := make(chan struct{})
	go func() {
		s.Lock()
		close(unlocked)
	}()

	select {
	case <-unlocked:
		t.Fatal("Lock returned before Unlock")
	case <-time.After(20 * time.Millisecond):
	}

	s.Unlock()

	select {
	case <-unlocked:
	case <-time.After(time.Second):
		t.Fatal("Lock never returned after Unlock")
	}
}
