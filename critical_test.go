package tinytask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriticalSectionMasksAndUnmasks(t *testing.T) {
	assert.False(t, interruptsAreMasked())

	cs := EnterCriticalSection()
	assert.True(t, interruptsAreMasked())

	cs.Exit()
	assert.False(t, interruptsAreMasked())
}

func TestCriticalSectionExitIsIdempotent(t *testing.T) {
	cs := EnterCriticalSection()
	cs.Exit()
	assert.NotPanics(t, func() { cs.Exit() })
	assert.False(t, interruptsAreMasked())
}

func TestCriticalSectionNestingOnlyOutermostUnmasks(t *testing.T) {
	outer := EnterCriticalSection()
	inner := EnterCriticalSection()
	assert.True(t, interruptsAreMasked())

	inner.Exit()
	assert.True(t, interruptsAreMasked(), "inner exit must not unmask while outer is still held")

	outer.Exit()
	assert.False(t, interruptsAreMasked())
}

func TestWithCriticalSectionUnmasksOnPanic(t *testing.T) {
	defer func() {
		recover()
		assert.False(t, interruptsAreMasked())
	}()
	withCriticalSection(func() {
		panic("boom")
	})
}
