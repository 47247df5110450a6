package tinytask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectNextEmptyRegistryIsInvalid(t *testing.T) {
	r := NewTaskRegistry(0)
	assert.Equal(t, InvalidTaskID, selectNext(r))
}

func TestSelectNextNoReadySlotIsInvalid(t *testing.T) {
	r := NewTaskRegistry(3)
	assert.Equal(t, InvalidTaskID, selectNext(r))
}

func TestSelectNextSingleReadySlotPicksItself(t *testing.T) {
	r := NewTaskRegistry(3)
	id, _, _ := r.Alloc()
	assert.Equal(t, id, selectNext(r))

	r.SetCurrent(id)
	assert.Equal(t, id, selectNext(r))
}

func TestSelectNextRoundRobinWrapsAround(t *testing.T) {
	r := NewTaskRegistry(3)
	id0, _, _ := r.Alloc()
	id1, _, _ := r.Alloc()
	id2, _, _ := r.Alloc()

	r.SetCurrent(id0)
	assert.Equal(t, id1, selectNext(r))

	r.SetCurrent(id1)
	assert.Equal(t, id2, selectNext(r))

	r.SetCurrent(id2)
	assert.Equal(t, id0, selectNext(r))
}

func TestSelectNextSkipsFreeSlots(t *testing.T) {
	r := NewTaskRegistry(3)
	id0, _, _ := r.Alloc()
	id1, _, _ := r.Alloc()
	_, _, _ = r.Alloc()

	r.Dealloc(id1)
	r.SetCurrent(id0)

	assert.Equal(t, TaskID(2), selectNext(r))
}

func TestSelectNextStartsAtZeroWhenNoCurrent(t *testing.T) {
	r := NewTaskRegistry(3)
	_, _, _ = r.Alloc()
	assert.Equal(t, TaskID(0), selectNext(r))
}
