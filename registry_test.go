package tinytask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAllocFillsInAscendingOrder(t *testing.T) {
	r := NewTaskRegistry(3)

	id0, frame0, err := r.Alloc()
	require.NoError(t, err)
	assert.Equal(t, TaskID(0), id0)
	require.NotNil(t, frame0)

	id1, _, err := r.Alloc()
	require.NoError(t, err)
	assert.Equal(t, TaskID(1), id1)

	id2, _, err := r.Alloc()
	require.NoError(t, err)
	assert.Equal(t, TaskID(2), id2)
}

func TestRegistryAllocCapacityExceeded(t *testing.T) {
	r := NewTaskRegistry(2)
	_, _, err := r.Alloc()
	require.NoError(t, err)
	_, _, err = r.Alloc()
	require.NoError(t, err)

	_, _, err = r.Alloc()
	require.Error(t, err)
	var capErr *CapacityExceeded
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.N)
}

func TestRegistryDeallocFreesSlotForReuse(t *testing.T) {
	r := NewTaskRegistry(1)
	id, _, err := r.Alloc()
	require.NoError(t, err)

	r.Dealloc(id)
	assert.False(t, r.IsReady(id))

	reused, _, err := r.Alloc()
	require.NoError(t, err)
	assert.Equal(t, id, reused)
}

func TestRegistryDeallocIsIdempotent(t *testing.T) {
	r := NewTaskRegistry(1)
	id, _, _ := r.Alloc()
	r.Dealloc(id)
	assert.NotPanics(t, func() { r.Dealloc(id) })
}

func TestRegistryDeallocOutOfRangeIsNoOp(t *testing.T) {
	r := NewTaskRegistry(1)
	assert.NotPanics(t, func() { r.Dealloc(TaskID(99)) })
	assert.NotPanics(t, func() { r.Dealloc(InvalidTaskID) })
}

func TestRegistryDeallocCurrentClearsCursor(t *testing.T) {
	r := NewTaskRegistry(1)
	id, _, _ := r.Alloc()
	r.SetCurrent(id)

	r.Dealloc(id)
	assert.Equal(t, InvalidTaskID, r.Current())
}

func TestRegistryFrameOfNonReadySlotIsNil(t *testing.T) {
	r := NewTaskRegistry(2)
	assert.Nil(t, r.FrameOf(0))
	assert.Nil(t, r.FrameOf(TaskID(99)))
}
