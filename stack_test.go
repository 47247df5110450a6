package tinytask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackFromArrayRejectsMisalignedLength(t *testing.T) {
	_, err := StackFromArray(make([]byte, 7))
	require.Error(t, err)
	var allocErr *AllocFailed
	require.ErrorAs(t, err, &allocErr)
}

func TestStackFromArrayRejectsEmpty(t *testing.T) {
	_, err := StackFromArray(nil)
	assert.Error(t, err)
}

func TestStackFromArrayReadWriteRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	s, err := StackFromArray(buf)
	require.NoError(t, err)

	s.write(s.base+4, 0x11223344)
	assert.Equal(t, uint32(0x11223344), s.read(s.base+4))
	assert.Equal(t, byte(0x44), buf[4])
	assert.Equal(t, byte(0x11), buf[7])
}

func TestStackFromSliceBehavesLikeStackFromArray(t *testing.T) {
	s, err := StackFromSlice(make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, uint32(16), s.len)
}
