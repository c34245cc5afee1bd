package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPipeTransfers(t *testing.T) {
	a, b := Pipe(1)
	defer a.Close()

	require.NoError(t, a.Write([]byte{1, 2, 3}, 50*time.Millisecond))
	buf := make([]byte, BufferSize)
	n, err := b.Read(buf, 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, buf[:n])

	require.NoError(t, b.Write([]byte{4}, 50*time.Millisecond))
	n, err = a.Read(buf, 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []byte{4}, buf[:n])
}

func TestPipeReadTimeoutIsNotAnError(t *testing.T) {
	a, _ := Pipe(1)
	defer a.Close()

	buf := make([]byte, BufferSize)
	start := time.Now()
	_, err := a.Read(buf, 20*time.Millisecond)
	require.Error(t, err)
	require.True(t, IsTimeout(err))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestPipeWriteBackpressure(t *testing.T) {
	a, _ := Pipe(1)
	defer a.Close()

	require.NoError(t, a.Write([]byte{1}, 20*time.Millisecond))
	err := a.Write([]byte{2}, 20*time.Millisecond)
	require.True(t, IsTimeout(err))
}

func TestPipeClose(t *testing.T) {
	a, b := Pipe(1)
	require.NoError(t, a.Close())

	buf := make([]byte, BufferSize)
	_, err := b.Read(buf, time.Second)
	require.ErrorIs(t, err, ErrClosed)
	require.False(t, IsTimeout(err))
	require.ErrorIs(t, b.Write([]byte{1}, time.Second), ErrClosed)
}
