package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_TryAcquireIsAllOrNothing(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.TryAcquire(ctx, []string{"a", "b"})
	require.NoError(t, err)

	_, err = l.TryAcquire(ctx, []string{"b", "c"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockBusy))

	var busy *BusyError
	require.True(t, errors.As(err, &busy))
	assert.Equal(t, []string{"b"}, busy.Keys)

	// "c" must not have been taken by the failed attempt
	releaseC, err := l.TryAcquire(ctx, []string{"c"})
	require.NoError(t, err)
	releaseC()

	release()
	release() // second call is a no-op

	release, err = l.TryAcquire(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	release()
}

func TestMemoryLocker_AcquireWaitsForRelease(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.TryAcquire(ctx, []string{"seat"})
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := l.Acquire(ctx, []string{"seat"})
		if err == nil {
			r()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire returned while the key was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after release")
	}
}

func TestMemoryLocker_AcquireHonoursContext(t *testing.T) {
	l := NewMemoryLocker()

	release, err := l.TryAcquire(context.Background(), []string{"seat"})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, []string{"seat"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSeatLockKeys_SortedAndReversible(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	keys := seatLockKeys([]uuid.UUID{a, b})
	assert.Equal(t, []string{SeatLockKey(b), SeatLockKey(a)}, keys)
	assert.Equal(t, []uuid.UUID{b, a}, seatIDsFromKeys(keys))
}
