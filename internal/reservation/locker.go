package reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const seatKeyPrefix = "show_seat:"

var ErrLockBusy = errors.New("lock busy")

// BusyError names the keys that were held by someone else.
type BusyError struct {
	Keys []string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("lock busy: %s", strings.Join(e.Keys, ", "))
}

func (e *BusyError) Is(target error) bool {
	return target == ErrLockBusy
}

type ReleaseFunc func()

// Locker gives per-seat mutual exclusion. Implementations acquire a key set
// all-or-nothing; callers pass keys in ascending order.
type Locker interface {
	// TryAcquire never waits. It returns a *BusyError when any key is taken.
	TryAcquire(ctx context.Context, keys []string) (ReleaseFunc, error)
	// Acquire waits until every key is free or ctx is done.
	Acquire(ctx context.Context, keys []string) (ReleaseFunc, error)
}

func SeatLockKey(showSeatID uuid.UUID) string {
	return seatKeyPrefix + showSeatID.String()
}

// seatLockKeys returns the lock keys for ids in ascending order.
func seatLockKeys(ids []uuid.UUID) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = SeatLockKey(id)
	}
	sort.Strings(keys)
	return keys
}

func seatIDsFromKeys(keys []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		if id, err := uuid.Parse(strings.TrimPrefix(k, seatKeyPrefix)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// MemoryLocker is a Locker for a single process.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{} // closed on release
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]chan struct{})}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, keys []string) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var busy []string
	for _, k := range keys {
		if _, ok := l.held[k]; ok {
			busy = append(busy, k)
		}
	}
	if len(busy) > 0 {
		return nil, &BusyError{Keys: busy}
	}

	return l.take(keys), nil
}

func (l *MemoryLocker) Acquire(ctx context.Context, keys []string) (ReleaseFunc, error) {
	for {
		l.mu.Lock()
		var wait chan struct{}
		for _, k := range keys {
			if ch, ok := l.held[k]; ok {
				wait = ch
				break
			}
		}
		if wait == nil {
			release := l.take(keys)
			l.mu.Unlock()
			return release, nil
		}
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire seat locks: %w", ctx.Err())
		}
	}
}

// take must be called with l.mu held.
func (l *MemoryLocker) take(keys []string) ReleaseFunc {
	chans := make(map[string]chan struct{}, len(keys))
	for _, k := range keys {
		ch := make(chan struct{})
		l.held[k] = ch
		chans[k] = ch
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for k, ch := range chans {
				if l.held[k] == ch {
					delete(l.held, k)
				}
				close(ch)
			}
		})
	}
}
