package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// semaphore is a single-slot lock acquirable with a deadline.
type semaphore chan struct{}

func newSemaphore() semaphore {
	return make(semaphore, 1)
}

// acquire takes the slot, waiting at most timeout. It returns ErrBusy when
// the deadline passes and the context error on cancellation.
func (s semaphore) acquire(ctx context.Context, timeout time.Duration) error {
	select {
	case s <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("lock acquisition timed out after %s: %w", timeout, ErrBusy)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s semaphore) release() {
	<-s
}

// keyedLocks serializes operations per key (one lock per barber).
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]semaphore
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]semaphore)}
}

func (k *keyedLocks) forKey(key string) semaphore {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.locks[key]
	if !ok {
		s = newSemaphore()
		k.locks[key] = s
	}
	return s
}

// acquire locks the key, waiting at most timeout. The returned release
// function must be called exactly once.
func (k *keyedLocks) acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	s := k.forKey(key)
	if err := s.acquire(ctx, timeout); err != nil {
		return nil, err
	}
	return s.release, nil
}
