package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
)

// keyLock is one exclusive lock. refs counts the holder and every waiter so
// the entry can be dropped once nobody needs it.
type keyLock struct {
	sem  chan struct{}
	refs int
}

// lockManager hands out one exclusive lock per key. Waits are bounded by the
// caller's context and by the configured wait.
type lockManager struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

func newLockManager(wait time.Duration) *lockManager {
	return &lockManager{locks: make(map[string]*keyLock), wait: wait}
}

func (m *lockManager) ref(key string) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	return l
}

func (m *lockManager) unref(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unrefLocked(key)
}

func (m *lockManager) unrefLocked(key string) {
	l := m.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

func (m *lockManager) acquire(ctx context.Context, key string) error {
	l := m.ref(key)

	// Fast path.
	select {
	case l.sem <- struct{}{}:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if m.wait > 0 {
		timer := time.NewTimer(m.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-timeout:
		m.unref(key)
		return apperror.Newf(apperror.KindLockTimeout, "timed out after %s waiting for %s", m.wait, key)
	case <-ctx.Done():
		m.unref(key)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperror.Newf(apperror.KindLockTimeout, "deadline exceeded waiting for %s", key)
		}
		return ctx.Err()
	}
}

// release must only be called by the holder of key.
func (m *lockManager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	<-m.locks[key].sem
	m.unrefLocked(key)
}

