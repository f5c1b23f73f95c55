package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrLockTimeout is returned when a material lock could not be acquired in time.
// It matches shared.ErrConcurrencyConflict.
var ErrLockTimeout = shared.Wrap(shared.ErrConcurrencyConflict, "Timed out waiting for material lock")

// MaterialLocker serializes ledger appends per material.
// Locks for different materials are independent.
type MaterialLocker interface {
	// Lock blocks until the material's lock is held, the context ends, or the
	// implementation's wait timeout elapses (ErrLockTimeout).
	// The returned unlock function is safe to call more than once.
	Lock(ctx context.Context, materialID uuid.UUID) (unlock func(), err error)
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// MemoryMaterialLocker is an in-process keyed mutex. It only serializes writers
// within a single instance; use a distributed locker for multi-instance deployments.
type MemoryMaterialLocker struct {
	mu      sync.Mutex
	locks   map[uuid.UUID]*keyedLock
	timeout time.Duration
}

// NewMemoryMaterialLocker creates an in-process locker. A non-positive timeout waits
// until the context ends.
func NewMemoryMaterialLocker(timeout time.Duration) *MemoryMaterialLocker {
	return &MemoryMaterialLocker{
		locks:   make(map[uuid.UUID]*keyedLock),
		timeout: timeout,
	}
}

// Lock acquires the lock for materialID
func (l *MemoryMaterialLocker) Lock(ctx context.Context, materialID uuid.UUID) (func(), error) {
	kl := l.acquireRef(materialID)

	var timeoutC <-chan time.Time
	if l.timeout > 0 {
		timer := time.NewTimer(l.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.releaseRef(materialID, kl)
			})
		}, nil
	case <-ctx.Done():
		l.releaseRef(materialID, kl)
		return nil, ctx.Err()
	case <-timeoutC:
		l.releaseRef(materialID, kl)
		return nil, ErrLockTimeout
	}
}

func (l *MemoryMaterialLocker) acquireRef(materialID uuid.UUID) *keyedLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[materialID]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[materialID] = kl
	}
	kl.refs++
	return kl
}

func (l *MemoryMaterialLocker) releaseRef(materialID uuid.UUID, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, materialID)
	}
}

// size returns the number of materials with waiters or holders
func (l *MemoryMaterialLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

var _ MaterialLocker = (*MemoryMaterialLocker)(nil)
