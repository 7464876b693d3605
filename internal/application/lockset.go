package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// LockSet hands out exclusive locks by string key. Keys are always taken in
// sorted order, so callers holding several keys cannot deadlock each other.
// Entries are dropped once nobody holds or waits for them.
type LockSet struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLockSet returns an empty LockSet.
func NewLockSet() *LockSet {
	return &LockSet{locks: make(map[string]*keyLock)}
}

// Lock acquires every key or none. The returned release func is idempotent.
func (s *LockSet) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := uniqueSorted(keys)
	acquired := make([]string, 0, len(ordered))
	for _, key := range ordered {
		if err := s.acquire(ctx, key); err != nil {
			s.releaseAll(acquired)
			return nil, err
		}
		acquired = append(acquired, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { s.releaseAll(acquired) })
	}, nil
}

// Len reports how many keys are currently tracked.
func (s *LockSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func (s *LockSet) acquire(ctx context.Context, key string) error {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		s.dropLocked(key, l)
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *LockSet) releaseAll(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(keys) - 1; i >= 0; i-- {
		l := s.locks[keys[i]]
		<-l.ch
		s.dropLocked(keys[i], l)
	}
}

func (s *LockSet) dropLocked(key string, l *keyLock) {
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resourceLockKey(kind booking.Kind, resourceID string, date time.Time) string {
	return "resource:" + string(kind) + ":" + resourceID + ":" + booking.FormatDate(date)
}

func employeeLockKey(kind booking.Kind, employeeID string, date time.Time) string {
	return "employee:" + string(kind) + ":" + employeeID + ":" + booking.FormatDate(date)
}

func reservationLockKey(id string) string {
	return "reservation:" + id
}
