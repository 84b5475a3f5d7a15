package economy

import "sync"

// UserLocks provides per-user mutual exclusion around the admission-check
// → debit → persist sequence, so two concurrent turns by the same user can
// never both pass the credit check against a stale balance. It guards the
// critical section only; no balance or counter is ever stored here; all
// durable state stays in the user row.
//
// Locks are created on demand and retained; the per-entry footprint is one
// mutex, bounded by the number of distinct active users in the process.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewUserLocks returns an empty lock registry.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for userID, creating it if absent, and returns
// the matching unlock function.
func (l *UserLocks) Lock(userID string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
