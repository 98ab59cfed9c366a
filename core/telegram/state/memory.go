package state

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value   T
	touched time.Time
}

type memoryStore[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]entry[T]

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	now func() time.Time
}

// NewMemoryStore constructs an in-memory Store. Contents do not survive a restart.
func NewMemoryStore[T any]() Store[T] {
	return newMemoryStore[T](time.Now)
}

func newMemoryStore[T any](now func() time.Time) *memoryStore[T] {
	return &memoryStore[T]{
		sessions: make(map[int64]entry[T]),
		locks:    make(map[int64]*sync.Mutex),
		now:      now,
	}
}

// Get returns the session for a user if it exists.
func (m *memoryStore[T]) Get(userID int64) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[userID]
	return e.value, ok
}

// Put stores the session for a user, replacing any previous one.
func (m *memoryStore[T]) Put(userID int64, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = entry[T]{value: value, touched: m.now()}
}

// Remove drops the session for a user. Missing sessions are ignored.
func (m *memoryStore[T]) Remove(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

// Lock serializes callers working on the same user.
func (m *memoryStore[T]) Lock(userID int64) func() {
	m.locksMu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	m.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// Len reports the number of live sessions.
func (m *memoryStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than idle. Users currently inside
// their critical section are skipped and picked up by a later sweep.
func (m *memoryStore[T]) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-idle)

	m.mu.RLock()
	var stale []int64
	for id, e := range m.sessions {
		if e.touched.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		m.locksMu.Lock()
		l, ok := m.locks[id]
		if !ok {
			l = &sync.Mutex{}
			m.locks[id] = l
		}
		m.locksMu.Unlock()

		if !l.TryLock() {
			continue
		}
		m.mu.Lock()
		if e, ok := m.sessions[id]; ok && e.touched.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
		m.mu.Unlock()
		l.Unlock()
	}
	return removed
}
