package state

import "time"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Store keeps at most one session payload per user.
//
// Get, Put and Remove are individually safe for concurrent use. A caller that
// reads a session, changes it and writes it back must hold Lock for the user
// for the whole cycle.
type Store[T any] interface {
	Get(userID int64) (T, bool)
	Put(userID int64, value T)
	Remove(userID int64)

	// Lock enters the critical section of userID and returns its release func.
	Lock(userID int64) (unlock func())

	Len() int
	// Sweep removes sessions untouched for longer than idle and reports how many were dropped.
	Sweep(idle time.Duration) int
}
