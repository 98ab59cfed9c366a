// Package state provides a lightweight per-user session store for Telegram bots.
// It is intentionally domain-agnostic: callers choose the session payload type
// and serialize their read-modify-write cycles with Lock.
package state
