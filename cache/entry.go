package cache

import "time"

// Entry is an immutable cached value together with the moment it was stored and
// how long it stays valid. Replacing a value always creates a new Entry.
type Entry[T any] struct {
	value     T
	createdAt time.Time
	ttl       time.Duration
}

// NewEntry returns an entry created now.
func NewEntry[T any](value T, ttl time.Duration) *Entry[T] {
	return newEntryAt(value, ttl, time.Now())
}

func newEntryAt[T any](value T, ttl time.Duration, now time.Time) *Entry[T] {
	return &Entry[T]{value: value, createdAt: now, ttl: ttl}
}

// Value returns the stored value regardless of expiry. Check IsExpired first.
func (e *Entry[T]) Value() T {
	return e.value
}

// CreatedAt is the moment the entry was stored.
func (e *Entry[T]) CreatedAt() time.Time {
	return e.createdAt
}

// TTL is how long the entry stays valid after CreatedAt.
func (e *Entry[T]) TTL() time.Duration {
	return e.ttl
}

// ExpiresAt is the last instant at which the entry is still valid.
func (e *Entry[T]) ExpiresAt() time.Time {
	return e.createdAt.Add(e.ttl)
}

// IsExpired reports whether more than the TTL has elapsed between creation and now.
func (e *Entry[T]) IsExpired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}
