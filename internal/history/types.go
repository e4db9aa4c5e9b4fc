package history

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxEntries bounds the store when no capacity is configured.
const DefaultMaxEntries = 10

var ErrClosed = errors.New("history store closed")

// Entry is one notified strike.
type Entry struct {
	StrikeID string
	Date     string
	Sector   string
	Region   string
	Province string
	SentAt   time.Time
}

// Store is the persistence API used by the notifier.
type Store interface {
	// Contains reports whether id is in the persisted set.
	Contains(ctx context.Context, id string) (bool, error)
	// Append records e, then applies the capacity policy.
	// Appending an ID that is already present is a no-op.
	Append(ctx context.Context, e Entry) error
	// Entries returns the retained entries, oldest first.
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

// Config configures the store.
//
// Driver values:
//   - "csv" (default)
//   - "sqlite"
//   - "memory"
type Config struct {
	Driver     string
	Path       string
	MaxEntries int           // <= 0 means DefaultMaxEntries
	MaxAge     time.Duration // 0 disables time-based retention
}

// Policy returns the retention policy described by cfg.
func (c Config) Policy() Policy {
	n := c.MaxEntries
	if n <= 0 {
		n = DefaultMaxEntries
	}
	if c.MaxAge > 0 {
		return Chain{MaxAge(c.MaxAge), KeepLast(n)}
	}
	return KeepLast(n)
}
