package history

import "time"

// Policy selects which entries to keep. Input and output are oldest first.
type Policy interface {
	Retain(entries []Entry, now time.Time) []Entry
}

// KeepLast keeps the most recent N entries by insertion order.
type KeepLast int

func (n KeepLast) Retain(entries []Entry, _ time.Time) []Entry {
	if n <= 0 || len(entries) <= int(n) {
		return entries
	}
	return entries[len(entries)-int(n):]
}

// MaxAge drops entries sent longer ago than the duration.
// Entries with an unknown send time are kept.
type MaxAge time.Duration

func (d MaxAge) Retain(entries []Entry, now time.Time) []Entry {
	if d <= 0 {
		return entries
	}
	cutoff := now.Add(-time.Duration(d))
	out := entries[:0:0]
	for _, e := range entries {
		if !e.SentAt.IsZero() && e.SentAt.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Chain applies policies in order.
type Chain []Policy

func (c Chain) Retain(entries []Entry, now time.Time) []Entry {
	for _, p := range c {
		if p != nil {
			entries = p.Retain(entries, now)
		}
	}
	return entries
}

func containsID(entries []Entry, id string) bool {
	for _, e := range entries {
		if e.StrikeID == id {
			return true
		}
	}
	return false
}
