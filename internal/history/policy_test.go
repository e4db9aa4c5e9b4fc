package history

import (
	"testing"
	"time"
)

func TestKeepLast(t *testing.T) {
	t.Parallel()
	in := []Entry{entry(1), entry(2), entry(3)}
	if got := KeepLast(5).Retain(in, time.Now()); len(got) != 3 {
		t.Fatalf("under capacity trimmed: %d", len(got))
	}
	got := KeepLast(2).Retain(in, time.Now())
	if len(got) != 2 || got[0].StrikeID != entry(2).StrikeID {
		t.Fatalf("unexpected retain: %+v", got)
	}
}

func TestMaxAgeAndChain(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	old := Entry{StrikeID: "old", SentAt: now.Add(-72 * time.Hour)}
	fresh := Entry{StrikeID: "fresh", SentAt: now.Add(-time.Hour)}
	unknown := Entry{StrikeID: "unknown"}

	got := MaxAge(24*time.Hour).Retain([]Entry{old, fresh, unknown}, now)
	if len(got) != 2 || got[0].StrikeID != "fresh" || got[1].StrikeID != "unknown" {
		t.Fatalf("MaxAge retain: %+v", got)
	}

	cfg := Config{MaxEntries: 1, MaxAge: 24 * time.Hour}
	got = cfg.Policy().Retain([]Entry{old, fresh, unknown}, now)
	if len(got) != 1 || got[0].StrikeID != "unknown" {
		t.Fatalf("chained retain: %+v", got)
	}
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()
	in := make([]Entry, 0, 15)
	for i := 0; i < 15; i++ {
		in = append(in, entry(i))
	}
	if got := (Config{}).Policy().Retain(in, time.Now()); len(got) != DefaultMaxEntries {
		t.Fatalf("default capacity = %d, want %d", len(got), DefaultMaxEntries)
	}
}
