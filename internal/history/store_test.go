package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "scioperibot/pkg/logx"
)

func openDriver(t *testing.T, driver string, maxEntries int) Store {
	t.Helper()
	dir := t.TempDir()
	path := ""
	switch driver {
	case "csv":
		path = filepath.Join(dir, "history.csv")
	case "sqlite":
		path = filepath.Join(dir, "history.db")
	}
	st, err := Open(Config{Driver: driver, Path: path, MaxEntries: maxEntries}, logx.Nop())
	if err != nil {
		t.Fatalf("Open(%s): %v", driver, err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func entry(i int) Entry {
	return Entry{
		StrikeID: fmt.Sprintf("%012x", i),
		Date:     "05/05/2025",
		Sector:   "Trasporto",
		Region:   "Lazio",
		Province: fmt.Sprintf("P%d", i),
		SentAt:   time.Date(2025, 5, 1, 10, 0, i, 0, time.UTC),
	}
}

var drivers = []string{"memory", "csv", "sqlite"}

func TestStoreContainsAfterAppend(t *testing.T) {
	ctx := context.Background()
	for _, d := range drivers {
		d := d
		t.Run(d, func(t *testing.T) {
			st := openDriver(t, d, 10)
			ok, err := st.Contains(ctx, entry(1).StrikeID)
			if err != nil || ok {
				t.Fatalf("Contains on empty store = %v, %v", ok, err)
			}
			if err := st.Append(ctx, entry(1)); err != nil {
				t.Fatalf("Append: %v", err)
			}
			ok, err = st.Contains(ctx, entry(1).StrikeID)
			if err != nil || !ok {
				t.Fatalf("Contains after append = %v, %v", ok, err)
			}
		})
	}
}

func TestStoreAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for _, d := range drivers {
		d := d
		t.Run(d, func(t *testing.T) {
			st := openDriver(t, d, 10)
			for i := 0; i < 3; i++ {
				if err := st.Append(ctx, entry(7)); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			got, err := st.Entries(ctx)
			if err != nil {
				t.Fatalf("Entries: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(got))
			}
		})
	}
}

func TestStoreEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	for _, d := range drivers {
		d := d
		t.Run(d, func(t *testing.T) {
			const capacity = 3
			st := openDriver(t, d, capacity)
			for i := 1; i <= 5; i++ {
				if err := st.Append(ctx, entry(i)); err != nil {
					t.Fatalf("Append(%d): %v", i, err)
				}
			}
			got, err := st.Entries(ctx)
			if err != nil {
				t.Fatalf("Entries: %v", err)
			}
			if len(got) != capacity {
				t.Fatalf("expected %d entries, got %d", capacity, len(got))
			}
			for i, e := range got {
				if want := entry(i + 3).StrikeID; e.StrikeID != want {
					t.Fatalf("entry %d = %s, want %s", i, e.StrikeID, want)
				}
			}
			if ok, _ := st.Contains(ctx, entry(1).StrikeID); ok {
				t.Fatal("evicted id still reported as present")
			}
		})
	}
}

func TestStoreReappendDoesNotRefresh(t *testing.T) {
	ctx := context.Background()
	for _, d := range drivers {
		d := d
		t.Run(d, func(t *testing.T) {
			st := openDriver(t, d, 2)
			_ = st.Append(ctx, entry(1))
			_ = st.Append(ctx, entry(2))
			_ = st.Append(ctx, entry(1)) // already present: FIFO position unchanged
			_ = st.Append(ctx, entry(3))
			got, _ := st.Entries(ctx)
			if len(got) != 2 || got[0].StrikeID != entry(2).StrikeID || got[1].StrikeID != entry(3).StrikeID {
				t.Fatalf("unexpected entries: %+v", got)
			}
		})
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	for _, d := range []string{"csv", "sqlite"} {
		d := d
		t.Run(d, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history."+d)
			cfg := Config{Driver: d, Path: path, MaxEntries: 10}
			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			want := entry(4)
			if err := st.Append(ctx, want); err != nil {
				t.Fatalf("Append: %v", err)
			}
			_ = st.Close()

			st, err = Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer st.Close()
			got, err := st.Entries(ctx)
			if err != nil {
				t.Fatalf("Entries: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(got))
			}
			if got[0].StrikeID != want.StrikeID || got[0].Province != want.Province || !got[0].SentAt.Equal(want.SentAt) {
				t.Fatalf("round trip mismatch: %+v vs %+v", got[0], want)
			}
		})
	}
}

func TestCSVLoadFailureIsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte("strike_id,date\nab\"c,d\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Open(Config{Driver: "csv", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ok, err := st.Contains(ctx, "abc")
	if err != nil || ok {
		t.Fatalf("Contains on corrupt file = %v, %v", ok, err)
	}
	// Appending rewrites the file from the empty view.
	if err := st.Append(ctx, entry(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, _ := st.Entries(ctx)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
}

func TestCSVSaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.csv")
	// The temp file path is a directory, so the rewrite cannot happen.
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatal(err)
	}
	st, err := Open(Config{Driver: "csv", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Append(ctx, entry(1)); err == nil {
		t.Fatal("expected save error")
	}
}

func TestCSVReadsLegacyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "strikes_history.csv")
	legacy := "strike_id,date,sector,region,province,sent_at\n" +
		"69f084c6acbe,05/05/2025,Trasporto,Lazio,Roma,2025-05-01T10:11:12.123456\n" +
		"12292a8a3c2a,05/05/2025,Trasporto,Lazio,,2025-05-01T10:11:13.000001\n"
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Open(Config{Driver: "csv", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := st.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].SentAt.IsZero() || got[1].Province != "" {
		t.Fatalf("unexpected legacy parse: %+v", got)
	}
	if ok, _ := st.Contains(ctx, "12292a8a3c2a"); !ok {
		t.Fatal("legacy id not found")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
