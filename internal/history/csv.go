package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "scioperibot/pkg/logx"
)

// DefaultCSVPath is used when the csv driver has no path configured.
const DefaultCSVPath = "strikes_history.csv"

var csvHeader = []string{"strike_id", "date", "sector", "region", "province", "sent_at"}

// sent_at layouts accepted on read. Files written by older tooling carry a
// naive ISO-8601 timestamp without zone.
var sentAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// csvStore keeps no state in memory: every call reads the file in full and
// every append rewrites it, so concurrent readers always see a complete file.
type csvStore struct {
	path   string
	policy Policy
	log    logx.Logger
	now    func() time.Time

	mu     sync.Mutex
	closed bool
}

func openCSV(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = DefaultCSVPath
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return &csvStore{
		path:   path,
		policy: cfg.Policy(),
		log:    log.With(logx.String("comp", "history.csv"), logx.String("path", path)),
		now:    time.Now,
	}, nil
}

func (s *csvStore) Contains(ctx context.Context, id string) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	return containsID(s.loadLocked(), id), nil
}

func (s *csvStore) Append(ctx context.Context, e Entry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	entries := s.loadLocked()
	if containsID(entries, e.StrikeID) {
		return nil
	}
	entries = s.policy.Retain(append(entries, e), s.now())
	if err := writeCSV(s.path, entries); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *csvStore) Entries(ctx context.Context) ([]Entry, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.loadLocked(), nil
}

func (s *csvStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// loadLocked degrades to an empty history on any read failure.
func (s *csvStore) loadLocked() []Entry {
	entries, err := readCSV(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("history load failed; treating as empty", logx.Err(err))
		}
		return nil
	}
	return entries
}

func readCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := col["strike_id"]; !ok {
		return nil, fmt.Errorf("missing strike_id column")
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []Entry
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		id := strings.TrimSpace(get(row, "strike_id"))
		if id == "" || containsID(out, id) {
			continue
		}
		out = append(out, Entry{
			StrikeID: id,
			Date:     get(row, "date"),
			Sector:   get(row, "sector"),
			Region:   get(row, "region"),
			Province: get(row, "province"),
			SentAt:   parseSentAt(get(row, "sent_at")),
		})
	}
	return out, nil
}

func writeCSV(path string, entries []Entry) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	_ = w.Write(csvHeader)
	for _, e := range entries {
		sent := ""
		if !e.SentAt.IsZero() {
			sent = e.SentAt.Format(time.RFC3339Nano)
		}
		_ = w.Write([]string{e.StrikeID, e.Date, e.Sector, e.Region, e.Province, sent})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func parseSentAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range sentAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
