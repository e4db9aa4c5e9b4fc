package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	logx "scioperibot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// DefaultSQLitePath is used when the sqlite driver has no path configured.
const DefaultSQLitePath = "strikes_history.db"

const historyTable = "history"

var historyColumns = []string{"strike_id", "date", "sector", "region", "province", "sent_at"}

type sqliteStore struct {
	db     *sql.DB
	log    logx.Logger
	policy Policy
	now    func() time.Time
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{
		db:     db,
		log:    log.With(logx.String("comp", "history.sqlite"), logx.String("path", path)),
		policy: cfg.Policy(),
		now:    time.Now,
	}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Contains(ctx context.Context, id string) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrClosed
	}
	query, args, err := sq.Select("1").From(historyTable).Where(sq.Eq{"strike_id": id}).Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query history: %w", err)
	}
	return true, nil
}

func (s *sqliteStore) Append(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	sent := ""
	if !e.SentAt.IsZero() {
		sent = e.SentAt.Format(time.RFC3339Nano)
	}
	query, args, err := sq.Insert(historyTable).
		Columns(historyColumns...).
		Values(e.StrikeID, e.Date, e.Sector, e.Region, e.Province, sent).
		Suffix("ON CONFLICT(strike_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return s.enforce(ctx)
}

// enforce deletes every row the policy does not retain.
func (s *sqliteStore) enforce(ctx context.Context) error {
	all, err := s.Entries(ctx)
	if err != nil {
		return err
	}
	keep := map[string]struct{}{}
	for _, e := range s.policy.Retain(append([]Entry(nil), all...), s.now()) {
		keep[e.StrikeID] = struct{}{}
	}
	var drop []string
	for _, e := range all {
		if _, ok := keep[e.StrikeID]; !ok {
			drop = append(drop, e.StrikeID)
		}
	}
	if len(drop) == 0 {
		return nil
	}
	query, args, err := sq.Delete(historyTable).Where(sq.Eq{"strike_id": drop}).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("evict history: %w", err)
	}
	s.log.Debug("history evicted", logx.Int("count", len(drop)))
	return nil
}

func (s *sqliteStore) Entries(ctx context.Context) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	query, args, err := sq.Select(historyColumns...).From(historyTable).OrderBy("seq ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var sent string
		if err := rows.Scan(&e.StrikeID, &e.Date, &e.Sector, &e.Region, &e.Province, &sent); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.SentAt = parseSentAt(sent)
		out = append(out, e)
	}
	return out, rows.Err()
}
