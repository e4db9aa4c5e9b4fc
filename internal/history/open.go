package history

import (
	"errors"
	"strings"

	logx "scioperibot/pkg/logx"
)

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "csv":
		return openCSV(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory", "none":
		return NewMemory(cfg.Policy()), nil
	default:
		return nil, errors.New("unknown history driver: " + driver)
	}
}
