// Package history persists the identities of strikes that were already
// notified.
//
// The store is a bounded, insertion-ordered log. A capacity Policy decides
// which entries survive each append; the default keeps the most recent N
// (FIFO: re-seeing an ID never refreshes its position).
//
// Backends:
//   - "csv": one CSV file, reloaded on every check and rewritten after every append
//   - "sqlite": SQLite database (modernc.org/sqlite, pure Go)
//   - "memory": process-local, used by tests and dry runs
package history
