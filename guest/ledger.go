package guest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger is the per-device set of object keys this device believes it
// uploaded, persisted in a local SQLite file. It is the gallery's analog
// of browser local storage: not synchronized across devices, not
// authoritative, and gone when the file is cleared.
//
// A ledger that cannot be opened (missing directory, corrupt file)
// degrades to an empty, non-persisting set rather than failing the
// caller: ownership is a display hint, losing it only hides delete
// buttons.
type Ledger struct {
	db *sql.DB
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS owned_keys (
	key         TEXT PRIMARY KEY,
	recorded_at TEXT NOT NULL
)`

// OpenLedger opens (creating if needed) the ledger at path. Failures are
// logged and produce a degraded empty ledger, never an error the caller
// must handle.
func OpenLedger(path string) *Ledger {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		slog.Warn("ledger unavailable, ownership hints disabled", "path", path, "err", err)
		return &Ledger{}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		slog.Warn("ledger unavailable, ownership hints disabled", "path", path, "err", err)
		return &Ledger{}
	}

	// A single connection serializes interleaved appends from parallel
	// uploads, so no update is lost to a concurrent read-modify-write.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ledgerSchema); err != nil {
		slog.Warn("ledger unreadable, treating as empty", "path", path, "err", err)
		_ = db.Close()
		return &Ledger{}
	}

	return &Ledger{db: db}
}

// RecordUpload adds key to the owned set. Recording an already-present
// key is a no-op.
func (l *Ledger) RecordUpload(ctx context.Context, key string) error {
	if l.db == nil || key == "" {
		return nil
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO owned_keys (key, recorded_at) VALUES (?, ?)`,
		key, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record upload %q: %w", key, err)
	}
	return nil
}

// RemoveUpload removes key from the owned set. Removing an absent key is
// a no-op.
func (l *Ledger) RemoveUpload(ctx context.Context, key string) error {
	if l.db == nil {
		return nil
	}

	_, err := l.db.ExecContext(ctx, `DELETE FROM owned_keys WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("remove upload %q: %w", key, err)
	}
	return nil
}

// ListOwned returns every key recorded on this device. Read failures
// degrade to an empty set.
func (l *Ledger) ListOwned(ctx context.Context) []string {
	if l.db == nil {
		return []string{}
	}

	rows, err := l.db.QueryContext(ctx, `SELECT key FROM owned_keys ORDER BY recorded_at`)
	if err != nil {
		slog.Warn("ledger read failed, treating as empty", "err", err)
		return []string{}
	}
	defer func() { _ = rows.Close() }()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			slog.Warn("ledger read failed, treating as empty", "err", err)
			return []string{}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		slog.Warn("ledger read failed, treating as empty", "err", err)
		return []string{}
	}

	return keys
}

// Owns reports whether key is in the owned set.
func (l *Ledger) Owns(ctx context.Context, key string) bool {
	if l.db == nil {
		return false
	}

	var one int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM owned_keys WHERE key = ?`, key).Scan(&one)
	return err == nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
