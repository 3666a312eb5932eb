package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gitscribe/internal/namespace"

	_ "github.com/mattn/go-sqlite3"
)

// SymbolCache is a SQLite-backed cache of extracted symbols keyed by
// (handle, path). The engine consults it only for commit handles, whose
// content never changes, so entries never need invalidation. It is a
// pure optimization layer: the diff contract is identical without it.
type SymbolCache struct {
	db *sql.DB
}

// OpenSymbolCache creates or opens the cache database.
func OpenSymbolCache(path string) (*SymbolCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	c := &SymbolCache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init symbol cache schema: %w", err)
	}
	return c, nil
}

func (c *SymbolCache) initSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS symbol_cache (
			ref        TEXT NOT NULL,
			path       TEXT NOT NULL,
			symbols    TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (ref, path)
		)`)
	return err
}

func (c *SymbolCache) Close() error { return c.db.Close() }

// Get returns the cached symbols for (handle, path), with ok=false on
// a miss.
func (c *SymbolCache) Get(ctx context.Context, handle, path string) ([]namespace.Symbol, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT symbols FROM symbol_cache WHERE ref = ? AND path = ?`,
		handle, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var symbols []namespace.Symbol
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s:%s: %w", handle, path, err)
	}
	return symbols, true, nil
}

// Put stores the symbols for (handle, path), replacing any previous
// entry.
func (c *SymbolCache) Put(ctx context.Context, handle, path string, symbols []namespace.Symbol) error {
	raw, err := json.Marshal(symbols)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO symbol_cache (ref, path, symbols) VALUES (?, ?, ?)`,
		handle, path, string(raw))
	return err
}
