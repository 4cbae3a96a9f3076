// Package cache is an optional local build cache: it remembers a source
// file's hash alongside its last compiled NEF bytes, so `neoc batch` can
// skip recompiling a file whose content hasn't changed since the last run.
//
// Grounded on internal/database's sql.DB-backed connection module —
// generalised from a multi-driver credential-testing connection pool down
// to the one pure-Go driver this compiler's build tooling actually needs.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache is a build-result cache backed by a single SQLite file. The zero
// value is not usable; construct with Open.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and ensures
// its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS build_cache (
		source_hash TEXT PRIMARY KEY,
		source_name TEXT NOT NULL,
		script      BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Hash returns the cache key for a source file's contents.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached script bytes for sourceHash, and whether an
// entry was found.
func (c *Cache) Lookup(sourceHash string) ([]byte, bool, error) {
	var script []byte
	err := c.db.QueryRow(`SELECT script FROM build_cache WHERE source_hash = ?`, sourceHash).Scan(&script)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup %s: %w", sourceHash, err)
	}
	return script, true, nil
}

// Store records sourceName's compiled script under sourceHash, replacing
// any previous entry for that hash.
func (c *Cache) Store(sourceHash, sourceName string, script []byte) error {
	_, err := c.db.Exec(`INSERT INTO build_cache (source_hash, source_name, script)
		VALUES (?, ?, ?)
		ON CONFLICT(source_hash) DO UPDATE SET source_name = excluded.source_name, script = excluded.script`,
		sourceHash, sourceName, script)
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", sourceHash, err)
	}
	return nil
}
