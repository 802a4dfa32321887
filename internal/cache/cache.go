// Package cache is a content-hash-keyed store of validation results,
// layered outside the core linker: the linker and checker stay pure
// functions of their inputs and the CLI keys cached results by a
// fingerprint of the fragment set.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	hash        TEXT PRIMARY KEY,
	id          TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	diagnostics TEXT NOT NULL
);`

// Store is a SQLite-backed validation result cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the cached diagnostic lines for hash, and whether an entry
// existed.
func (s *Store) Get(hash string) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT diagnostics FROM runs WHERE hash = ?`, hash).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var lines []string
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, false, err
	}
	return lines, true, nil
}

// Put records the diagnostic lines of one validation run under hash,
// replacing any previous entry.
func (s *Store) Put(hash string, lines []string) error {
	if lines == nil {
		lines = []string{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO runs (hash, id, created_at, diagnostics) VALUES (?, ?, ?, ?)`,
		hash, uuid.NewString(), time.Now().UTC().Format(time.RFC3339), string(raw),
	)
	return err
}

// Fingerprint hashes the contents of paths (sorted, so order of discovery
// does not matter) into a cache key.
func Fingerprint(paths []string) (string, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	h := sha256.New()
	for _, path := range sorted {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%d\x00", path, len(data))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
