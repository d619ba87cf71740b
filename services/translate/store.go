package translate

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the optional durable translation cache tier. A nil *Store is
// valid and means the engine runs with the in-memory tier only.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the SQLite translation cache at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open translation store: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS translations (
		hash TEXT PRIMARY KEY,
		original TEXT,
		translated TEXT,
		lang TEXT,
		tone TEXT,
		created_at INTEGER
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init translation store: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored translation for key, if any.
func (s *Store) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	var translated string
	err := s.db.QueryRow(`SELECT translated FROM translations WHERE hash = ?`, key).Scan(&translated)
	if err != nil || translated == "" {
		return "", false
	}
	return translated, true
}

// Put stores a finished translation under key, replacing any previous value.
func (s *Store) Put(key, original, translated, lang, tone string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO translations (hash, original, translated, lang, tone, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		key, original, translated, lang, tone, time.Now().Unix(),
	)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
