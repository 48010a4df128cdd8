package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

// Slot names used by the application.
const (
	SlotTodos   = "todos"
	SlotSorting = "todo-sorting"
	SlotTheme   = "theme"
)

// Store persists JSON documents under named slots in a sqlite file.
// Save never returns an error: persistence failures are logged and the
// caller's in-memory state stays authoritative for the session.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS slots (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// Save serializes value and writes it under key, replacing any previous
// document in that slot. Failures are reported to the log and swallowed.
func (s *Store) Save(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Error("save failed", "slot", key, "err", err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, key, string(data))
	if err != nil {
		log.Error("save failed", "slot", key, "err", err)
	}
}

// Load reads the slot under key into dest. It returns false, with dest
// untouched, when the slot is absent or its content does not parse as
// the shape dest expects; callers fall back to their default value.
func (s *Store) Load(key string, dest any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM slots WHERE key = ?;`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		log.Error("load failed", "slot", key, "err", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Warn("discarding corrupt slot", "slot", key, "err", err)
		return false
	}
	return true
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
