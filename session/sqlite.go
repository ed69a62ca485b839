package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// slotKey is the single key-value slot the serialized session lives in,
// mirroring the one persisted client-side entry the web front-end keeps.
const slotKey = "session"

// SQLiteStore persists the session slot in a local sqlite database so it
// survives process restarts.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex
	subs subscribers
}

// NewSQLite opens (and if needed creates) the session database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	// Single writer, tiny database: one connection is enough and avoids
	// SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping session database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize session schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_slots (
		slot TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv_slots WHERE slot = ?`, slotKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false
	}
	if err != nil {
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// 손상된 슬롯은 빈 세션으로 취급한다. 다음 Save 가 덮어쓴다.
		return Session{}, false
	}
	return sess, true
}

func (s *SQLiteStore) Save(sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}

	s.mu.Lock()
	_, err = s.db.Exec(`
		INSERT INTO kv_slots (slot, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		ON CONFLICT(slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		slotKey, string(raw))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write session slot: %w", err)
	}

	s.subs.notify(sess, true)
	return nil
}

func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	res, err := s.db.Exec(`DELETE FROM kv_slots WHERE slot = ?`, slotKey)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear session slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.subs.notify(Session{}, false)
	}
	return nil
}

func (s *SQLiteStore) Subscribe(fn func(Session, bool)) func() {
	return s.subs.add(fn)
}
