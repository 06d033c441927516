// Package store persists all mathcourt state in a single SQLite database:
// a key/value table holding the JSON-encoded user records, progress and
// tutorial state, and a vector table backing the learnings search.
//
// Keys follow the `<base>_<username>` convention for per-user data; a small
// set of global keys (user directory, last logged-in user) have no suffix.
// Malformed JSON under a key is treated as absence: the key is cleared and
// the caller gets the zero value, never a parse error.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"mathcourt/internal/logging"
)

// Global keys.
const (
	KeyUsers    = "mathcourtUsers_v1"
	KeyLastUser = "mathcourtLastLoggedInUser_v1"
)

// Per-user key bases.
const (
	KeyLevelBase             = "mathcourtCurrentLevel_v1"
	KeyLearningsBase         = "mathcourtLearnings_v1"
	KeyTutorialStepsBase     = "mathcourtTutorialCompletedSteps_v1"
	KeyTutorialsSkippedBase  = "mathcourtAllTutorialsDone_v1"
	KeyClass8TopicIndexBase  = "mathcourtClass8TopicIndex_v1"
	KeyClass9TopicIndexBase  = "mathcourtClass9TopicIndex_v1"
	KeyClass10TopicIndexBase = "mathcourtClass10TopicIndex_v1"
)

// UserKey combines a base key with a username.
func UserKey(base, username string) string {
	return fmt.Sprintf("%s_%s", base, username)
}

// Store is the SQLite-backed key/value store.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// New opens (or creates) the database at the given path.
// Use ":memory:" for tests.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.New")
	defer timer.Stop()

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Store initialized at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS learning_vectors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		level INTEGER NOT NULL,
		text TEXT NOT NULL,
		embedding TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(username, level, text)
	);
	CREATE INDEX IF NOT EXISTS idx_learning_vectors_user ON learning_vectors(username);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get returns the raw string value for a key.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a raw string value under a key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO kv(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	logging.StoreDebug("Set %s (%d bytes)", key, len(value))
	return nil
}

// Delete removes a key.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// GetJSON unmarshals the value under key into out. Corrupted JSON is
// treated as absence: the key is cleared and found=false is returned.
func (s *Store) GetJSON(key string, out interface{}) (bool, error) {
	raw, found, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logging.Get(logging.CategoryStore).Warn("Corrupted JSON under %s; clearing: %v", key, err)
		if delErr := s.Delete(key); delErr != nil {
			return false, delErr
		}
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func (s *Store) SetJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// LearningVector pairs a recorded learning with its embedding.
type LearningVector struct {
	Username  string
	Level     int
	Text      string
	Embedding []float64
}

// SaveLearningVector stores (or replaces) the embedding for one learning.
func (s *Store) SaveLearningVector(v LearningVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO learning_vectors(username, level, text, embedding) VALUES(?, ?, ?, ?) "+
			"ON CONFLICT(username, level, text) DO UPDATE SET embedding = excluded.embedding",
		v.Username, v.Level, v.Text, string(data))
	if err != nil {
		return fmt.Errorf("failed to save learning vector: %w", err)
	}
	return nil
}

// LearningVectors returns all stored vectors for a user.
func (s *Store) LearningVectors(username string) ([]LearningVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT username, level, text, embedding FROM learning_vectors WHERE username = ? ORDER BY level, text",
		username)
	if err != nil {
		return nil, fmt.Errorf("failed to query learning vectors: %w", err)
	}
	defer rows.Close()

	var out []LearningVector
	for rows.Next() {
		var v LearningVector
		var raw string
		if err := rows.Scan(&v.Username, &v.Level, &v.Text, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan learning vector: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &v.Embedding); err != nil {
			// Unusable embedding, skip; the text row still lives in kv.
			logging.StoreDebug("Skipping corrupted embedding for %q: %v", v.Text, err)
			continue
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
