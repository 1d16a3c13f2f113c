// Package history persists knowledge conversation turns and context variables.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversation (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	source TEXT,
	tokens INTEGER DEFAULT 0
);
CREATE TABLE IF NOT EXISTS context (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore keeps the conversation log in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewStore opens the SQLite store at dbPath and falls back to a JSONL file
// store next to it when the database cannot be opened.
func NewStore(dbPath string, logger ports.Logger) ports.ConversationRepository {
	store, err := OpenSQLite(dbPath)
	if err == nil {
		return store
	}
	fallback := NewFileStore(strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".jsonl")
	logger.Warn("sqlite history unavailable, using file store", map[string]interface{}{
		"path":  fallback.Path(),
		"error": err.Error(),
	})
	return fallback
}

// OpenSQLite creates (or opens) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// SaveTurn inserts one conversation turn.
func (s *SQLiteStore) SaveTurn(turn domain.ConversationTurn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO conversation (timestamp, question, answer, source, tokens) VALUES (?, ?, ?, ?, ?)`,
		turn.Timestamp.Format(time.RFC3339Nano),
		turn.Question,
		turn.Answer,
		turn.Source,
		turn.Tokens,
	)
	return err
}

// Turns returns the most recent turns, oldest first. limit <= 0 returns all.
func (s *SQLiteStore) Turns(limit int) ([]domain.ConversationTurn, error) {
	query := `SELECT id, timestamp, question, answer, source, tokens FROM conversation ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var turn domain.ConversationTurn
		var ts string
		var source sql.NullString
		if err := rows.Scan(&turn.ID, &ts, &turn.Question, &turn.Answer, &source, &turn.Tokens); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			turn.Timestamp = t
		}
		turn.Source = source.String
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// SetVariable upserts a context variable.
func (s *SQLiteStore) SetVariable(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO context (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339Nano))
	return err
}

// Variable reads a context variable.
func (s *SQLiteStore) Variable(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM context WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) variables() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM context ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vars := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		vars[k] = v
	}
	return vars, rows.Err()
}

// ExportJSON writes every turn and variable to dest as indented JSON.
func (s *SQLiteStore) ExportJSON(dest string) error {
	turns, err := s.Turns(0)
	if err != nil {
		return err
	}
	vars, err := s.variables()
	if err != nil {
		return err
	}
	return writeExport(dest, turns, vars)
}

// Clear deletes all turns and variables.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM conversation; DELETE FROM context;`)
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Export is the document written by ExportJSON.
type Export struct {
	ExportedAt   time.Time                 `json:"exported_at"`
	Conversation []domain.ConversationTurn `json:"conversation"`
	Context      map[string]string         `json:"context"`
}

func writeExport(dest string, turns []domain.ConversationTurn, vars map[string]string) error {
	if turns == nil {
		turns = []domain.ConversationTurn{}
	}
	if vars == nil {
		vars = map[string]string{}
	}
	data, err := json.MarshalIndent(Export{
		ExportedAt:   time.Now(),
		Conversation: turns,
		Context:      vars,
	}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
			return err
		}
	}
	return os.WriteFile(dest, append(data, '\n'), domain.SecureFilePermissions)
}

var _ ports.ConversationRepository = (*SQLiteStore)(nil)
