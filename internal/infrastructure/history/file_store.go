package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// FileStore appends turns to a JSONL file and keeps variables in a JSON
// sidecar. It backs the conversation log when SQLite is unavailable.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveTurn appends one turn; IDs are assigned sequentially.
func (f *FileStore) SaveTurn(turn domain.ConversationTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, err := f.readTurns()
	if err != nil {
		return err
	}
	turn.ID = int64(len(existing) + 1)
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Turns returns the most recent turns, oldest first.
func (f *FileStore) Turns(limit int) ([]domain.ConversationTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	turns, err := f.readTurns()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

// SetVariable stores a context variable in the sidecar file.
func (f *FileStore) SetVariable(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vars, err := f.readVariables()
	if err != nil {
		return err
	}
	vars[key] = value
	data, err := json.MarshalIndent(vars, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return os.WriteFile(f.variablesPath(), data, domain.SecureFilePermissions)
}

// Variable reads a context variable.
func (f *FileStore) Variable(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vars, err := f.readVariables()
	if err != nil {
		return "", false, err
	}
	value, ok := vars[key]
	return value, ok, nil
}

// ExportJSON writes turns and variables to dest.
func (f *FileStore) ExportJSON(dest string) error {
	f.mu.Lock()
	turns, err := f.readTurns()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	vars, err := f.readVariables()
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return writeExport(dest, turns, vars)
}

// Clear removes both files.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range []string{f.path, f.variablesPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) variablesPath() string {
	return f.path + ".vars.json"
}

// readTurns loads all turns, skipping malformed lines.
func (f *FileStore) readTurns() ([]domain.ConversationTurn, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []domain.ConversationTurn
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var turn domain.ConversationTurn
		if err := json.Unmarshal(line, &turn); err == nil {
			turns = append(turns, turn)
		}
	}
	return turns, nil
}

func (f *FileStore) readVariables() (map[string]string, error) {
	vars := map[string]string{}
	data, err := os.ReadFile(f.variablesPath())
	if errors.Is(err, os.ErrNotExist) {
		return vars, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

var _ ports.ConversationRepository = (*FileStore)(nil)
