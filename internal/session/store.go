package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

const fileName = "session.json"

// Snapshot is the persisted pair; both keys must be present for a session to restore.
type Snapshot struct {
	Token string          `json:"token,omitempty"`
	User  *transport.User `json:"user,omitempty"`
}

func (s Snapshot) Valid() bool { return s.Token != "" && s.User != nil }

type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Clear() error
}

// FileStore keeps the session in <dir>/session.json.
type FileStore struct {
	path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, fileName)}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read session: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse session: %w", err)
	}
	return s, nil
}

func (f *FileStore) Save(s Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore is a Store without persistence.
type MemoryStore struct {
	snap Snapshot
}

func (m *MemoryStore) Load() (Snapshot, error) { return m.snap, nil }

func (m *MemoryStore) Save(s Snapshot) error {
	m.snap = s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.snap = Snapshot{}
	return nil
}
