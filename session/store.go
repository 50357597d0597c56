package session

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Store persists the single signed session record for this device.
// Load returns "" with a nil error when no record exists.
type Store interface {
	Save(ctx context.Context, record string, ttl time.Duration) error
	Load(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// FileStore keeps the record in a local file, the moral equivalent of the
// browser's localStorage slot.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Save(_ context.Context, record string, _ time.Duration) error {
	if err := os.WriteFile(f.path, []byte(record), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}
	return string(data), nil
}

func (f *FileStore) Delete(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process store used by tests and embedded callers.
type MemoryStore struct {
	record string
	set    bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(_ context.Context, record string, _ time.Duration) error {
	m.record, m.set = record, true
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (string, error) {
	if !m.set {
		return "", nil
	}
	return m.record, nil
}

func (m *MemoryStore) Delete(_ context.Context) error {
	m.record, m.set = "", false
	return nil
}
