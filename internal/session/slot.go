// ABOUTME: Durable key/value slot holding the serialized session
// ABOUTME: File-backed implementation stored in the XDG config directory

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// StorageKey is the fixed namespace of the persisted session
const StorageKey = "user-storage"

// ErrSlotEmpty is returned by Load when nothing has been stored
var ErrSlotEmpty = errors.New("session slot is empty")

// Slot is one durable client-side key/value slot
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// FileSlot stores the session as a JSON file
type FileSlot struct {
	path string
}

// NewFileSlot creates a slot at <dir>/user-storage.json
func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{path: filepath.Join(dir, StorageKey+".json")}
}

// Path returns the file backing the slot
func (s *FileSlot) Path() string {
	return s.path
}

// Load reads the slot contents
func (s *FileSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrSlotEmpty
	}
	return data, nil
}

// Save replaces the slot contents. The write goes to a temp file first so a
// crash never leaves a half-written session behind.
func (s *FileSlot) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+StorageKey+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Clear removes the slot file
func (s *FileSlot) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
