package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record names in the store.
const (
	TimerStateKey = "timerState"
	DailyKey      = "dailyPomodoros"
)

// ErrNotFound is returned by Store.Get for a record that was never written.
var ErrNotFound = errors.New("record not found")

// Store is a durable key/value store with last-writer-wins semantics.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// FileStore keeps every record in a single JSON object on disk.
type FileStore struct {
	path    string
	mu      sync.Mutex
	records map[string]json.RawMessage
}

// OpenFileStore loads path, or starts empty if it does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, records: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(data, &fs.records); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	return fs, nil
}

func (fs *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	raw, ok := fs.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (fs *FileStore) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("record %s is not valid JSON", key)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.records[key]
	fs.records[key] = append(json.RawMessage(nil), value...)
	if err := fs.save(); err != nil {
		if had {
			fs.records[key] = prev
		} else {
			delete(fs.records, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) Close() error { return nil }

// save atomically replaces the state file.
func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp, fs.path)
}
