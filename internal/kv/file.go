package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps every key in one JSON object on disk, the way a browser keeps
// local storage for an origin.
type File struct {
	mu       sync.RWMutex
	values   map[string]string
	filename string
}

func NewFile(filename string) (*File, error) {
	if filename == "" {
		return nil, fmt.Errorf("file path is required")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	f := &File{
		values:   make(map[string]string),
		filename: filename,
	}

	// Load existing data if file exists
	if err := f.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.save(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

func (f *File) Close() error {
	return nil
}

func (f *File) save() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first for atomicity
	tmpFile := f.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	return os.Rename(tmpFile, f.filename)
}

func (f *File) load() error {
	data, err := os.ReadFile(f.filename)
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &f.values); err != nil {
		return fmt.Errorf("failed to parse %s: %w", f.filename, err)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	return nil
}
