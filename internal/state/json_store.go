package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/logfields"
)

// fileFormat is the on-disk JSON structure.
type fileFormat struct {
	LastValues map[string]string `json:"last_values"`
}

// JSONStore persists the record as a single JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store writing to path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Location returns the file path.
func (s *JSONStore) Location() string { return s.path }

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }

// Load reads the state file. Missing or corrupt files yield an empty record.
func (s *JSONStore) Load(_ context.Context) Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read state file, starting fresh", logfields.Path(s.path), logfields.Error(err))
		}
		return NewRecord()
	}

	// Decode through pointers so a hand-edited null is dropped rather than
	// loaded as an empty value.
	var f struct {
		LastValues map[string]*string `json:"last_values"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		slog.Warn("State file is corrupt, starting fresh", logfields.Path(s.path), logfields.Error(err))
		return NewRecord()
	}

	r := NewRecord()
	for name, v := range f.LastValues {
		if v == nil {
			slog.Warn("Dropping null state entry", logfields.Path(s.path), logfields.Target(name))
			continue
		}
		r[name] = *v
	}
	slog.Info("State loaded from disk", logfields.Path(s.path), logfields.Count(len(r)))
	return r
}

// Save writes the record to a temporary file in the same directory, syncs
// it and renames it over the state file.
func (s *JSONStore) Save(_ context.Context, r Record) error {
	values := map[string]string(r)
	if values == nil {
		values = map[string]string{}
	}
	data, err := json.MarshalIndent(fileFormat{LastValues: values}, "", "  ")
	if err != nil {
		return errors.StateError(err, "marshal state").Build()
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return errors.StateError(err, "write state file").
			WithContext("path", s.path).
			Build()
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return err
	}

	// Persist the rename itself; not all platforms support syncing a directory.
	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
