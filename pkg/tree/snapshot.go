package tree

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshots are a pure performance cache for repeated local runs: a cache hit
// must produce results identical to a fresh assembly. The gob stream is not
// itself byte-stable (map iteration order), but the decoded model is.

// SaveSnapshot writes the assembled model to path, creating parent
// directories as needed. The file is written to a temp name first so a
// crashed run never leaves a half-written snapshot behind.
func SaveSnapshot(path string, data *CategoryTreeData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

// LoadSnapshot reads a model previously written by SaveSnapshot.
func LoadSnapshot(path string) (*CategoryTreeData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	data := NewCategoryTreeData()
	if err := gob.NewDecoder(f).Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return data, nil
}

// SnapshotExists reports whether a snapshot is present at path.
func SnapshotExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
