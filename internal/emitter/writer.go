package emitter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// WriteResult reports what a Write pass actually did, paths relative to
// the target root and in rendering order.
type WriteResult struct {
	Written   []string `json:"written"`
	Unchanged []string `json:"unchanged"`
}

// Write puts rendered files on disk under root. A file is written only when
// its content differs byte-for-byte from what is already there; unchanged
// files keep their modification time. Each write goes through a temp file
// and an atomic rename so an interrupted process never leaves a
// half-written artifact.
func Write(root string, files []File) (*WriteResult, error) {
	result := &WriteResult{}

	for _, file := range files {
		dest := filepath.Join(root, filepath.FromSlash(file.Path))

		existing, err := os.ReadFile(dest)
		if err == nil && bytes.Equal(existing, file.Content) {
			result.Unchanged = append(result.Unchanged, file.Path)
			continue
		}
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", dest, err)
		}

		if err := WriteFileAtomic(dest, file.Content); err != nil {
			return nil, err
		}
		result.Written = append(result.Written, file.Path)
	}

	return result, nil
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename. Parent directories are created as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
