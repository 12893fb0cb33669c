// Package storage keeps imported e-book files in the app's private directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/storyhub/internal/utils"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	Name       string
	Path       string
	Size       int64
	ModifiedAt time.Time
}

// Local stores files under a single root directory. Every saved file gets a
// unique name, so two uploads with the same display name never collide.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Root returns the storage directory.
func (l *Local) Root() string {
	return l.root
}

// Save copies src byte for byte into a new file named after displayName.
// A partially written file is removed when the copy fails.
func (l *Local) Save(src io.Reader, displayName string) (string, int64, error) {
	if err := os.MkdirAll(l.root, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create storage directory: %w", err)
	}

	base, ext := utils.SplitExtension(displayName)
	name := fmt.Sprintf("%s_%s%s", utils.SanitizeFilename(base), uuid.NewString()[:8], ext)
	path := filepath.Join(l.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	size, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return path, size, nil
}

// Remove deletes a stored file. Missing files are ignored.
func (l *Local) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open opens a stored file for reading.
func (l *Local) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// List returns the regular files in the storage directory, oldest first.
// A missing directory yields an empty list.
func (l *Local) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:       entry.Name(),
			Path:       filepath.Join(l.root, entry.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.Before(files[j].ModifiedAt)
	})
	return files, nil
}

// FilterFiles filters file list by a predicate function
func FilterFiles(files []FileInfo, predicate func(FileInfo) bool) []FileInfo {
	var filtered []FileInfo
	for _, f := range files {
		if predicate(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
