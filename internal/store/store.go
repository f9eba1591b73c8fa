// Package store provides the sandboxed file store for the Bunko data directory.
// All operations resolve caller-supplied relative names against a single root
// directory; nothing outside the root is ever read or written.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sentinel errors for the store's failure modes. Callers match with errors.Is;
// messages carry the offending path or name.
var (
	// ErrSourceMissing is returned when a copy source does not exist.
	ErrSourceMissing = errors.New("source file does not exist")
	// ErrInvalidName is returned when a name is empty or has no usable filename.
	ErrInvalidName = errors.New("invalid filename")
	// ErrPathEscape is returned when a relative name would resolve outside the root.
	ErrPathEscape = errors.New("path escapes store root")
)

// FileStore is a directory-scoped file store. Relative names may contain
// subdirectory separators; they are cleaned and rejected if they would
// resolve outside the root.
type FileStore struct {
	root string
}

// New creates the root directory if needed and returns a store scoped to it.
func New(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute store root path.
func (s *FileStore) Root() string {
	return s.root
}

// Resolve joins a relative name onto the root, rejecting empty names and
// names that escape the root after cleaning (e.g. "../x" or "a/../../x").
func (s *FileStore) Resolve(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	clean := path.Clean(filepath.ToSlash(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, name)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// CopyIn copies the file at sourcePath into the root under its basename,
// discarding any source directory structure (flatten-copy). Returns the
// stored filename.
func (s *FileStore) CopyIn(sourcePath string) (string, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, sourcePath)
		}
		return "", fmt.Errorf("failed to stat source %s: %w", sourcePath, err)
	}
	name := filepath.Base(sourcePath)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, sourcePath)
	}
	dest, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := copyFile(sourcePath, dest); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	return name, nil
}

// CopyInAt copies the file at sourcePath to the given relative name inside the
// root, creating intermediate directories (path-preserving copy). Used by
// ingestion to replicate asset subpaths.
func (s *FileStore) CopyInAt(sourcePath, name string) error {
	dest, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := copyFile(sourcePath, dest); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}

// ReadText reads the named file as a string.
func (s *FileStore) ReadText(name string) (string, error) {
	data, err := s.ReadBinary(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBinary reads the named file's raw bytes. Any transport encoding
// (base64 at the API boundary) is the caller's responsibility.
func (s *FileStore) ReadBinary(name string) ([]byte, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", name, err)
	}
	return data, nil
}

// Write stores content under the given relative name, creating any missing
// intermediate directories. Existing files are overwritten.
func (s *FileStore) Write(name, content string) error {
	p, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(p); dir != s.root {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", name, err)
	}
	return nil
}

// Exists reports whether the named file exists. Plain absence is a valid
// false result; only name resolution failures surface as errors.
func (s *FileStore) Exists(name string) (bool, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		return false, nil
	}
	return true, nil
}

// Delete removes the named file. Deleting a nonexistent file is a no-op.
// Now-empty parent directories are left in place.
func (s *FileStore) Delete(name string) error {
	p, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to delete file '%s': %w", name, err)
	}
	return nil
}

// List walks the root recursively and returns every regular file's path
// relative to the root, with forward-slash separators. Directories are not
// listed. Traversal order is filesystem-dependent.
func (s *FileStore) List() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list store: %w", err)
	}
	return files, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
