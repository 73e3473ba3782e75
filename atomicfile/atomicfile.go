// Package atomicfile writes files via a temporary file in the same directory,
// which is renamed on Close. Readers never see a partial file.
package atomicfile

import (
	"os"
	"path/filepath"
)

// File is a temporary file, that will be moved to its final name on Close.
type File struct {
	*os.File
	name    string
	perm    os.FileMode
	aborted bool
}

// New creates a temporary file next to name. The directory must exist.
func New(name string) (*File, error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-")
	if err != nil {
		return nil, err
	}
	return &File{File: f, name: name, perm: 0644}, nil
}

// Abort removes the temporary file; a subsequent Close is a noop.
func (f *File) Abort() error {
	if f.aborted {
		return nil
	}
	f.aborted = true
	_ = f.File.Close()
	return os.Remove(f.File.Name())
}

// Close syncs and closes the temporary file and renames it. On any error,
// the temporary file is removed.
func (f *File) Close() error {
	if f.aborted {
		return nil
	}
	err := f.File.Sync()
	if closeErr := f.File.Close(); err == nil {
		err = closeErr
	}
	if permErr := os.Chmod(f.File.Name(), f.perm); err == nil {
		err = permErr
	}
	if err == nil {
		err = os.Rename(f.File.Name(), f.name)
	}
	if err != nil {
		os.Remove(f.File.Name())
	}
	return err
}

// WriteFile writes data to filename atomically.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	f, err := New(filename)
	if err != nil {
		return err
	}
	f.perm = perm
	if _, err := f.Write(data); err != nil {
		_ = f.Abort()
		return err
	}
	return f.Close()
}
