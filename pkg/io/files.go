package io

import (
	"io/fs"
	"os"
	"path/filepath"
)

// CreateAll opens name for writing, creating missing parent
// directories first.
//
// fmod is the mode of the file, dmod of each directory newly created.
// Directories which exist already keep their mode.
func CreateAll(name string, fmod os.FileMode, dmod os.FileMode) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(name), dmod); err != nil {
		return nil, err
	}
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fmod)
}

// copy regular files under `source` into `dest`, keeping the directory layout.
//
// `dest` and missing parent directories are created as needed.
// Non-regular entries (symlinks, devices) are skipped.
func DirCopy(source string, dest string) error {
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f, err := CreateAll(target, 0644, 0755)
		if err != nil {
			return err
		}
		if _, err := f.Write(content); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}
