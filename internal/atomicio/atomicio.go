// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package atomicio provides atomic file writing, optionally with backups.
package atomicio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	backupTimeFormat = "20060102150405.999999999"
	maxBackups       = 10
)

// WriteFile writes data to a temporary file next to name and renames it over
// name, so readers never observe a partially written file.
func WriteFile(name string, data []byte, perm fs.FileMode) error {
	tmp, err := writeTemp(name, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// WriteFileBackup is like [WriteFile], but it keeps the previous contents of
// name as a timestamped .bak file and prunes all but the newest backups.
func WriteFileBackup(name string, data []byte, perm fs.FileMode) error {
	tmp, err := writeTemp(name, data, perm)
	if err != nil {
		return err
	}

	if _, err := os.Stat(name); err == nil {
		backupName := name + "." + time.Now().UTC().Format(backupTimeFormat) + ".bak"
		if err := os.Rename(name, backupName); err != nil {
			os.Remove(tmp)
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return err
	}

	return pruneBackups(name)
}

// The temporary file lives in the same directory so that os.Rename stays on
// one filesystem.
func writeTemp(name string, data []byte, perm fs.FileMode) (path string, err error) {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err := f.Write(data); err != nil {
		return "", err
	}
	if err := f.Chmod(perm); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// Backups returns backup files of name, oldest first.
func Backups(name string) ([]string, error) {
	backups, err := filepath.Glob(name + ".*.bak")
	if err != nil {
		return nil, err
	}
	slices.Sort(backups)
	return backups, nil
}

func pruneBackups(name string) error {
	backups, err := Backups(name)
	if err != nil {
		return err
	}
	if len(backups) <= maxBackups {
		return nil
	}
	for _, b := range backups[:len(backups)-maxBackups] {
		if err := os.Remove(b); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
