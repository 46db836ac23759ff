// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package atomicio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "shared_state.json")

	for _, data := range []string{"{}", `{"version":"2.0"}`} {
		if err := WriteFile(file, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, string(got), data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, len(entries), 1)
}

func TestWriteFileBackup(t *testing.T) {
	t.Parallel()

	t.Run("new file", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "post.md")
		if err := WriteFileBackup(file, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		backups, err := Backups(file)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, len(backups), 0)
	})

	t.Run("overwrite", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "post.md")
		if err := WriteFileBackup(file, []byte("draft"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := WriteFileBackup(file, []byte("revised"), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, string(got), "revised")

		backups, err := Backups(file)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, len(backups), 1)
		old, err := os.ReadFile(backups[0])
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, string(old), "draft")
	})

	t.Run("prune", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "post.md")
		for i := range maxBackups + 2 {
			if err := WriteFileBackup(file, []byte{byte(i)}, 0o644); err != nil {
				t.Fatal(err)
			}
			// Backup names carry a timestamp.
			time.Sleep(2 * time.Millisecond)
		}
		backups, err := Backups(file)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, len(backups), maxBackups)
	})
}
