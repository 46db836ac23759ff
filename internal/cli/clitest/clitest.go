// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package clitest runs table tests against the pipeline commands.
//
// Every case gets a fresh application and its own data directory, exported
// as AUTOBLOG_DIR, so cases can run in parallel without sharing drafts or
// state files.
package clitest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/cli"
)

// Case is a single run of a command.
type Case[App cli.App] struct {
	// Args are the command-line arguments.
	Args []string
	// Stdin is the optional standard input.
	Stdin io.Reader
	// Env holds environment variables. AUTOBLOG_DIR defaults to the case's
	// data directory.
	Env map[string]string
	// Files are written to the data directory before the run, keyed by
	// slash-separated relative path.
	Files map[string]string
	// WantErr is the expected error, checked with errors.Is.
	WantErr error
	// WantInStdout is a substring expected in standard output.
	WantInStdout string
	// WantInStderr is a substring expected in standard error.
	WantInStderr string
	// WantFiles maps data directory paths that must exist after the run to a
	// substring of their content, which may be empty.
	WantFiles map[string]string
	// WantNoFiles lists data directory paths that must not exist after the
	// run.
	WantNoFiles []string
	// Prepare is called with the fresh application before it runs.
	Prepare func(*testing.T, App)
	// CheckFunc performs additional checks after the run.
	CheckFunc func(*testing.T, App)
}

// Run runs cases in parallel, each against a new application made by setup.
func Run[App cli.App](t *testing.T, setup func(*testing.T) App, cases map[string]Case[App]) {
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			for name, content := range tc.Files {
				path := filepath.Join(dir, filepath.FromSlash(name))
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			app := setup(t)
			if tc.Prepare != nil {
				tc.Prepare(t, app)
			}

			stdin := tc.Stdin
			if stdin == nil {
				stdin = strings.NewReader("")
			}
			var stdout, stderr bytes.Buffer
			env := &cli.Env{
				Args:   tc.Args,
				Getenv: getenvFunc(dir, tc.Env),
				Stdin:  stdin,
				Stdout: &stdout,
				Stderr: &stderr,
			}

			err := cli.Run(t.Context(), app, env)
			switch {
			case err == nil && tc.WantErr != nil:
				t.Fatalf("must fail with error: %v", tc.WantErr)
			case err != nil && tc.WantErr == nil:
				t.Fatalf("unexpected error: %v\nstderr:\n%s", err, stderr.String())
			case err != nil && !errors.Is(err, tc.WantErr):
				t.Fatalf("got error %v, want %v", err, tc.WantErr)
			}

			if tc.WantInStdout != "" && !strings.Contains(stdout.String(), tc.WantInStdout) {
				t.Errorf("stdout must contain %q, got: %q", tc.WantInStdout, stdout.String())
			}
			if tc.WantInStderr != "" && !strings.Contains(stderr.String(), tc.WantInStderr) {
				t.Errorf("stderr must contain %q, got: %q", tc.WantInStderr, stderr.String())
			}

			for name, want := range tc.WantFiles {
				b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
				if err != nil {
					t.Errorf("want file %s: %v", name, err)
					continue
				}
				if !strings.Contains(string(b), want) {
					t.Errorf("%s must contain %q, got: %q", name, want, b)
				}
			}
			for _, name := range tc.WantNoFiles {
				if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err == nil {
					t.Errorf("file %s must not exist", name)
				}
			}

			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app)
			}
		})
	}
}

func getenvFunc(dir string, env map[string]string) func(string) string {
	return func(name string) string {
		if v, ok := env[name]; ok {
			return v
		}
		if name == "AUTOBLOG_DIR" {
			return dir
		}
		return ""
	}
}
