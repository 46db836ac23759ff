// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package cli runs the pipeline commands: it parses flags, layers the .env
// file under the process environment and maps errors to exit codes.
package cli

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.geekbrox.name/autoblog/internal/config"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/version"
)

// Exit codes returned by [Main].
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Main runs app with the process environment and exits. The .env file in the
// working directory, or the one named by AUTOBLOG_ENV_FILE, fills in
// variables the environment leaves unset. SIGINT and SIGTERM cancel the
// context passed to app.
func Main(app App) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env := OSEnv()
	getenv, err := config.Getenv(cmp.Or(os.Getenv("AUTOBLOG_ENV_FILE"), config.DefaultFile), os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitError)
	}
	env.Getenv = getenv

	code := exitCode(Run(ctx, app, env), env.Stderr)
	cancel()
	os.Exit(code)
}

// exitCode reports err to stderr unless flag parsing already did, and picks
// the exit code for it.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, flag.ErrHelp) || errors.Is(err, errVersion) {
		return ExitOK
	}
	var ue *unprintableError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	fmt.Fprintln(stderr, err)
	if errors.Is(err, ErrInvalidArgs) {
		fmt.Fprintf(stderr, "Run '%s -help' for usage.\n", version.CmdName())
		return ExitUsage
	}
	return ExitError
}

type unprintableError struct{ err error }

func (e *unprintableError) Error() string { return e.err.Error() }
func (e *unprintableError) Unwrap() error { return e.err }

// errVersion stops [Run] after -version was printed.
var errVersion = &unprintableError{errors.New("version printed")}

// ErrInvalidArgs reports bad command-line arguments. Wrap it with a message
// naming the problem:
//
//	return fmt.Errorf("%w: -instruction requires -revise", cli.ErrInvalidArgs)
var ErrInvalidArgs = errors.New("invalid arguments")

// App is a command.
type App interface {
	Run(context.Context, *Env) error
}

// HasFlags is a command with flags. Flags is called before parsing.
type HasFlags interface {
	App
	Flags(*flag.FlagSet)
}

// Env is what a command sees of its process. Tests construct it directly.
type Env struct {
	// Args are the arguments left after flag parsing.
	Args   []string
	Getenv func(string) string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	logOnce sync.Once
	logf    logger.Logf
}

// Logf writes a progress line to standard error.
func (e *Env) Logf(format string, args ...any) {
	e.logOnce.Do(func() { e.logf = log.New(e.Stderr, "", 0).Printf })
	e.logf(format, args...)
}

// Lookup returns the value of the variable key, or def if it is unset or
// empty.
func (e *Env) Lookup(key, def string) string {
	if e.Getenv == nil {
		return def
	}
	return cmp.Or(e.Getenv(key), def)
}

// OSEnv returns the environment of the current process.
func OSEnv() *Env {
	return &Env{
		Args:   os.Args[1:],
		Getenv: os.Getenv,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run parses env.Args into app's flags and runs it. Every command also gets
// -version.
func Run(ctx context.Context, app App, env *Env) error {
	flags := flag.NewFlagSet(version.CmdName(), flag.ContinueOnError)
	if fa, ok := app.(HasFlags); ok {
		fa.Flags(flags)
	}
	var showVersion bool
	if flags.Lookup("version") == nil {
		flags.BoolVar(&showVersion, "version", false, "Show version.")
	}

	flags.SetOutput(env.Stderr)
	flags.Usage = func() {
		if docSrc != nil {
			fmt.Fprintf(env.Stderr, "%s\n", doc())
		}
		fmt.Fprint(env.Stderr, "Available flags:\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(env.Args); err != nil {
		// The flag package has already reported it.
		return &unprintableError{err}
	}
	if showVersion {
		fmt.Fprint(env.Stderr, version.Version())
		return errVersion
	}
	env.Args = flags.Args()
	return app.Run(ctx, env)
}

var (
	docSrc []byte
	doc    = sync.OnceValue(parseDocComment)
)

// SetDocComment sets the source of the command's usage text: the first
// /* ... */ block of src, which is usually the command's doc.go:
//
//	/*
//	Animefetch fetches this season's popular anime.
//	*/
//	package main
//
//	import (
//		_ "embed"
//
//		"go.geekbrox.name/autoblog/internal/cli"
//	)
//
//	//go:embed doc.go
//	var doc []byte
//
//	func init() { cli.SetDocComment(doc) }
func SetDocComment(src []byte) { docSrc = src }

func parseDocComment() string {
	s := bufio.NewScanner(bytes.NewReader(docSrc))
	var (
		b         bytes.Buffer
		inComment bool
	)
	for s.Scan() {
		switch line := s.Text(); {
		case line == "/*":
			inComment = true
		case line == "*/":
			return b.String()
		case inComment:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
