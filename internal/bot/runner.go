// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.geekbrox.name/autoblog/internal/metrics"
	"go.geekbrox.name/autoblog/internal/textutil"
)

// Pipeline commands started by the bot.
const (
	CmdFetch    = "animefetch"
	CmdGenerate = "postgen"
	CmdPost     = "tistorypost"
)

const (
	// DefaultScriptTimeout bounds a single command run.
	DefaultScriptTimeout = 5 * time.Minute
	// outputTail is how much of the combined output is kept, in runes.
	outputTail = 1500
)

// Result is the outcome of a command run.
type Result struct {
	OK     bool
	Output string
}

// Runner runs pipeline commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) Result

// Run calls f(ctx, name, args...).
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) Result {
	return f(ctx, name, args...)
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct {
	// BinDir holds the command binaries. If empty, commands are looked up
	// in PATH.
	BinDir string
	// Dir is the working directory of the commands.
	Dir string
	// Timeout defaults to DefaultScriptTimeout.
	Timeout time.Duration
	// Timeouts overrides Timeout for single commands, such as the publisher
	// that waits for confirmations from the chat.
	Timeouts map[string]time.Duration
	// Env is appended to the environment of the bot.
	Env []string
}

// Run implements Runner. Stdout and stderr are joined and only their tail is
// returned.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	start := time.Now()
	res := r.run(ctx, name, args...)
	status := "ok"
	if !res.OK {
		status = "error"
	}
	metrics.ObserveScript(name, status, time.Since(start))
	return res
}

func (r *ExecRunner) run(ctx context.Context, name string, args ...string) Result {
	path, err := r.lookup(name)
	if err != nil {
		return Result{Output: "스크립트 없음: " + path}
	}

	timeout := r.TimeoutFor(name)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Output: fmt.Sprintf("⏱️ 실행 시간 초과 (%d분)", int(timeout/time.Minute))}
	}
	out := textutil.Tail(strings.TrimSpace(stdout.String()+stderr.String()), outputTail)
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Result{Output: fmt.Sprintf("실행 오류: %v", err)}
	}
	return Result{OK: err == nil, Output: out}
}

// TimeoutFor returns how long the command name may run.
func (r *ExecRunner) TimeoutFor(name string) time.Duration {
	if d, ok := r.Timeouts[name]; ok && d > 0 {
		return d
	}
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultScriptTimeout
}

func (r *ExecRunner) lookup(name string) (string, error) {
	if r.BinDir == "" {
		path, err := exec.LookPath(name)
		if err != nil {
			return name, err
		}
		return path, nil
	}
	path := filepath.Join(r.BinDir, name)
	if _, err := os.Stat(path); err != nil {
		return path, err
	}
	return path, nil
}
