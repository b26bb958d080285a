// Package exec provides an abstraction over command execution for testability.
// It allows production code to use real exec.Command while tests
// can inject mock executors that return pre-recorded responses.
//
// Beyond plain capture-output execution, the interface covers the three
// execution shapes the auth subsystem needs: environment pinning (so
// SSH_AUTH_SOCK/SSH_AGENT_PID can be set per call without mutating the
// process environment), fully interactive runs (ssh-add passphrase entry
// inherits the terminal), and detached spawns (ssh-agent must outlive the
// bgit process).
package exec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"sync"
)

// CommandExecutor abstracts command execution for testability.
// Production code uses RealExecutor, while tests use MockExecutor.
type CommandExecutor interface {
	// Run executes a command and returns stdout, stderr, and any error.
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)

	// RunEnv is Run with extra environment entries ("KEY=value") appended
	// to the inherited environment for this invocation only.
	RunEnv(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (stdout, stderr []byte, err error)

	// Output executes a command and returns stdout, or an error.
	Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

	// CombinedOutput executes a command and returns combined stdout+stderr.
	CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

	// RunInteractive executes a command with stdin, stdout, and stderr
	// inherited from the current process, so the child can drive the
	// user's terminal directly. Returns the command's exit error, if any.
	RunInteractive(ctx context.Context, dir string, extraEnv []string, name string, args ...string) error

	// StartDetached starts a command in its own session with all stdio
	// discarded and does not wait for it. The child survives bgit's exit.
	// Returns the child's pid.
	StartDetached(dir string, extraEnv []string, name string, args ...string) (pid int, err error)
}

// RealExecutor executes commands using os/exec.
type RealExecutor struct{}

// NewRealExecutor returns a new RealExecutor.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{}
}

func buildEnv(extraEnv []string) []string {
	if len(extraEnv) == 0 {
		return nil // inherit as-is
	}
	return append(os.Environ(), extraEnv...)
}

// Run executes a command and returns stdout, stderr, and any error.
func (e *RealExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	return e.RunEnv(ctx, dir, nil, name, args...)
}

// RunEnv executes a command with extra environment entries and returns
// stdout, stderr, and any error.
func (e *RealExecutor) RunEnv(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = buildEnv(extraEnv)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}

// Output executes a command and returns stdout, or error with stderr context.
func (e *RealExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// CombinedOutput executes a command and returns combined stdout+stderr.
func (e *RealExecutor) CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// RunInteractive executes a command with inherited stdio so the child can
// prompt the user directly (ssh-add passphrase entry).
func (e *RealExecutor) RunInteractive(ctx context.Context, dir string, extraEnv []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = buildEnv(extraEnv)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// StartDetached starts a command in its own session and returns its pid
// without waiting. Platform specifics (session detachment) live in
// detach_unix.go / detach_windows.go.
func (e *RealExecutor) StartDetached(dir string, extraEnv []string, name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = buildEnv(extraEnv)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	applyDetachAttrs(cmd)

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid

	// Reap the child if it does terminate, without blocking the caller.
	go func() { _ = cmd.Wait() }()

	return pid, nil
}

// defaultExecutorMu protects defaultExecutor for concurrent access.
var defaultExecutorMu sync.RWMutex

// defaultExecutor is the global default executor (can be swapped for testing).
var defaultExecutor CommandExecutor = NewRealExecutor()

// GetDefaultExecutor returns the global default executor.
func GetDefaultExecutor() CommandExecutor {
	defaultExecutorMu.RLock()
	defer defaultExecutorMu.RUnlock()
	return defaultExecutor
}

// SetDefaultExecutor sets the global default executor.
func SetDefaultExecutor(e CommandExecutor) {
	defaultExecutorMu.Lock()
	defer defaultExecutorMu.Unlock()
	defaultExecutor = e
}

// Ensure implementations satisfy the interface.
var _ CommandExecutor = (*RealExecutor)(nil)
