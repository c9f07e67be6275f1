// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"syscall"
	"time"

	"github.com/recipe-runner/runner/pkg/types"
)

// defaultGracePeriod is how long a child may keep running after it was sent
// an interrupt before it is killed.
const defaultGracePeriod = 5 * time.Second

// ErrShellNotFound is returned when no usable host shell exists.
var ErrShellNotFound = errors.New("no shell found")

// NativeRuntime executes steps using the system's shell
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the command line
	ShellArgs []string
	// GracePeriod bounds how long an interrupted child may take to exit
	GracePeriod time.Duration
}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{GracePeriod: defaultGracePeriod}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether this runtime is available
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Run executes a step through the shell and waits for it to finish.
// Cancelling the step context interrupts the child; it is killed if it has
// not exited after the grace period.
func (r *NativeRuntime) Run(sc *StepContext) *Result {
	shell, err := r.getShell()
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	args := append(r.getShellArgs(shell), sc.Command)

	cmd := exec.CommandContext(sc.context(), shell, args...)
	cmd.Env = sc.Env
	cmd.Dir = sc.Dir

	streams := sc.streams()
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = r.GracePeriod

	return resultFromWait(sc.context(), cmd.Run())
}

// resultFromWait maps the error returned by exec.Cmd.Run to a Result.
func resultFromWait(ctx context.Context, err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return NewExitCodeResult(types.FromSignal(int(status.Signal())))
		}
		return NewExitCodeResult(types.Clamp(exitErr.ExitCode()))
	}

	if ctx.Err() != nil {
		return NewErrorResult(types.ExitInterrupted, fmt.Errorf("step interrupted: %w", ctx.Err()))
	}
	return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to execute step: %w", err))
}

// getShell determines which shell to use
func (r *NativeRuntime) getShell() (string, error) {
	if r.Shell != "" {
		path, err := exec.LookPath(r.Shell)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrShellNotFound, err)
		}
		return path, nil
	}

	switch goruntime.GOOS {
	case "windows":
		// Try PowerShell first, then cmd
		if pwsh, err := exec.LookPath("pwsh"); err == nil {
			return pwsh, nil
		}
		if ps, err := exec.LookPath("powershell"); err == nil {
			return ps, nil
		}
		if cmd, err := exec.LookPath("cmd"); err == nil {
			return cmd, nil
		}
		return "", ErrShellNotFound
	default:
		// Recipes target POSIX sh; $SHELL is not consulted.
		if sh, err := exec.LookPath("sh"); err == nil {
			return sh, nil
		}
		if bash, err := exec.LookPath("bash"); err == nil {
			return bash, nil
		}
		return "", ErrShellNotFound
	}
}

// getShellArgs returns the arguments to pass to the shell before the command line
func (r *NativeRuntime) getShellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	base := strings.TrimSuffix(filepath.Base(shell), ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		// Assume POSIX shell
		return []string{"-c"}
	}
}
