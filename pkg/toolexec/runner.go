// Package toolexec is the process boundary of apkpatch: it runs the external
// decompiler and signer to completion and reports their outcome. The patch
// pipeline treats any non-zero exit as a typed failure and aborts.
package toolexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fulmenhq/apkpatch/pkg/logger"
)

// Result holds the captured output of a completed tool invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExternalToolFailure reports a tool that exited non-zero or could not be
// started. ExitCode is -1 when the process never ran.
type ExternalToolFailure struct {
	Command  string
	Stderr   string
	ExitCode int
}

func (e *ExternalToolFailure) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("command %q failed with exit code %d: %s", e.Command, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Runner runs an external tool to completion.
type Runner interface {
	Run(ctx context.Context, workDir string, name string, args ...string) (*Result, error)
	IsAvailable(name string) bool
}

// LocalRunner runs tools installed on the local system.
type LocalRunner struct{}

// NewLocalRunner creates a new LocalRunner.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// IsAvailable checks whether the tool resolves on PATH.
func (r *LocalRunner) IsAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run executes the tool and blocks until it exits. A non-zero exit is
// returned as *ExternalToolFailure alongside the captured Result.
func (r *LocalRunner) Run(ctx context.Context, workDir string, name string, args ...string) (*Result, error) {
	display := strings.Join(append([]string{name}, args...), " ")
	logger.Debug("executing tool", logger.String("command", display))

	// #nosec G204 -- tool names come from validated configuration
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, &ExternalToolFailure{
				Command:  display,
				Stderr:   stderr.String(),
				ExitCode: exitErr.ExitCode(),
			}
		}
		result.ExitCode = -1
		return result, &ExternalToolFailure{
			Command:  display,
			Stderr:   err.Error(),
			ExitCode: -1,
		}
	}

	logger.Trace("tool completed", logger.String("command", display))
	return result, nil
}
