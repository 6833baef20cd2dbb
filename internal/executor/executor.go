// Package executor invokes the external container tools (the AppImage's own
// extractor, appimagetool, codesign) with a bounded runtime and capped
// output capture.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/idshift/idshift/internal/logging"
)

var log = logging.L("executor")

const (
	// DefaultTimeout is the default tool timeout in seconds
	DefaultTimeout = 600

	// MaxTimeout is the maximum allowed tool timeout
	MaxTimeout = 3600 // 1 hour

	// MaxOutputSize is the maximum size of stdout/stderr to capture
	MaxOutputSize = 1024 * 1024 // 1MB
)

// Command describes one external tool invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
}

// Result carries the captured output of a completed invocation. ExitCode is
// -1 when the process never ran or was killed.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner abstracts tool invocation so the container strategies can be
// tested without the tools installed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ToolRunner runs commands with a per-invocation timeout. A nonzero exit is
// not an error; callers read Result.ExitCode and decide.
type ToolRunner struct {
	timeout time.Duration
}

// New creates a ToolRunner with the given timeout in seconds, clamped to a
// sane range.
func New(timeoutSeconds int) *ToolRunner {
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultTimeout
	}
	if timeoutSeconds > MaxTimeout {
		timeoutSeconds = MaxTimeout
	}
	return &ToolRunner{timeout: time.Duration(timeoutSeconds) * time.Second}
}

// Run executes the command and captures its output. The error is reserved
// for infrastructure faults: a missing binary, a spawn failure, or the
// timeout expiring.
func (r *ToolRunner) Run(ctx context.Context, c Command) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{buf: &stdout, limit: MaxOutputSize}
	cmd.Stderr = &limitedWriter{buf: &stderr, limit: MaxOutputSize}

	start := time.Now()
	log.Debug("running tool", logging.KeyPath, c.Path, "args", strings.Join(c.Args, " "), "dir", c.Dir)

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctx.Err() == context.DeadlineExceeded {
		log.Warn("tool timed out", logging.KeyPath, c.Path, "timeout", r.timeout)
		result.ExitCode = -1
		return result, fmt.Errorf("%s timed out after %s", filepath.Base(c.Path), r.timeout)
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			log.Debug("tool exited nonzero", logging.KeyPath, c.Path, "exitCode", result.ExitCode)
			return result, nil
		}
		result.ExitCode = -1
		return result, fmt.Errorf("run %s: %w", filepath.Base(c.Path), err)
	}

	log.Debug("tool completed", logging.KeyPath, c.Path, logging.KeyDurationMs, time.Since(start).Milliseconds())
	return result, nil
}

// limitedWriter wraps a buffer with a size limit
type limitedWriter struct {
	buf     *bytes.Buffer
	limit   int
	written int
}

func (w *limitedWriter) Write(p []byte) (n int, err error) {
	if w.written >= w.limit {
		// Discard additional data but don't error
		return len(p), nil
	}

	remaining := w.limit - w.written
	chunk := p
	if len(chunk) > remaining {
		chunk = chunk[:remaining]
	}

	n, err = w.buf.Write(chunk)
	w.written += n
	return len(p), err // Return original length to avoid short write errors
}
