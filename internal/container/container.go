// Package container opens the vendor bundle wherever it lives and hands the
// patch engine a byte slice to work on. Three strategies cover the shipped
// install formats: a loose resources tree (Windows and Linux system installs),
// a Linux AppImage that has to be extracted and repacked, and a signed macOS
// app bundle that has to be unsigned, rewritten, and re-signed. Each strategy
// also owns the backup of the original artifact.
package container

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/idshift/idshift/internal/executor"
	"github.com/idshift/idshift/internal/logging"
)

var log = logging.L("container")

// Fatal container faults. Any of these aborts the run before or instead of
// writing anything back.
var (
	// ErrPathDetection means the main.js could not be located under the
	// given target.
	ErrPathDetection = errors.New("main.js not found")

	// ErrExtraction means unpacking the AppImage failed.
	ErrExtraction = errors.New("appimage extraction failed")

	// ErrRepack means rebuilding the AppImage failed. The original artifact
	// is left untouched when this is returned.
	ErrRepack = errors.New("appimage repack failed")

	// ErrSigning means a codesign invocation failed on the app bundle.
	ErrSigning = errors.New("bundle signing failed")
)

// Target is an opened bundle: the main.js content plus where it came from.
type Target struct {
	// SourcePath is the artifact the run operates on: the main.js itself,
	// the AppImage, or the .app bundle root.
	SourcePath string

	// FilePath is the main.js that was actually read. For the AppImage and
	// bundle strategies it points into the working copy, not the original.
	FilePath string

	// BackupPath is the backup written during Open. Empty when an existing
	// backup was kept instead.
	BackupPath string

	// Content is the raw file content. The caller replaces it with the
	// rewritten bytes before Commit.
	Content []byte
}

// Strategy prepares a target for patching and commits the result. A strategy
// value serves a single Open/Commit cycle.
type Strategy interface {
	// Name identifies the strategy in reports and logs.
	Name() string

	// Open locates main.js, backs up the original artifact, and returns
	// its content. No part of the original is modified beyond making an
	// AppImage executable for extraction.
	Open(ctx context.Context) (*Target, error)

	// Commit writes target.Content back into the artifact. Either the
	// whole commit lands or the original is left as it was.
	Commit(ctx context.Context, target *Target) error
}

// Options configures strategy construction.
type Options struct {
	// Path is the patch target: a main.js file, a directory containing
	// out/main.js, an AppImage, or a path inside a macOS app bundle.
	Path string

	// WorkDir hosts the AppImage extraction tree.
	WorkDir string

	// BackupSuffix is appended to the artifact name for the backup copy.
	BackupSuffix string

	// ExtractDir is the directory name the AppImage runtime extracts into,
	// created under WorkDir.
	ExtractDir string

	// AppImageTool is the repack tool. A bare name is looked up in WorkDir
	// first, then on PATH.
	AppImageTool string

	// Runner executes the external tools.
	Runner executor.Runner

	// ReplaceBackup decides whether an existing backup at the given path
	// is replaced with a fresh copy. Nil keeps the existing backup.
	ReplaceBackup func(path string) bool
}

// New picks the strategy for opts.Path on the current platform.
func New(opts Options) (Strategy, error) {
	return selectStrategy(opts, runtime.GOOS)
}

func selectStrategy(opts Options, goos string) (Strategy, error) {
	if opts.Path == "" {
		return nil, errors.New("target path is required")
	}
	switch {
	case isAppImagePath(opts.Path):
		if opts.Runner == nil {
			return nil, errors.New("appimage strategy requires a tool runner")
		}
		return &appImage{
			path:          opts.Path,
			workDir:       opts.WorkDir,
			extractDir:    opts.ExtractDir,
			tool:          opts.AppImageTool,
			backupSuffix:  opts.BackupSuffix,
			replaceBackup: opts.ReplaceBackup,
			runner:        opts.Runner,
		}, nil
	case goos == "darwin" && insideAppBundle(opts.Path):
		if opts.Runner == nil {
			return nil, errors.New("app bundle strategy requires a tool runner")
		}
		return &appBundle{
			path:          opts.Path,
			backupSuffix:  opts.BackupSuffix,
			replaceBackup: opts.ReplaceBackup,
			runner:        opts.Runner,
		}, nil
	default:
		return &looseFile{
			path:          opts.Path,
			backupSuffix:  opts.BackupSuffix,
			replaceBackup: opts.ReplaceBackup,
		}, nil
	}
}

func isAppImagePath(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), ".appimage")
}

// insideAppBundle reports whether any element of path names a .app bundle.
func insideAppBundle(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasSuffix(part, ".app") && part != ".app" {
			return true
		}
	}
	return false
}

// tailOf condenses tool output for error messages.
func tailOf(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "no output"
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, "; ")
}

func runTool(ctx context.Context, runner executor.Runner, c executor.Command) (executor.Result, error) {
	res, err := runner.Run(ctx, c)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, fmt.Errorf("%s exited with code %d: %s", filepath.Base(c.Path), res.ExitCode, tailOf(res.Stderr))
	}
	return res, nil
}
