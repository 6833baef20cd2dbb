package container

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/idshift/idshift/internal/executor"
	"github.com/idshift/idshift/internal/logging"
)

// bundleMainJS is where Electron apps keep the main process entry inside a
// macOS app bundle.
var bundleMainJS = filepath.Join("Contents", "Resources", "app", "out", "main.js")

// appBundle patches a main.js inside a signed macOS app bundle. The bundle is
// copied aside, unsigned, patched, ad hoc re-signed, and only then swapped in
// for the original. Editing in place would leave a broken signature that
// Gatekeeper refuses to launch.
type appBundle struct {
	path          string
	backupSuffix  string
	replaceBackup func(string) bool
	runner        executor.Runner

	bundleRoot string
	tmpRoot    string
	jsPath     string
}

func (s *appBundle) Name() string { return "app-bundle" }

func (s *appBundle) Open(ctx context.Context) (*Target, error) {
	bundleRoot, err := findBundleRoot(s.path)
	if err != nil {
		return nil, err
	}
	s.bundleRoot = bundleRoot

	if info, err := os.Stat(filepath.Join(bundleRoot, bundleMainJS)); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s has no %s", ErrPathDetection, bundleRoot, bundleMainJS)
	}

	backupPath, err := createBackup(bundleRoot, s.backupSuffix, s.replaceBackup)
	if err != nil {
		return nil, err
	}

	s.tmpRoot = bundleRoot + ".tmp"
	if _, err := os.Stat(s.tmpRoot); err == nil {
		log.Warn("removing stale working copy", logging.KeyPath, s.tmpRoot)
		if err := os.RemoveAll(s.tmpRoot); err != nil {
			return nil, fmt.Errorf("remove stale working copy: %w", err)
		}
	}
	log.Info("copying bundle", logging.KeyPath, bundleRoot)
	if err := copyTree(bundleRoot, s.tmpRoot); err != nil {
		return nil, fmt.Errorf("copy bundle to %s: %w", s.tmpRoot, err)
	}

	log.Info("removing signature", logging.KeyPath, s.tmpRoot)
	if _, err := runTool(ctx, s.runner, executor.Command{
		Path: "codesign",
		Args: []string{"--remove-signature", s.tmpRoot},
	}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSigning, err)
	}

	s.jsPath = filepath.Join(s.tmpRoot, bundleMainJS)
	content, err := os.ReadFile(s.jsPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.jsPath, err)
	}
	log.Info("loaded target", logging.KeyPath, s.jsPath, "bytes", len(content))

	return &Target{
		SourcePath: bundleRoot,
		FilePath:   s.jsPath,
		BackupPath: backupPath,
		Content:    content,
	}, nil
}

func (s *appBundle) Commit(ctx context.Context, target *Target) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.jsPath); err == nil {
		mode = info.Mode()
	}
	if err := writeReplacing(s.jsPath, target.Content, mode); err != nil {
		return fmt.Errorf("write %s: %w", s.jsPath, err)
	}

	log.Info("signing bundle", logging.KeyPath, s.tmpRoot)
	if _, err := runTool(ctx, s.runner, executor.Command{
		Path: "codesign",
		Args: []string{"--force", "--deep", "--sign", "-", s.tmpRoot},
	}); err != nil {
		return fmt.Errorf("%w: %s", ErrSigning, err)
	}

	if err := os.RemoveAll(s.bundleRoot); err != nil {
		return fmt.Errorf("remove original bundle: %w", err)
	}
	if err := os.Rename(s.tmpRoot, s.bundleRoot); err != nil {
		return fmt.Errorf("move patched bundle into place: %w", err)
	}
	log.Info("bundle replaced", logging.KeyPath, s.bundleRoot)
	return nil
}

// findBundleRoot walks up from path to the nearest .app directory that has a
// Contents folder. Six levels covers Contents/Resources/app/out/main.js with
// room to spare.
func findBundleRoot(path string) (string, error) {
	curr, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	for i := 0; i < 6; i++ {
		if strings.HasSuffix(curr, ".app") {
			if info, err := os.Stat(filepath.Join(curr, "Contents")); err == nil && info.IsDir() {
				return curr, nil
			}
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			break
		}
		curr = parent
	}
	return "", fmt.Errorf("%w: no .app bundle at or above %s", ErrPathDetection, path)
}
