package container

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/idshift/idshift/internal/executor"
	"github.com/idshift/idshift/internal/logging"
)

// appImage patches a main.js that lives inside a Linux AppImage. The image is
// extracted with its own --appimage-extract runtime, patched in the extraction
// tree, and rebuilt with appimagetool. The original image is only replaced
// after the rebuilt one exists completely.
type appImage struct {
	path          string
	workDir       string
	extractDir    string
	tool          string
	backupSuffix  string
	replaceBackup func(string) bool
	runner        executor.Runner

	extractRoot string
	jsPath      string
}

func (s *appImage) Name() string { return "appimage" }

func (s *appImage) Open(ctx context.Context) (*Target, error) {
	info, err := os.Stat(s.path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not an appimage file", ErrPathDetection, s.path)
	}

	if s.workDir == "" {
		s.workDir = "."
	}
	if err := os.MkdirAll(s.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	// The extract runtime refuses to run without the executable bit, which
	// downloaded images frequently lack.
	if err := os.Chmod(s.path, 0o755); err != nil {
		return nil, fmt.Errorf("make appimage executable: %w", err)
	}

	s.extractRoot = filepath.Join(s.workDir, s.extractDir)
	if _, err := os.Stat(s.extractRoot); err == nil {
		log.Warn("removing stale extraction tree", logging.KeyPath, s.extractRoot)
		if err := os.RemoveAll(s.extractRoot); err != nil {
			return nil, fmt.Errorf("remove stale extraction tree: %w", err)
		}
	}

	absImage, err := filepath.Abs(s.path)
	if err != nil {
		return nil, fmt.Errorf("resolve appimage path: %w", err)
	}

	log.Info("extracting appimage", logging.KeyPath, s.path)
	if _, err := runTool(ctx, s.runner, executor.Command{
		Path: absImage,
		Args: []string{"--appimage-extract"},
		Dir:  s.workDir,
	}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrExtraction, err)
	}

	if info, err := os.Stat(s.extractRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s missing after extract", ErrExtraction, s.extractRoot)
	}

	jsPath, err := detectMainJS(s.extractRoot)
	if err != nil {
		return nil, err
	}
	s.jsPath = jsPath

	content, err := os.ReadFile(jsPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", jsPath, err)
	}
	log.Info("loaded target", logging.KeyPath, jsPath, "bytes", len(content))

	backupPath, err := createBackup(s.path, s.backupSuffix, s.replaceBackup)
	if err != nil {
		return nil, err
	}

	return &Target{
		SourcePath: s.path,
		FilePath:   jsPath,
		BackupPath: backupPath,
		Content:    content,
	}, nil
}

func (s *appImage) Commit(ctx context.Context, target *Target) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.jsPath); err == nil {
		mode = info.Mode()
	}
	if err := writeReplacing(s.jsPath, target.Content, mode); err != nil {
		return fmt.Errorf("write %s: %w", s.jsPath, err)
	}

	tool, err := s.resolveTool()
	if err != nil {
		return err
	}
	if info, err := os.Stat(tool); err == nil && info.Mode()&0o111 == 0 {
		if err := os.Chmod(tool, 0o755); err != nil {
			return fmt.Errorf("make %s executable: %w", tool, err)
		}
	}

	newPath := s.path + ".new"
	os.Remove(newPath)

	absRoot, err := filepath.Abs(s.extractRoot)
	if err != nil {
		return fmt.Errorf("resolve extraction tree path: %w", err)
	}
	absNew, err := filepath.Abs(newPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	log.Info("repacking appimage", logging.KeyPath, s.path, "tool", tool)
	if _, err := runTool(ctx, s.runner, executor.Command{
		Path: tool,
		Args: []string{absRoot, absNew},
		Dir:  s.workDir,
	}); err != nil {
		return fmt.Errorf("%w: %s", ErrRepack, err)
	}

	if err := os.Chmod(newPath, 0o755); err != nil {
		return fmt.Errorf("%w: make repacked image executable: %s", ErrRepack, err)
	}
	if err := os.Rename(newPath, s.path); err != nil {
		return fmt.Errorf("%w: replace original image: %s", ErrRepack, err)
	}

	// The extraction tree stays on disk for inspection. The next run removes
	// it before extracting again.
	log.Info("appimage repacked", logging.KeyPath, s.path, "extraction", s.extractRoot)
	return nil
}

// resolveTool finds appimagetool without ever downloading it. A bare name is
// tried in the working directory first so a manually placed tool wins over
// whatever is on PATH.
func (s *appImage) resolveTool() (string, error) {
	tool := s.tool
	if filepath.IsAbs(tool) {
		if _, err := os.Stat(tool); err != nil {
			return "", fmt.Errorf("%w: %s not found; download it from https://github.com/AppImage/appimagetool/releases", ErrRepack, tool)
		}
		return tool, nil
	}

	local := filepath.Join(s.workDir, tool)
	if _, err := os.Stat(local); err == nil {
		abs, err := filepath.Abs(local)
		if err != nil {
			return "", fmt.Errorf("resolve tool path: %w", err)
		}
		return abs, nil
	}

	if resolved, err := exec.LookPath(tool); err == nil {
		return resolved, nil
	}
	return "", fmt.Errorf("%w: %s not found in %s or on PATH; download it from https://github.com/AppImage/appimagetool/releases and place it in the working directory", ErrRepack, tool, s.workDir)
}

// detectMainJS locates main.js in an extraction tree. Known layouts are tried
// first; otherwise the tree is walked, preferring files under an out/
// directory and a resources/app parent, shortest path winning.
func detectMainJS(root string) (string, error) {
	for _, rel := range []string{
		filepath.Join("resources", "app", "out", "main.js"),
		filepath.Join("usr", "share", "cursor", "resources", "app", "out", "main.js"),
		filepath.Join("opt", "cursor", "resources", "app", "out", "main.js"),
		filepath.Join("app", "resources", "app", "out", "main.js"),
	} {
		candidate := filepath.Join(root, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	var underOut, anywhere []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != "main.js" {
			return err
		}
		anywhere = append(anywhere, path)
		if filepath.Base(filepath.Dir(path)) == "out" {
			underOut = append(underOut, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan extraction tree: %w", err)
	}

	matches := underOut
	if len(matches) == 0 {
		matches = anywhere
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no main.js in extraction tree %s", ErrPathDetection, root)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	preferred := matches[:0:0]
	for _, m := range matches {
		if strings.Contains(filepath.ToSlash(m), "resources/app") {
			preferred = append(preferred, m)
		}
	}
	if len(preferred) > 0 {
		matches = preferred
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) < len(matches[j])
		}
		return matches[i] < matches[j]
	})
	log.Warn("multiple main.js candidates", "count", len(matches), "selected", matches[0])
	return matches[0], nil
}
