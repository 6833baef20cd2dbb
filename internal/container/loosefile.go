package container

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/idshift/idshift/internal/logging"
)

// looseFile patches a main.js that sits directly on disk, as shipped by the
// Windows installer and Linux system packages.
type looseFile struct {
	path          string
	backupSuffix  string
	replaceBackup func(string) bool

	filePath string
	fileMode fs.FileMode
}

func (s *looseFile) Name() string { return "loose-file" }

func (s *looseFile) Open(ctx context.Context) (*Target, error) {
	filePath, err := resolveMainJS(s.path)
	if err != nil {
		return nil, err
	}
	s.filePath = filePath

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	s.fileMode = info.Mode()

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	log.Info("loaded target", logging.KeyPath, filePath, "bytes", len(content))

	backupPath, err := createBackup(filePath, s.backupSuffix, s.replaceBackup)
	if err != nil {
		return nil, err
	}

	return &Target{
		SourcePath: filePath,
		FilePath:   filePath,
		BackupPath: backupPath,
		Content:    content,
	}, nil
}

func (s *looseFile) Commit(ctx context.Context, target *Target) error {
	ensureWritable(s.filePath)
	if err := writeReplacing(s.filePath, target.Content, s.fileMode); err != nil {
		return fmt.Errorf("write %s: %w", s.filePath, err)
	}
	log.Info("target written", logging.KeyPath, s.filePath, "bytes", len(target.Content))
	return nil
}

// resolveMainJS accepts either a main.js file or a directory that contains
// one at a known relative location.
func resolveMainJS(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathDetection, path)
	}

	if !info.IsDir() {
		if filepath.Base(path) != "main.js" {
			return "", fmt.Errorf("%w: %s is not a file named main.js", ErrPathDetection, path)
		}
		return path, nil
	}

	for _, rel := range []string{
		filepath.Join("out", "main.js"),
		filepath.Join("resources", "app", "out", "main.js"),
	} {
		candidate := filepath.Join(path, rel)
		if fileInfo, err := os.Stat(candidate); err == nil && !fileInfo.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no out/main.js under %s", ErrPathDetection, path)
}

// writeReplacing writes content next to path and renames it into place so a
// failed write never leaves a truncated target behind.
func writeReplacing(path string, content []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode.Perm()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
