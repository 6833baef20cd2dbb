package container

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/idshift/idshift/internal/logging"
)

// createBackup copies src to src+suffix before anything touches the original.
// src may be a file or a directory. An existing backup is kept unless replace
// approves overwriting it; in that case the returned path is empty.
func createBackup(src, suffix string, replace func(string) bool) (string, error) {
	backupPath := src + suffix

	if _, err := os.Lstat(backupPath); err == nil {
		if replace == nil || !replace(backupPath) {
			log.Info("keeping existing backup", logging.KeyPath, backupPath)
			return "", nil
		}
		if err := os.RemoveAll(backupPath); err != nil {
			return "", fmt.Errorf("remove old backup: %w", err)
		}
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat backup source: %w", err)
	}

	if info.IsDir() {
		err = copyTree(src, backupPath)
	} else {
		err = copyFile(src, backupPath, info.Mode())
	}
	if err != nil {
		return "", fmt.Errorf("create backup %s: %w", backupPath, err)
	}

	log.Info("backup created", logging.KeyPath, backupPath)
	return backupPath, nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	dest, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		return err
	}
	return os.Chmod(dst, mode)
}

// copyTree mirrors a directory, preserving symlinks as symlinks. App bundles
// link frameworks internally, so following links would both balloon the copy
// and break the bundle layout.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			dest, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(dest, target)
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		default:
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, info.Mode())
		}
	})
}

// ensureWritable lifts the owner write bit so a previously read-only main.js
// can be replaced. On Windows this clears the read-only file attribute.
func ensureWritable(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0o200 != 0 {
		return
	}
	if err := os.Chmod(path, info.Mode().Perm()|0o200); err != nil {
		log.Warn("could not clear read-only mode", logging.KeyPath, path, logging.KeyError, err)
	}
}
