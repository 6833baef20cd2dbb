// Package cleanup removes the app's cached state after patching. Sessions,
// cookie stores, and renderer caches all carry values derived from the old
// identifiers, and leaving them in place lets the app contradict the rewrite
// on next launch.
package cleanup

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/idshift/idshift/internal/logging"
)

var log = logging.L("cleanup")

// profileSubdirs are the Electron profile layouts seen across app versions,
// in preference order.
var profileSubdirs = []string{"User Data", "Default", "User"}

// patterns name what gets removed, relative to the profile directory.
// Directories go whole, files one by one.
var patterns = []string{
	"Cache",
	"Code Cache",
	"GPUCache",
	"Session Storage",
	"Local Storage",
	"IndexedDB",
	"databases",
	"blob_storage",
	"Service Worker",
	"DawnCache",
	"Cookies",
	"Cookies-journal",
	"*.log",
	"*.tmp",
	"*/Cache/*",
	"*/Code Cache/*",
	"*/GPUCache/*",
	"network",
	"*.sqlite-shm",
	"*.sqlite-wal",
}

// ProfileRoot returns the platform config directory of the vendor app.
func ProfileRoot() (string, error) {
	return profileRoot(runtime.GOOS, os.Getenv)
}

func profileRoot(goos string, getenv func(string) string) (string, error) {
	switch goos {
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA is not set")
		}
		return filepath.Join(appData, "Cursor"), nil
	case "darwin":
		home := getenv("HOME")
		if home == "" {
			return "", errors.New("HOME is not set")
		}
		return filepath.Join(home, "Library", "Application Support", "Cursor"), nil
	default:
		home := getenv("HOME")
		if home == "" {
			return "", errors.New("HOME is not set")
		}
		return filepath.Join(home, ".config", "Cursor"), nil
	}
}

// ProfileDir narrows root down to the directory actually holding profile
// data. Without a known subdirectory the root itself is the storage area.
func ProfileDir(root string) string {
	for _, name := range profileSubdirs {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return root
}

// Clean removes cached state under dir and returns how many items were
// removed. Items that cannot be removed are logged and skipped; a run never
// fails outright over cleanup.
func Clean(dir string) int {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Warn("cleanup directory missing, skipping", logging.KeyPath, dir)
		return 0
	}

	removed := 0
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			log.Warn("bad cleanup pattern", "pattern", pattern, logging.KeyError, err)
			continue
		}
		for _, match := range matches {
			if removeItem(match) {
				removed++
			}
		}
	}

	log.Info("cleanup finished", logging.KeyPath, dir, "removed", removed)
	return removed
}

func removeItem(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			log.Warn("could not remove directory", logging.KeyPath, path, logging.KeyError, err)
			return false
		}
		log.Debug("removed directory", logging.KeyPath, path)
		return true
	}

	if info.Mode().Perm()&0o200 == 0 {
		os.Chmod(path, info.Mode().Perm()|0o200)
	}
	if err := os.Remove(path); err != nil {
		log.Warn("could not remove file", logging.KeyPath, path, logging.KeyError, err)
		return false
	}
	log.Debug("removed file", logging.KeyPath, path)
	return true
}
