// Package privilege reports whether the process has the rights a patch run
// is likely to need. The answer is advisory: a run against a user-writable
// install works fine without elevation, so callers warn instead of refusing.
package privilege

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NeedsElevation reports whether path sits in a location that normally
// requires root or administrator rights to modify.
func NeedsElevation(path string) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return needsElevationOn(path, runtime.GOOS)
}

func needsElevationOn(path, goos string) bool {
	switch goos {
	case "windows":
		for _, root := range []string{`C:\Program Files`, `C:\Program Files (x86)`} {
			if underRoot(path, root, true, '\\') {
				return true
			}
		}
	case "darwin":
		return underRoot(path, "/Applications", false, '/')
	default:
		for _, root := range []string{"/opt", "/usr"} {
			if underRoot(path, root, false, '/') {
				return true
			}
		}
	}
	return false
}

// underRoot matches path against root on a path-element boundary, so
// /optional does not count as being under /opt.
func underRoot(path, root string, caseFold bool, sep byte) bool {
	if len(path) < len(root) {
		return false
	}
	head, rest := path[:len(root)], path[len(root):]
	if caseFold {
		if !strings.EqualFold(head, root) {
			return false
		}
	} else if head != root {
		return false
	}
	return rest == "" || rest[0] == sep
}
