//go:build !windows

package privilege

import "os"

// IsElevated reports whether the process is running as root.
func IsElevated() bool {
	return os.Getuid() == 0
}
