//go:build windows

package privilege

import "golang.org/x/sys/windows"

// IsElevated reports whether the process token carries administrator rights.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
