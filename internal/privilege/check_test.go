package privilege

import (
	"os"
	"runtime"
	"testing"
)

func TestNeedsElevationWindows(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{`C:\Program Files\Cursor\resources\app`, true},
		{`c:\program files (x86)\Cursor`, true},
		{`C:\Program FilesX\Cursor`, false},
		{`C:\Users\u\AppData\Local\Programs\cursor\resources\app`, false},
	}
	for _, tt := range tests {
		if got := needsElevationOn(tt.path, "windows"); got != tt.want {
			t.Errorf("needsElevationOn(%q, windows) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNeedsElevationDarwin(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/Applications/Cursor.app/Contents/Resources/app", true},
		{"/Applications", true},
		{"/ApplicationsBackup/Cursor.app", false},
	}
	for _, tt := range tests {
		if got := needsElevationOn(tt.path, "darwin"); got != tt.want {
			t.Errorf("needsElevationOn(%q, darwin) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNeedsElevationLinux(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/opt/Cursor/resources/app", true},
		{"/usr/share/cursor/resources/app", true},
		{"/optional/cursor", false},
	}
	for _, tt := range tests {
		if got := needsElevationOn(tt.path, "linux"); got != tt.want {
			t.Errorf("needsElevationOn(%q, linux) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNeedsElevationHomePaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if needsElevationOn(home, runtime.GOOS) {
		t.Errorf("home directory %q should not need elevation", home)
	}
}

func TestIsElevatedMatchesUID(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uid comparison needs a unix host")
	}
	want := os.Getuid() == 0
	if got := IsElevated(); got != want {
		t.Errorf("IsElevated = %v, want %v", got, want)
	}
}
