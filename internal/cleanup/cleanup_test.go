package cleanup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileRootWindows(t *testing.T) {
	env := map[string]string{"APPDATA": filepath.Join("C:", "Users", "u", "AppData", "Roaming")}
	got, err := profileRoot("windows", func(k string) string { return env[k] })
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(env["APPDATA"], "Cursor")
	if got != want {
		t.Errorf("profileRoot = %q, want %q", got, want)
	}
}

func TestProfileRootDarwin(t *testing.T) {
	env := map[string]string{"HOME": "/Users/u"}
	got, err := profileRoot("darwin", func(k string) string { return env[k] })
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join("/Users/u", "Library", "Application Support", "Cursor") {
		t.Errorf("profileRoot = %q", got)
	}
}

func TestProfileRootLinux(t *testing.T) {
	env := map[string]string{"HOME": "/home/u"}
	got, err := profileRoot("linux", func(k string) string { return env[k] })
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join("/home/u", ".config", "Cursor") {
		t.Errorf("profileRoot = %q", got)
	}
}

func TestProfileRootMissingEnv(t *testing.T) {
	empty := func(string) string { return "" }
	for _, goos := range []string{"windows", "darwin", "linux"} {
		if _, err := profileRoot(goos, empty); err == nil {
			t.Errorf("profileRoot(%s) with empty env: expected error", goos)
		}
	}
}

func TestProfileDirPrefersUserData(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"User Data", "Default"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if got := ProfileDir(root); got != filepath.Join(root, "User Data") {
		t.Errorf("ProfileDir = %q, want User Data", got)
	}
}

func TestProfileDirFallsBackToUser(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "User"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := ProfileDir(root); got != filepath.Join(root, "User") {
		t.Errorf("ProfileDir = %q, want User", got)
	}
}

func TestProfileDirDefaultsToRoot(t *testing.T) {
	root := t.TempDir()
	if got := ProfileDir(root); got != root {
		t.Errorf("ProfileDir = %q, want root", got)
	}
}

func TestCleanRemovesCachesAndKeepsSettings(t *testing.T) {
	dir := t.TempDir()

	dirs := []string{
		"Cache/data",
		"Code Cache/js",
		"Session Storage",
		"network",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(d)), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	files := []string{
		"Cookies",
		"Cookies-journal",
		"window.log",
		"update.tmp",
		"state.sqlite-shm",
		"settings.json",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	removed := Clean(dir)

	// Cache, Code Cache, Session Storage, network, Cookies, Cookies-journal,
	// window.log, update.tmp, state.sqlite-shm.
	if removed != 9 {
		t.Errorf("removed = %d, want 9", removed)
	}

	for _, gone := range []string{"Cache", "Code Cache", "Session Storage", "network", "Cookies", "window.log"} {
		if _, err := os.Stat(filepath.Join(dir, gone)); err == nil {
			t.Errorf("%s still present after Clean", gone)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.json")); err != nil {
		t.Error("settings.json should survive cleanup")
	}
}

func TestCleanNestedCachePattern(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "Partitions", "Cache", "junk")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	removed := Clean(dir)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(nested); err == nil {
		t.Error("nested cache entry still present")
	}
	if _, err := os.Stat(filepath.Join(dir, "Partitions", "Cache")); err != nil {
		t.Error("parent Cache directory itself should remain for the nested pattern")
	}
}

func TestCleanReadOnlyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cookies")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o444); err != nil {
		t.Fatal(err)
	}

	if removed := Clean(dir); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("read-only Cookies still present")
	}
}

func TestCleanMissingDir(t *testing.T) {
	if removed := Clean(filepath.Join(t.TempDir(), "nope")); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestCleanEmptyDir(t *testing.T) {
	if removed := Clean(t.TempDir()); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
