// Package locate finds the installed vendor app when the user does not give
// an explicit target. Windows and Linux system installs resolve to the
// resources/app directory, macOS to the Resources/app directory inside the
// app bundle, and Linux desktop installs to the AppImage file itself.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/idshift/idshift/internal/logging"
)

var log = logging.L("locate")

// ErrNotFound means no installation was discovered in any known location.
var ErrNotFound = errors.New("no cursor installation found")

// AmbiguousError reports several equally plausible AppImages. The caller
// decides which one to use, typically by asking the user.
type AmbiguousError struct {
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("found %d cursor appimages, pick one explicitly", len(e.Candidates))
}

// Finder searches the conventional install locations. The platform and
// environment are injected so every branch can be exercised in tests.
type Finder struct {
	goos   string
	getenv func(name string) string
}

func NewFinder() *Finder {
	return &Finder{goos: runtime.GOOS, getenv: os.Getenv}
}

// App returns the patch target for this machine. On Linux a discovered
// AppImage wins over a system install; several candidates come back as an
// AmbiguousError.
func (f *Finder) App() (string, error) {
	switch f.goos {
	case "windows":
		return f.windowsApp()
	case "darwin":
		return f.darwinApp()
	default:
		return f.linuxApp()
	}
}

func (f *Finder) windowsApp() (string, error) {
	if localAppData := f.getenv("LOCALAPPDATA"); localAppData != "" {
		base := filepath.Join(localAppData, "Programs", "cursor", "resources", "app")
		if hasMainJS(base) {
			log.Info("found install", logging.KeyPath, base)
			return base, nil
		}
	}
	if programFiles := f.getenv("ProgramFiles"); programFiles != "" {
		base := filepath.Join(programFiles, "Cursor", "resources", "app")
		if hasMainJS(base) {
			log.Info("found install", logging.KeyPath, base)
			return base, nil
		}
	}
	if base := f.scanPath(); base != "" {
		return base, nil
	}
	return "", ErrNotFound
}

func (f *Finder) darwinApp() (string, error) {
	candidates := []string{"/Applications/Cursor.app/Contents/Resources/app"}
	if home := f.getenv("HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, "Applications", "Cursor.app", "Contents", "Resources", "app"))
	}
	for _, base := range candidates {
		if hasMainJS(base) {
			log.Info("found install", logging.KeyPath, base)
			return base, nil
		}
	}
	if base := f.scanPath(); base != "" {
		return base, nil
	}
	return "", ErrNotFound
}

func (f *Finder) linuxApp() (string, error) {
	images := f.AppImages()
	if len(images) == 1 {
		log.Info("found appimage", logging.KeyPath, images[0])
		return images[0], nil
	}
	if len(images) > 1 {
		return "", &AmbiguousError{Candidates: images}
	}

	for _, base := range []string{
		"/opt/Cursor/resources/app",
		"/usr/share/cursor/resources/app",
		"/opt/cursor/resources/app",
	} {
		if hasMainJS(base) {
			log.Info("found system install", logging.KeyPath, base)
			return base, nil
		}
	}
	if base := f.scanPath(); base != "" {
		return base, nil
	}
	return "", ErrNotFound
}

// AppImages lists cursor AppImages in the places desktop users keep them,
// ordered by search priority with duplicates removed.
func (f *Finder) AppImages() []string {
	dirs := []string{"."}
	if home := f.getenv("HOME"); home != "" {
		dirs = append(dirs,
			filepath.Join(home, "Applications"),
			filepath.Join(home, "bin"),
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Desktop"),
			home,
		)
	}
	dirs = append(dirs, "/opt", "/usr/local/bin")
	dirs = append(dirs, filepath.SplitList(f.getenv("PATH"))...)

	seen := make(map[string]bool)
	var images []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !isCursorAppImageName(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			abs, err := filepath.Abs(path)
			if err != nil || seen[abs] {
				continue
			}
			seen[abs] = true
			images = append(images, path)
		}
	}
	return images
}

// isCursorAppImageName accepts cursor.AppImage and versioned names such as
// cursor-0.48.6-x86_64.AppImage, while rejecting lookalikes such as
// cursorhelper.AppImage.
func isCursorAppImageName(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "cursor") || !strings.HasSuffix(lower, ".appimage") {
		return false
	}
	stem := strings.TrimSuffix(lower, ".appimage")
	if len(stem) == len("cursor") {
		return true
	}
	next := stem[len("cursor")]
	return next < 'a' || next > 'z'
}

// scanPath derives an install from a cursor binary on PATH. Installs ship the
// launcher next to or one level under the resources directory; on macOS the
// usual arrangement is a symlink into the app bundle.
func (f *Finder) scanPath() string {
	names := []string{"cursor"}
	if f.goos == "windows" {
		names = append(names, "cursor.exe")
	}

	for _, dir := range filepath.SplitList(f.getenv("PATH")) {
		if dir == "" {
			continue
		}
		for _, name := range names {
			bin := filepath.Join(dir, name)
			if _, err := os.Lstat(bin); err != nil {
				continue
			}

			if f.goos == "darwin" {
				if base := bundleAppFromSymlink(bin); base != "" {
					log.Info("found install via PATH", logging.KeyPath, base)
					return base
				}
				continue
			}

			for _, base := range []string{
				filepath.Join(filepath.Dir(dir), "resources", "app"),
				filepath.Join(dir, "resources", "app"),
			} {
				if hasMainJS(base) {
					log.Info("found install via PATH", logging.KeyPath, base)
					return base
				}
			}
		}
	}
	return ""
}

// bundleAppFromSymlink resolves a /usr/local/bin/cursor style symlink back to
// the bundle's Resources/app directory.
func bundleAppFromSymlink(bin string) string {
	resolved, err := filepath.EvalSymlinks(bin)
	if err != nil {
		return ""
	}
	if !strings.Contains(resolved, "Cursor.app/Contents/MacOS") {
		return ""
	}

	curr := resolved
	for curr != filepath.Dir(curr) {
		if filepath.Base(curr) == "MacOS" {
			bundle := filepath.Dir(filepath.Dir(curr))
			base := filepath.Join(bundle, "Contents", "Resources", "app")
			if hasMainJS(base) {
				return base
			}
			return ""
		}
		curr = filepath.Dir(curr)
	}
	return ""
}

func hasMainJS(base string) bool {
	info, err := os.Stat(filepath.Join(base, "out", "main.js"))
	return err == nil && !info.IsDir()
}
