// Package procguard checks whether the vendor app is still running before a
// patch run. A live instance can rewrite main.js on exit and undo the patch,
// so callers warn the user or wait for confirmation when anything matches.
package procguard

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/idshift/idshift/internal/logging"
)

var log = logging.L("procguard")

// vendorProcessNames covers the main binary on each platform plus the
// Electron helper processes macOS spawns.
var vendorProcessNames = []string{
	"cursor",
	"cursor.exe",
	"cursor helper",
	"cursor helper (gpu)",
	"cursor helper (plugin)",
	"cursor helper (renderer)",
}

// Running returns the vendor process names currently alive, lowercased.
// An empty result with a nil error means the coast is clear.
func Running() ([]string, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(procs))
	skipped := 0
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			skipped++
			continue
		}
		names[strings.ToLower(name)] = true
	}
	if skipped > 0 {
		log.Debug("process scan skipped entries", "skipped", skipped, "total", len(procs))
	}

	return matchVendor(names), nil
}

func matchVendor(names map[string]bool) []string {
	var hits []string
	for _, name := range vendorProcessNames {
		if names[name] {
			hits = append(hits, name)
		}
	}
	return hits
}
