package procguard

import "testing"

func TestMatchVendor(t *testing.T) {
	names := map[string]bool{
		"systemd":             true,
		"cursor":              true,
		"cursor helper (gpu)": true,
		"code":                true,
	}

	hits := matchVendor(names)
	if len(hits) != 2 {
		t.Fatalf("hits = %v, want 2 entries", hits)
	}
	if hits[0] != "cursor" || hits[1] != "cursor helper (gpu)" {
		t.Errorf("hits = %v", hits)
	}
}

func TestMatchVendorNoHits(t *testing.T) {
	names := map[string]bool{
		"systemd": true,
		"sshd":    true,
		"code":    true,
	}
	if hits := matchVendor(names); len(hits) != 0 {
		t.Errorf("hits = %v, want none", hits)
	}
}

func TestMatchVendorEmptySnapshot(t *testing.T) {
	if hits := matchVendor(nil); len(hits) != 0 {
		t.Errorf("hits = %v, want none", hits)
	}
}

func TestRunningDoesNotError(t *testing.T) {
	if _, err := Running(); err != nil {
		t.Fatalf("Running: %v", err)
	}
}
