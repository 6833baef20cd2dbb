package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/idshift/idshift/internal/catalog"
	"github.com/idshift/idshift/internal/values"
)

func reader(input string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(input))
}

func TestPromptSourceUsesPreset(t *testing.T) {
	preset := map[catalog.Kind]string{catalog.KindMachineID: "ABCDEF123456"}
	src := newPromptSource(reader(""), false, preset)

	got, err := src.Provide(catalog.KindMachineID)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ABCDEF123456" {
		t.Errorf("Provide = %q, want preset value", got)
	}
}

func TestPromptSourceYesGeneratesDefaults(t *testing.T) {
	src := newPromptSource(reader(""), true, nil)

	got, err := src.Provide(catalog.KindDevDeviceID)
	if err != nil {
		t.Fatal(err)
	}
	if verr := values.Validate(catalog.KindDevDeviceID, got); verr != nil {
		t.Errorf("generated devDeviceId %q invalid: %v", got, verr)
	}

	sqm, err := src.Provide(catalog.KindSqmID)
	if err != nil {
		t.Fatal(err)
	}
	if sqm != "" {
		t.Errorf("generated sqm id = %q, want empty", sqm)
	}
}

func TestPromptSourceBlankGenerates(t *testing.T) {
	src := newPromptSource(reader("\n"), false, nil)

	got, err := src.Provide(catalog.KindMachineID)
	if err != nil {
		t.Fatal(err)
	}
	if verr := values.Validate(catalog.KindMachineID, got); verr != nil {
		t.Errorf("generated machineId %q invalid: %v", got, verr)
	}
}

func TestPromptSourceRepromptsOnInvalid(t *testing.T) {
	src := newPromptSource(reader("not-a-mac\nAA:BB:CC:DD:EE:02\n"), false, nil)

	got, err := src.Provide(catalog.KindMacAddress)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AA:BB:CC:DD:EE:02" {
		t.Errorf("Provide = %q, want the second answer", got)
	}
}

func TestPromptSourceNormalizesSqmID(t *testing.T) {
	src := newPromptSource(reader("c2318f4a-6c72-47f4-8f71-3b17e870a2c5\n"), false, nil)

	got, err := src.Provide(catalog.KindSqmID)
	if err != nil {
		t.Fatal(err)
	}
	if got != "{C2318F4A-6C72-47F4-8F71-3B17E870A2C5}" {
		t.Errorf("Provide = %q, want braced uppercase form", got)
	}
}

func TestPromptSourceClosedStdinGenerates(t *testing.T) {
	src := newPromptSource(reader(""), false, nil)

	got, err := src.Provide(catalog.KindDevDeviceID)
	if err != nil {
		t.Fatal(err)
	}
	if verr := values.Validate(catalog.KindDevDeviceID, got); verr != nil {
		t.Errorf("generated devDeviceId %q invalid: %v", got, verr)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"Y\n", false, true},
		{"n\n", true, false},
		{"no\n", true, false},
		{"\n", false, false},
		{"\n", true, true},
		{"", false, false},
		{"maybe\n", true, true},
	}
	for _, tt := range tests {
		if got := confirm(reader(tt.input), "continue?", tt.def); got != tt.want {
			t.Errorf("confirm(%q, def=%v) = %v, want %v", tt.input, tt.def, got, tt.want)
		}
	}
}

func TestPickOne(t *testing.T) {
	candidates := []string{"/a/cursor.AppImage", "/b/cursor.AppImage"}

	got, err := pickOne(reader("2\n"), candidates)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/b/cursor.AppImage" {
		t.Errorf("pickOne = %q", got)
	}
}

func TestPickOneRejectsBadInput(t *testing.T) {
	candidates := []string{"/a/cursor.AppImage", "/b/cursor.AppImage"}
	for _, input := range []string{"0\n", "3\n", "x\n", ""} {
		if _, err := pickOne(reader(input), candidates); err == nil {
			t.Errorf("pickOne(%q): expected error", input)
		}
	}
}
