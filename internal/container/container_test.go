package container

import (
	"context"
	"strings"
	"testing"

	"github.com/idshift/idshift/internal/executor"
)

// fakeRunner records tool invocations and lets tests script their behavior.
type fakeRunner struct {
	calls  []executor.Command
	handle func(c executor.Command) (executor.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, c executor.Command) (executor.Result, error) {
	f.calls = append(f.calls, c)
	if f.handle != nil {
		return f.handle(c)
	}
	return executor.Result{ExitCode: 0}, nil
}

func TestSelectStrategyLooseFile(t *testing.T) {
	s, err := selectStrategy(Options{Path: "/opt/Cursor/resources/app/out/main.js"}, "linux")
	if err != nil {
		t.Fatalf("selectStrategy: %v", err)
	}
	if s.Name() != "loose-file" {
		t.Errorf("strategy = %q, want loose-file", s.Name())
	}
}

func TestSelectStrategyAppImage(t *testing.T) {
	for _, path := range []string{
		"/home/u/Downloads/cursor-0.48.6.AppImage",
		"cursor.appimage",
		"Cursor-1.0.AppImage",
	} {
		s, err := selectStrategy(Options{Path: path, Runner: &fakeRunner{}}, "linux")
		if err != nil {
			t.Fatalf("selectStrategy(%q): %v", path, err)
		}
		if s.Name() != "appimage" {
			t.Errorf("strategy for %q = %q, want appimage", path, s.Name())
		}
	}
}

func TestSelectStrategyAppImageNeedsRunner(t *testing.T) {
	if _, err := selectStrategy(Options{Path: "cursor.AppImage"}, "linux"); err == nil {
		t.Fatal("expected error without a runner")
	}
}

func TestSelectStrategyAppBundle(t *testing.T) {
	path := "/Applications/Cursor.app/Contents/Resources/app/out/main.js"

	s, err := selectStrategy(Options{Path: path, Runner: &fakeRunner{}}, "darwin")
	if err != nil {
		t.Fatalf("selectStrategy on darwin: %v", err)
	}
	if s.Name() != "app-bundle" {
		t.Errorf("strategy on darwin = %q, want app-bundle", s.Name())
	}

	// The same shape elsewhere is just a directory.
	s, err = selectStrategy(Options{Path: path}, "linux")
	if err != nil {
		t.Fatalf("selectStrategy on linux: %v", err)
	}
	if s.Name() != "loose-file" {
		t.Errorf("strategy on linux = %q, want loose-file", s.Name())
	}
}

func TestSelectStrategyEmptyPath(t *testing.T) {
	if _, err := selectStrategy(Options{}, "linux"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInsideAppBundle(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/Applications/Cursor.app", true},
		{"/Applications/Cursor.app/Contents/Resources/app", true},
		{"/Users/u/Applications/Cursor.app/Contents/Resources/app/out/main.js", true},
		{"/opt/Cursor/resources/app/out/main.js", false},
		{"/home/u/.app/config", false},
		{"main.js", false},
	}
	for _, tt := range tests {
		if got := insideAppBundle(tt.path); got != tt.want {
			t.Errorf("insideAppBundle(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestTailOf(t *testing.T) {
	if got := tailOf(""); got != "no output" {
		t.Errorf("tailOf(empty) = %q", got)
	}
	if got := tailOf("  \n\t"); got != "no output" {
		t.Errorf("tailOf(blank) = %q", got)
	}
	if got := tailOf("only line"); got != "only line" {
		t.Errorf("tailOf(one line) = %q", got)
	}
	got := tailOf("one\ntwo\nthree\nfour\nfive")
	if got != "three; four; five" {
		t.Errorf("tailOf(five lines) = %q, want last three", got)
	}
	if strings.Contains(got, "one") {
		t.Errorf("tailOf kept leading lines: %q", got)
	}
}

func TestRunToolReportsNonZeroExit(t *testing.T) {
	runner := &fakeRunner{handle: func(c executor.Command) (executor.Result, error) {
		return executor.Result{ExitCode: 2, Stderr: "squashfs error\nread failed"}, nil
	}}

	_, err := runTool(context.Background(), runner, executor.Command{Path: "/usr/bin/tool"})
	if err == nil {
		t.Fatal("expected error for exit code 2")
	}
	for _, want := range []string{"tool", "code 2", "read failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
