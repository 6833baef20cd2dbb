package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("engine")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("patched", "kind", "machineId")

	out := buf.String()
	if !strings.Contains(out, "msg=patched") {
		t.Fatalf("expected plain patched message, got: %s", out)
	}
	if !strings.Contains(out, "component=engine") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "kind=machineId") {
		t.Fatalf("expected kind field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("engine")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestInitSelectsJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	Init("json", "info", &buf)

	L("container").Info("committed", "path", "/tmp/main.js")

	out := buf.String()
	if !strings.Contains(out, `"component":"container"`) {
		t.Fatalf("expected JSON component field, got: %s", out)
	}
	if !strings.Contains(out, `"msg":"committed"`) {
		t.Fatalf("expected JSON msg field, got: %s", out)
	}
}
