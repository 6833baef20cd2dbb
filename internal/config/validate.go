package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validOutputs = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// Validate checks the config for invalid values and returns all errors found.
// Values that would break a run outright are clamped to safe defaults.
// Other validation errors are logged as warnings but do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	if c.Output != "" && !validOutputs[strings.ToLower(c.Output)] {
		errs = append(errs, fmt.Errorf("output %q is not valid (use text, json, yaml)", c.Output))
	}

	if c.BackupSuffix == "" {
		errs = append(errs, fmt.Errorf("backup_suffix is empty, using %q", ".bak"))
		c.BackupSuffix = ".bak"
	} else if !strings.HasPrefix(c.BackupSuffix, ".") {
		errs = append(errs, fmt.Errorf("backup_suffix %q has no leading dot, prefixing", c.BackupSuffix))
		c.BackupSuffix = "." + c.BackupSuffix
	}

	if c.ExtractDir == "" {
		errs = append(errs, fmt.Errorf("extract_dir is empty, using %q", "squashfs-root"))
		c.ExtractDir = "squashfs-root"
	}

	if c.AppImageTool == "" {
		errs = append(errs, fmt.Errorf("appimage_tool is empty, using %q", "appimagetool-x86_64.AppImage"))
		c.AppImageTool = "appimagetool-x86_64.AppImage"
	}

	// Clamp the tool timeout to a usable range. Unpacking a large image
	// can legitimately take minutes, so the floor is generous.
	if c.ToolTimeoutSeconds < 30 {
		errs = append(errs, fmt.Errorf("tool_timeout_seconds %d is below minimum 30, clamping", c.ToolTimeoutSeconds))
		c.ToolTimeoutSeconds = 30
	} else if c.ToolTimeoutSeconds > 3600 {
		errs = append(errs, fmt.Errorf("tool_timeout_seconds %d exceeds maximum 3600, clamping", c.ToolTimeoutSeconds))
		c.ToolTimeoutSeconds = 3600
	}

	// Log validation errors as warnings
	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
