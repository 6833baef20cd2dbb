// Package report assembles the per-run summary the CLI renders. The core
// emits structured outcome data; formatting stays here.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/idshift/idshift/internal/engine"
)

type Report struct {
	Target     string           `json:"target" yaml:"target"`
	Strategy   string           `json:"strategy" yaml:"strategy"`
	Backup     string           `json:"backup,omitempty" yaml:"backup,omitempty"`
	Patches    []engine.Outcome `json:"patches" yaml:"patches"`
	Applicable int              `json:"applicable" yaml:"applicable"`
	Succeeded  int              `json:"succeeded" yaml:"succeeded"`
	Timestamp  time.Time        `json:"timestamp" yaml:"timestamp"`
}

// New builds a report over the outcomes of one run. Skipped definitions are
// excluded from the applicable count.
func New(target, strategy, backup string, outcomes []engine.Outcome) Report {
	r := Report{
		Target:    target,
		Strategy:  strategy,
		Backup:    backup,
		Patches:   outcomes,
		Timestamp: time.Now().UTC(),
	}
	for _, o := range outcomes {
		if o.Applicable() {
			r.Applicable++
		}
		if o.Succeeded() {
			r.Succeeded++
		}
	}
	return r
}

// Render formats the report as text, json, or yaml.
func (r Report) Render(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return r.renderText(), nil
	case "json":
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("render report: %w", err)
		}
		return string(b) + "\n", nil
	case "yaml":
		b, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("render report: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

func (r Report) renderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target:   %s\n", r.Target)
	fmt.Fprintf(&b, "Strategy: %s\n", r.Strategy)
	if r.Backup != "" {
		fmt.Fprintf(&b, "Backup:   %s\n", r.Backup)
	}
	b.WriteString("\n")
	for _, o := range r.Patches {
		if o.Detail != "" && !o.Succeeded() {
			fmt.Fprintf(&b, "  %-12s %-12s %s\n", o.Kind, o.Status, o.Detail)
		} else {
			fmt.Fprintf(&b, "  %-12s %s\n", o.Kind, o.Status)
		}
	}
	fmt.Fprintf(&b, "\n%d of %d applicable patches succeeded\n", r.Succeeded, r.Applicable)
	return b.String()
}
