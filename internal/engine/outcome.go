package engine

import "github.com/idshift/idshift/internal/catalog"

// Status classifies what happened to one definition during a run.
type Status string

const (
	// StatusApplied means the original construct was found and rewritten.
	StatusApplied Status = "applied"
	// StatusOverwritten means a previous run's rewrite was found and its
	// value replaced with a fresh one.
	StatusOverwritten Status = "overwritten"
	// StatusNotFound means neither the original nor the patched form
	// matched; the installed version has likely changed shape.
	StatusNotFound Status = "not-found"
	// StatusSkipped means the definition does not apply on this platform.
	StatusSkipped Status = "skipped"
	// StatusError means pattern evaluation or substitution faulted.
	StatusError Status = "error"
)

// Outcome records the result of evaluating one definition.
type Outcome struct {
	Kind   catalog.Kind `json:"kind" yaml:"kind"`
	Title  string       `json:"title" yaml:"title"`
	Status Status       `json:"status" yaml:"status"`
	Detail string       `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Succeeded reports whether the definition ended up rewritten in this run.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusApplied || o.Status == StatusOverwritten
}

// Applicable reports whether the definition was evaluated at all.
func (o Outcome) Applicable() bool {
	return o.Status != StatusSkipped
}
