package catalog

import "slices"

// Kind identifies one machine identifier rewritten inside the target bundle.
type Kind string

// Identifier kinds, in application order.
const (
	KindMachineID   Kind = "machineId"
	KindMacAddress  Kind = "macAddress"
	KindSqmID       Kind = "sqmId"
	KindDevDeviceID Kind = "devDeviceId"
)

// Definition describes how a single identifier is located and rewritten.
// Find matches the vendor's original code for the identifier, Probe matches
// the form a previous run leaves behind, and Replacement is the template
// spliced over either match. Templates carry a {value} placeholder for the
// identifier value and ${n} references for groups captured by Find.
type Definition struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	OS          []string `json:"os,omitempty"`
	Find        string   `json:"find"`
	Probe       string   `json:"probe"`
	Replacement string   `json:"replacement"`
}

// MatchesOS reports whether the definition applies to the given GOOS value.
// An empty OS list applies on every platform.
func (d Definition) MatchesOS(goos string) bool {
	if len(d.OS) == 0 {
		return true
	}
	return slices.Contains(d.OS, goos)
}
