// Package engine applies the pattern catalog to bundle content held in
// memory. It never touches the filesystem; reading and committing content is
// the container layer's concern.
package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/idshift/idshift/internal/catalog"
	"github.com/idshift/idshift/internal/logging"
)

var log = logging.L("engine")

// ValueSource supplies the replacement value for an identifier once its
// definition has matched. A source is consulted only after a hit, so an
// interactive source never prompts for identifiers that are absent from the
// bundle.
type ValueSource interface {
	Provide(kind catalog.Kind) (string, error)
}

// Apply evaluates every definition against content in catalog order and
// returns the rewritten content plus one outcome per definition. Definitions
// whose OS list excludes goos are skipped without evaluating any pattern.
// Faults stay confined to their own definition; the rest of the catalog
// still runs.
func Apply(content []byte, defs []catalog.Definition, src ValueSource, goos string) ([]byte, []Outcome) {
	outcomes := make([]Outcome, 0, len(defs))
	for _, def := range defs {
		outcome := Outcome{Kind: def.Kind, Title: def.Title}
		if !def.MatchesOS(goos) {
			outcome.Status = StatusSkipped
			outcome.Detail = fmt.Sprintf("only applicable on %s", strings.Join(def.OS, ", "))
			log.Debug("definition skipped", logging.KeyKind, def.Kind, "goos", goos)
			outcomes = append(outcomes, outcome)
			continue
		}
		content = applyOne(content, def, src, &outcome)
		outcomes = append(outcomes, outcome)
	}
	return content, outcomes
}

func applyOne(content []byte, def catalog.Definition, src ValueSource, outcome *Outcome) []byte {
	findRe, err := compile(def.Find)
	if err != nil {
		outcome.Status = StatusError
		outcome.Detail = fmt.Sprintf("find pattern does not compile: %v", err)
		log.Warn("bad definition", logging.KeyKind, def.Kind, logging.KeyError, err)
		return content
	}
	probeRe, err := compile(def.Probe)
	if err != nil {
		outcome.Status = StatusError
		outcome.Detail = fmt.Sprintf("probe pattern does not compile: %v", err)
		log.Warn("bad definition", logging.KeyKind, def.Kind, logging.KeyError, err)
		return content
	}

	probeLocs := probeRe.FindAllSubmatchIndex(content, 2)
	findLocs := findRe.FindAllSubmatchIndex(content, 2)

	switch {
	case len(probeLocs) > 0 && len(findLocs) > 0:
		// A region cannot be in original and patched form at once; a
		// substitution here could corrupt whichever match is the false one.
		outcome.Status = StatusError
		outcome.Detail = "content matches both original and patched forms"
		log.Warn("conflicting matches", logging.KeyKind, def.Kind)
		return content

	case len(probeLocs) > 1 || len(findLocs) > 1:
		outcome.Status = StatusError
		outcome.Detail = "ambiguous match: pattern matched more than once"
		log.Warn("ambiguous match", logging.KeyKind, def.Kind)
		return content

	case len(probeLocs) == 1:
		rewritten, err := splice(content, probeRe, probeLocs[0], def, src)
		if err != nil {
			outcome.Status = StatusError
			outcome.Detail = err.Error()
			return content
		}
		outcome.Status = StatusOverwritten
		log.Info("patched", logging.KeyKind, def.Kind, "status", StatusOverwritten)
		return rewritten

	case len(findLocs) == 1:
		rewritten, err := splice(content, findRe, findLocs[0], def, src)
		if err != nil {
			outcome.Status = StatusError
			outcome.Detail = err.Error()
			return content
		}
		outcome.Status = StatusApplied
		log.Info("patched", logging.KeyKind, def.Kind, "status", StatusApplied)
		return rewritten

	default:
		outcome.Status = StatusNotFound
		outcome.Detail = "pattern not found; the installed version may have changed shape"
		log.Info("pattern not found", logging.KeyKind, def.Kind)
		return content
	}
}

// splice obtains a value, renders the replacement template, and swaps it in
// over the matched region. The template's {value} placeholder is filled
// first, then ${n} group references are expanded from the match.
func splice(content []byte, re *regexp.Regexp, loc []int, def catalog.Definition, src ValueSource) ([]byte, error) {
	value, err := src.Provide(def.Kind)
	if err != nil {
		return content, fmt.Errorf("value for %s: %w", def.Kind, err)
	}
	tmpl := strings.ReplaceAll(def.Replacement, "{value}", value)
	expanded := re.Expand(nil, []byte(tmpl), content, loc)

	out := make([]byte, 0, len(content)-(loc[1]-loc[0])+len(expanded))
	out = append(out, content[:loc[0]]...)
	out = append(out, expanded...)
	out = append(out, content[loc[1]:]...)
	return out, nil
}

// compile prefixes the s flag so the dot crosses line boundaries; the
// catalog patterns are written against that behavior.
func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?s)" + pattern)
}
