package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/idshift/idshift/internal/catalog"
	"github.com/idshift/idshift/internal/values"
)

// valueHints tell the user what a blank answer does per identifier.
var valueHints = map[catalog.Kind]string{
	catalog.KindMachineID:   "blank = random uuid",
	catalog.KindMacAddress:  "blank = random",
	catalog.KindSqmID:       "blank = empty",
	catalog.KindDevDeviceID: "blank = random uuid",
}

// promptSource asks the user for each replacement value the first time the
// engine needs it. Preset flag values win; in yes mode (--yes or --random)
// every remaining identifier gets its generated default.
type promptSource struct {
	in     *bufio.Reader
	yes    bool
	preset map[catalog.Kind]string
	titles map[catalog.Kind]string
}

func newPromptSource(in *bufio.Reader, yes bool, preset map[catalog.Kind]string) *promptSource {
	titles := make(map[catalog.Kind]string)
	for _, def := range catalog.All() {
		titles[def.Kind] = def.Title
	}
	return &promptSource{in: in, yes: yes, preset: preset, titles: titles}
}

func (p *promptSource) Provide(kind catalog.Kind) (string, error) {
	if v := p.preset[kind]; v != "" {
		return v, nil
	}
	if p.yes {
		return values.Generate(kind), nil
	}

	title := p.titles[kind]
	if title == "" {
		title = string(kind)
	}
	for {
		fmt.Printf("%s (%s): ", title, valueHints[kind])
		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return values.Generate(kind), nil
		}
		if verr := values.Validate(kind, line); verr != nil {
			fmt.Println(verr)
			if errors.Is(err, io.EOF) {
				return values.Generate(kind), nil
			}
			continue
		}
		return values.Normalize(kind, line), nil
	}
}

// confirm asks a yes/no question. A blank answer or closed stdin picks def.
func confirm(in *bufio.Reader, prompt string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Printf("%s [%s]: ", prompt, hint)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// pickOne has the user choose among candidate paths by number.
func pickOne(in *bufio.Reader, candidates []string) (string, error) {
	fmt.Println("Multiple cursor appimages found:")
	for i, c := range candidates {
		fmt.Printf("  %d. %s\n", i+1, c)
	}
	fmt.Printf("Select [1-%d]: ", len(candidates))

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	choice, err := strconv.Atoi(line)
	if err != nil || choice < 1 || choice > len(candidates) {
		return "", fmt.Errorf("invalid selection %q", line)
	}
	return candidates[choice-1], nil
}
