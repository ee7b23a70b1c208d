package manifest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Collect turns CLI arguments into a flat scenario list. Each argument
// is either a manifest path (.yaml/.yml) or a glob matching scenario
// scripts directly. Glob hits get default metadata.
func Collect(args []string) ([]Scenario, error) {
	var out []Scenario
	for _, arg := range args {
		if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
			m, err := Load(arg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", arg, err)
			}
			out = append(out, m.Scenarios...)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			out = append(out, Scenario{File: match})
		}
	}
	return out, nil
}

// FilterTags keeps scenarios matching the include list (any tag) and
// drops those matching the exclude list. Empty include means all.
func FilterTags(scenarios []Scenario, include, exclude []string) []Scenario {
	if len(include) == 0 && len(exclude) == 0 {
		return scenarios
	}
	var out []Scenario
	for _, s := range scenarios {
		if len(include) > 0 && !hasAny(s.Tags, include) {
			continue
		}
		if hasAny(s.Tags, exclude) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func hasAny(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}
