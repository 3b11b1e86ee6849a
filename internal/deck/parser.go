// Package deck parses deck lists and evaluates them line by line against
// the catalog and the store aggregator.
package deck

import (
	"regexp"
	"strconv"
	"strings"
)

// Line is one entry of a deck list. Lines are identified by their raw name.
type Line struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

var (
	// "4 Lightning Bolt", "4x Lightning Bolt"
	quantityRegex = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)
	// Arena exports append "(SET) 123" to the name.
	setSuffixRegex = regexp.MustCompile(`\s+\([A-Za-z0-9]+\)(?:\s+\S+)?$`)
)

var sectionHeaders = map[string]bool{
	"deck":       true,
	"sideboard":  true,
	"commander":  true,
	"companion":  true,
	"maybeboard": true,
}

// Parse reads a deck list, one card per line. Blank lines, comment lines
// (// or #) and section headers are skipped. Quantity defaults to 1. A
// zero quantity is kept as a row that adds nothing to the totals.
func Parse(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		if line, ok := ParseLine(raw); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseLine parses a single deck list line.
func ParseLine(raw string) (Line, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "#") {
		return Line{}, false
	}
	if sectionHeaders[strings.ToLower(strings.TrimSuffix(s, ":"))] {
		return Line{}, false
	}

	line := Line{Quantity: 1, Name: s}
	if m := quantityRegex.FindStringSubmatch(s); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err == nil {
			line.Quantity = qty
			line.Name = strings.TrimSpace(m[2])
		}
	}
	line.Name = strings.TrimSpace(setSuffixRegex.ReplaceAllString(line.Name, ""))

	if line.Name == "" {
		return Line{}, false
	}
	return line, true
}

var basicLands = map[string]bool{
	"plains":   true,
	"island":   true,
	"swamp":    true,
	"mountain": true,
	"forest":   true,
}

// IsBasicLand reports whether name is one of the five basic lands.
// Snow-covered and other variants are not basic for this purpose.
func IsBasicLand(name string) bool {
	return basicLands[strings.ToLower(strings.TrimSpace(name))]
}

// WithoutBasicLands returns lines minus the basic lands, keeping order.
func WithoutBasicLands(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if !IsBasicLand(l.Name) {
			out = append(out, l)
		}
	}
	return out
}
