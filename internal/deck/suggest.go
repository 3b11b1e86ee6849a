package deck

import (
	"context"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
)

// minSuggestionScore is the Jaro-Winkler similarity a candidate needs to be offered.
const minSuggestionScore = 0.75

// Suggester proposes catalog names close to a name that did not resolve.
type Suggester interface {
	Named(ctx context.Context, fuzzy string) (printing.Printing, error)
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
}

// Suggest returns a catalog name close to name, or "". The catalog's fuzzy
// lookup is asked first; autocomplete candidates ranked by Jaro-Winkler
// similarity are the fallback.
func Suggest(ctx context.Context, s Suggester, name string) string {
	if s == nil || strings.TrimSpace(name) == "" {
		return ""
	}
	if p, err := s.Named(ctx, name); err == nil && p.Name != "" && !strings.EqualFold(p.Name, strings.TrimSpace(name)) {
		return p.Name
	}

	prefix := suggestionPrefix(name)
	if len(prefix) < 2 {
		return ""
	}

	candidates, err := s.Autocomplete(ctx, prefix)
	if err != nil || len(candidates) == 0 {
		return ""
	}
	return BestMatch(name, candidates)
}

// BestMatch ranks candidates by Jaro-Winkler similarity to name.
func BestMatch(name string, candidates []string) string {
	target := strings.ToLower(strings.TrimSpace(name))

	var (
		best      string
		bestScore float64
	)
	for _, c := range candidates {
		if strings.EqualFold(c, target) {
			continue
		}
		score := matchr.JaroWinkler(target, strings.ToLower(c), false)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < minSuggestionScore {
		return ""
	}
	return best
}

func suggestionPrefix(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	prefix := []rune(fields[0])
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return string(prefix)
}
