package printing

import (
	"regexp"
	"strings"
)

var (
	apostrophes  = strings.NewReplacer("'", "", "’", "")
	nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s, drops apostrophes, collapses every run of
// non-alphanumeric characters to one hyphen and trims hyphens at both ends.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = apostrophes.Replace(s)
	s = nonAlnumRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FirstFaceSlug slugifies only the first face of a multi-faced name.
func FirstFaceSlug(name string) string {
	if i := strings.Index(name, "//"); i >= 0 {
		name = name[:i]
	}
	return Slugify(name)
}

// JoinedFacesSlug slugifies every face and joins them with a hyphen.
// Since "//" is itself non-alphanumeric this equals Slugify(name).
func JoinedFacesSlug(name string) string {
	return Slugify(name)
}
