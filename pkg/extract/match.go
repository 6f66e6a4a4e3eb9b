package extract

import "strings"

// Matcher decides whether an entry takes part in extraction.
type Matcher interface {
	Match(name string) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(name string) bool

// Match calls f.
func (f MatcherFunc) Match(name string) bool { return f(name) }

// SuffixMatcher accepts names ending in any of its suffixes. Matching is
// exact and case-sensitive: "photo.JPG" does not match ".jpg".
type SuffixMatcher []string

// Match reports whether name ends in one of the suffixes.
func (m SuffixMatcher) Match(name string) bool {
	for _, suffix := range m {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

var (
	// TextSuffixes selects text entries
	TextSuffixes = SuffixMatcher{".txt"}
	// ImageSuffixes selects image entries
	ImageSuffixes = SuffixMatcher{".jpg", ".jpeg"}
)
