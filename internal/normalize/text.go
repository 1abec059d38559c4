package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWord    = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace = regexp.MustCompile(`\s+`)

	// NFD-decompose then drop combining marks, so accented and plain
	// spellings index identically.
	accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	// NFD leaves the French ligatures alone; expand them by hand or the
	// punctuation pass would split "cœlioscopie" in two.
	ligatures = strings.NewReplacer("œ", "oe", "æ", "ae", "Œ", "OE", "Æ", "AE")
)

// Fold removes diacritics from s. Input that fails to transform is
// returned as-is rather than dropped.
func Fold(s string) string {
	out, _, err := transform.String(accentFold, s)
	if err != nil {
		return s
	}
	return out
}

// Text normalizes free text for indexing and querying: accent-fold,
// lowercase, replace punctuation with spaces, collapse whitespace.
// Idempotent; the search engine relies on queries and indexed labels
// going through the exact same function.
func Text(s string) string {
	s = strings.ToLower(Fold(ligatures.Replace(s)))
	s = nonWord.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits normalized text into search tokens. Tokens shorter than
// minLen (articles, prepositions) are dropped unless the query is a single
// word. minLen <= 1 keeps everything.
func Tokenize(s string, minLen int) []string {
	fields := strings.Fields(Text(s))
	if len(fields) <= 1 || minLen <= 1 {
		return fields
	}
	kept := fields[:0]
	for _, f := range fields {
		if len(f) >= minLen {
			kept = append(kept, f)
		}
	}
	return kept
}
