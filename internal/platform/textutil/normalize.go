// Package textutil holds the deterministic string helpers shared by the
// resolvers and extractors: normalization, name similarity and number parsing.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumPattern   = regexp.MustCompile(`[^a-z0-9]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	titleCaser        = cases.Title(language.English)
)

// FoldDiacritics strips combining marks so "Café" compares equal to "Cafe".
func FoldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// Normalize lowercases, folds diacritics, collapses punctuation runs into single
// spaces and trims. Apostrophes are dropped rather than split so "King's" becomes "kings".
func Normalize(value string) string {
	if value == "" {
		return ""
	}
	folded := strings.ToLower(FoldDiacritics(value))
	folded = strings.NewReplacer("'", "", "’", "", "&", " and ").Replace(folded)
	folded = nonAlnumPattern.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// Compact is Normalize without any spaces.
func Compact(value string) string {
	return strings.ReplaceAll(Normalize(value), " ", "")
}

// CollapseSpaces trims and collapses whitespace runs without changing case.
func CollapseSpaces(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}

// Tokens splits a normalized value into words.
func Tokens(value string) []string {
	n := Normalize(value)
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}

// TitleCase renders a human suggestion such as a venue or series name.
func TitleCase(value string) string {
	return titleCaser.String(strings.ToLower(CollapseSpaces(value)))
}

// StripWords removes whole-word occurrences of the given phrases from a
// normalized copy of value.
func StripWords(value string, phrases []string) string {
	out := " " + Normalize(value) + " "
	for _, phrase := range phrases {
		p := Normalize(phrase)
		if p == "" {
			continue
		}
		needle := " " + p + " "
		for strings.Contains(out, needle) {
			out = strings.Replace(out, needle, " ", 1)
		}
	}
	return strings.Join(strings.Fields(out), " ")
}

// ContainsWord reports whether phrase appears in text on word boundaries after normalization.
func ContainsWord(text, phrase string) bool {
	p := Normalize(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+Normalize(text)+" ", " "+p+" ")
}
