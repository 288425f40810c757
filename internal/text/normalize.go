// Package text holds the single canonicalization path shared by every
// extractor and matcher.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize collapses whitespace, folds accents, drops characters outside
// [A-Za-z0-9 @._+#-] and lower-cases the result. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = FoldAccents(strings.Join(strings.Fields(s), " "))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if allowed(r) {
			b.WriteRune(r)
		}
	}

	return strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
}

// FoldAccents maps accented Latin letters to their base letter.
func FoldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '@', '.', '_', '+', '#', '-':
		return true
	}
	return false
}

// Tokenize splits normalized text on spaces and trims edge punctuation that
// never belongs to a skill name. "+" and "#" are kept so that c++ and c# survive.
func Tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".-_@")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// CanonicalSkill is the key every matcher compares skills by.
func CanonicalSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SkillTokens returns the token sequence a taxonomy skill is matched by.
func SkillTokens(skill string) []string {
	return Tokenize(Normalize(skill))
}
