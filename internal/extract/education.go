package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	degreeKeywords = []string{
		"bachelor", "b.sc", "btech", "b.tech", "b.e", "b.eng", "bachelor of",
		"master", "m.sc", "mtech", "m.tech", "mba", "mca", "phd", "doctor",
		"diploma", "associate",
	}
	institutionKeywords = []string{"university", "institute", "college", "school", "iit", "mit", "nit"}

	degreePatterns      = wordPatterns(degreeKeywords)
	institutionPatterns = wordPatterns(institutionKeywords)
)

const minEducationLineLength = 4

func wordPatterns(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return out
}

// Education returns the lines of raw text that mention a degree or an
// institution, trimmed and de-duplicated in first-seen order.
func Education(raw string) []string {
	found := []string{}
	seen := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) < minEducationLineLength {
			continue
		}
		if !matchesAny(line, degreePatterns) && !matchesAny(line, institutionPatterns) {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		found = append(found, line)
	}

	return found
}

func matchesAny(line string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
