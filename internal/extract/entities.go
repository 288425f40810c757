package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Entity labels produced by recognizers.
const (
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
)

// Entity is a labeled span found in raw text. Start is the byte offset of
// the span, or -1 when unknown.
type Entity struct {
	Text  string `json:"text" mapstructure:"text"`
	Label string `json:"label" mapstructure:"label"`
	Start int    `json:"start" mapstructure:"start"`
}

// Recognizer finds named entities in raw text.
type Recognizer interface {
	Recognize(ctx context.Context, raw string) ([]Entity, error)
}

// Entities is the identity information extracted from a résumé.
type Entities struct {
	Name          *string
	Organizations []string
}

// EntityExtractor picks the candidate name and organizations out of the
// entities a Recognizer reports.
type EntityExtractor struct {
	recognizer Recognizer
	logger     *zap.Logger
}

// NewEntityExtractor wraps a recognizer. A nil recognizer falls back to the
// heuristic one.
func NewEntityExtractor(recognizer Recognizer, logger *zap.Logger) *EntityExtractor {
	if recognizer == nil {
		recognizer = HeuristicRecognizer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityExtractor{recognizer: recognizer, logger: logger}
}

// Extract never fails: recognizer errors yield empty entities.
func (e *EntityExtractor) Extract(ctx context.Context, raw string) Entities {
	out := Entities{Organizations: []string{}}
	if strings.TrimSpace(raw) == "" {
		return out
	}

	entities, err := e.recognizer.Recognize(ctx, raw)
	if err != nil {
		e.logger.Warn("entity recognition failed", zap.Error(err))
		return out
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return position(entities[i]) < position(entities[j])
	})

	seen := make(map[string]struct{})
	for _, ent := range entities {
		value := strings.TrimSpace(ent.Text)
		if value == "" {
			continue
		}

		switch strings.ToUpper(ent.Label) {
		case LabelPerson:
			if out.Name == nil {
				name := value
				out.Name = &name
			}
		case LabelOrg:
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			out.Organizations = append(out.Organizations, value)
		}
	}

	return out
}

func position(e Entity) int {
	if e.Start < 0 {
		return int(^uint(0) >> 1)
	}
	return e.Start
}

var (
	orgSuffixPattern = regexp.MustCompile(`\b((?:[A-Z][\w&.\-]*[ \t]+){1,4}(?:Inc|LLC|Ltd|Corp|Corporation|Company|Technologies|Technology|Labs|Group|Systems|Solutions|Software|Bank|Consulting|University|Institute|College|Academy)\b\.?)`)
	orgAtPattern     = regexp.MustCompile(`(?:\bat|@)[ \t]+([A-Z][\w&\-]*(?:[ \t]+[A-Z][\w&\-]*){0,3})`)
	nameWord         = regexp.MustCompile(`^[A-Z][A-Za-z'\-]*\.?$`)
)

const nameScanLines = 5

var notNameWords = map[string]struct{}{
	"resume": {}, "curriculum": {}, "vitae": {}, "cv": {}, "skills": {}, "experience": {},
	"education": {}, "summary": {}, "profile": {}, "contact": {}, "objective": {},
	"engineer": {}, "developer": {}, "manager": {}, "analyst": {}, "designer": {},
	"scientist": {}, "senior": {}, "junior": {}, "lead": {}, "need": {},
}

// HeuristicRecognizer is an offline recognizer built on layout conventions
// of résumés: the name is a short capitalized line near the top, and
// organizations carry a corporate or academic suffix or follow "at".
type HeuristicRecognizer struct{}

// Recognize implements Recognizer.
func (HeuristicRecognizer) Recognize(_ context.Context, raw string) ([]Entity, error) {
	var out []Entity

	if name, start, ok := findName(raw); ok {
		out = append(out, Entity{Text: name, Label: LabelPerson, Start: start})
	}

	for _, loc := range orgSuffixPattern.FindAllStringSubmatchIndex(raw, -1) {
		out = append(out, Entity{Text: strings.TrimSpace(raw[loc[2]:loc[3]]), Label: LabelOrg, Start: loc[2]})
	}
	for _, loc := range orgAtPattern.FindAllStringSubmatchIndex(raw, -1) {
		out = append(out, Entity{Text: strings.TrimSpace(raw[loc[2]:loc[3]]), Label: LabelOrg, Start: loc[2]})
	}

	return out, nil
}

func findName(raw string) (string, int, bool) {
	offset := 0
	scanned := 0
	for _, line := range strings.SplitAfter(raw, "\n") {
		start := offset
		offset += len(line)

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		scanned++
		if scanned > nameScanLines {
			break
		}

		if looksLikeName(trimmed) {
			return trimmed, start + strings.Index(line, trimmed), true
		}
	}
	return "", 0, false
}

func looksLikeName(line string) bool {
	if strings.IndexFunc(line, unicode.IsDigit) >= 0 || strings.ContainsAny(line, "@:,/|") {
		return false
	}

	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}

	for _, w := range words {
		if !nameWord.MatchString(w) {
			return false
		}
		if _, banned := notNameWords[strings.ToLower(strings.Trim(w, "."))]; banned {
			return false
		}
	}

	return !orgSuffixPattern.MatchString(line)
}
