package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/resume-fit/internal/ai"
	"github.com/spigell/resume-fit/internal/extract"
	"github.com/spigell/resume-fit/internal/utils"
	"go.uber.org/zap"
)

//go:embed ner.md
var nerTemplate string

const maxRecognizerInputRunes = 12000

// EntityRecognizer asks the model for PERSON and ORG spans. It satisfies
// extract.Recognizer.
type EntityRecognizer struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewEntityRecognizer wraps any generator.
func NewEntityRecognizer(generator ai.Generator, logger *zap.Logger, maxLogLength int) *EntityRecognizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &EntityRecognizer{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Recognize returns the entities found in raw. Start is the first byte offset
// of the entity text in raw, or -1 when the model paraphrased it.
func (r *EntityRecognizer) Recognize(ctx context.Context, raw string) ([]extract.Entity, error) {
	if r == nil || r.generator == nil {
		return nil, errors.New("entity recognizer is not initialized")
	}

	text := raw
	if utf8.RuneCountInString(text) > maxRecognizerInputRunes {
		text = string([]rune(text)[:maxRecognizerInputRunes])
	}

	response, err := r.generator.Generate(ctx, buildNERPrompt(text), 0)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("entity recognition response",
		zap.Int("response_length", utf8.RuneCountInString(response)),
		zap.String("response_preview", utils.TruncateForLog(response, r.maxLogLen)),
	)

	entities, err := parseEntities(response)
	if err != nil {
		return nil, err
	}

	for i := range entities {
		entities[i].Start = strings.Index(raw, entities[i].Text)
	}

	return entities, nil
}

func buildNERPrompt(text string) string {
	template := nerTemplate
	if strings.TrimSpace(template) == "" {
		template = "Text:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{RESUME_TEXT}}", text)
}

func parseEntities(raw string) ([]extract.Entity, error) {
	cleaned := extractJSON(raw)

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini entities: %w", err)
	}

	items := data
	if obj, ok := data.(map[string]any); ok {
		items = obj["entities"]
	}
	if items == nil {
		return []extract.Entity{}, nil
	}

	var decoded []extract.Entity
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode gemini entities: %w", err)
	}

	out := make([]extract.Entity, 0, len(decoded))
	for _, ent := range decoded {
		label := normalizeLabel(ent.Label)
		value := collapseSpaces(ent.Text)
		if label == "" || value == "" {
			continue
		}
		out = append(out, extract.Entity{Text: value, Label: label})
	}

	return out, nil
}

func normalizeLabel(label string) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PERSON", "PER", "NAME":
		return extract.LabelPerson
	case "ORG", "ORGANIZATION", "ORGANISATION", "COMPANY":
		return extract.LabelOrg
	default:
		return ""
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func collapseSpaces(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
