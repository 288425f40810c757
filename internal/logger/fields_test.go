package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsSkipsBlankEntries(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  stage  ", Value: "  ats  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "no key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "stage" || fields[0].String != "ats" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "gemini-2.5-flash").Info("roadmap requested")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider gemini, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("expected model gemini-2.5-flash, got %q", ctx[FieldModel])
	}

	if len(CommonFields("", "")) != 0 {
		t.Fatalf("expected no fields for empty provider and model")
	}

	// nil loggers fall back to a no-op logger.
	WithCommonFields(nil, "gemini", "m").Info("ignored")
}

func TestForStage(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	ForStage(zap.New(core), "rep-1", "skill_gap").Debug("stage finished")
	ForStage(zap.New(core), "", "ats").Debug("stage finished")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first[FieldReportID] != "rep-1" || first[FieldStage] != "skill_gap" {
		t.Fatalf("unexpected fields: %v", first)
	}

	second := entries[1].ContextMap()
	if _, ok := second[FieldReportID]; ok {
		t.Fatalf("empty report id must be omitted, got %v", second)
	}
}
