// Package ai defines the narrow capability the report uses to talk to a
// language model.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Generation failure reasons.
const (
	ReasonAuth    = "auth"
	ReasonNetwork = "network"
	ReasonSafety  = "safety"
	ReasonEmpty   = "empty"
	ReasonQuota   = "quota"
	ReasonUnknown = "unknown"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// ModelNamer is implemented by generators that know which model serves them.
type ModelNamer interface {
	Model() string
}

// GenerationError is returned by Generator implementations.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed (%s)", e.Reason)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError wraps err with a failure reason.
func NewGenerationError(reason string, err error) *GenerationError {
	return &GenerationError{Reason: reason, Err: err}
}

// ReasonOf returns the failure reason carried by err, or ReasonUnknown.
func ReasonOf(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) && genErr.Reason != "" {
		return genErr.Reason
	}
	return ReasonUnknown
}

// ModelOf returns the model name of g when it exposes one.
func ModelOf(g Generator) string {
	if named, ok := g.(ModelNamer); ok {
		return named.Model()
	}
	return ""
}
