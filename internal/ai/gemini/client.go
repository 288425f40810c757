package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/resume-fit/internal/ai"
	"github.com/spigell/resume-fit/internal/logger"
	"github.com/spigell/resume-fit/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	providerName = "gemini"

	defaultModel          = "gemini-2.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
	defaultMaxRetries     = 3
	defaultMaxLogLength   = 200

	baseRetryDelay     = 2 * time.Second
	maxQuotaRetryDelay = 30 * time.Second
)

var sleep = utils.WaitFor

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// contentModels is the part of genai.Models the adapter uses.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Options configures the Gemini adapter.
type Options struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	MaxRetries     int
	MaxLogLength   int
}

// Generator wraps the Google GenAI client to provide prompt-based generation
// with retries.
type Generator struct {
	models         contentModels
	model          string
	embeddingModel string
	maxRetries     int
	maxLogLen      int
	logger         *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, opts, log), nil
}

func newGenerator(models contentModels, opts Options, log *zap.Logger) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	embeddingModel := strings.TrimSpace(opts.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Generator{
		models:         models,
		model:          model,
		embeddingModel: embeddingModel,
		maxRetries:     maxRetries,
		maxLogLen:      maxLogLen,
		logger:         logger.OrNop(log),
	}
}

// Model returns the generation model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Generate sends the prompt to Gemini and returns the textual response.
// Failures are *ai.GenerationError.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	if g == nil || g.models == nil {
		return "", ai.NewGenerationError(ai.ReasonUnknown, errors.New("gemini generator is not initialized"))
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ai.NewGenerationError(ai.ReasonUnknown, errors.New("prompt must not be empty"))
	}

	log := logger.WithCommonFields(g.logger, providerName, g.model)
	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
		zap.Float32("temperature", temperature),
	)

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)}

	var output string
	err := g.withRetry(ctx, log, func() error {
		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err != nil {
			return err
		}
		output, err = responseText(resp)
		return err
	})
	if err != nil {
		return "", err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

// withRetry runs call up to maxRetries times. Errors that are already
// classified are final; API and transport errors are retried when temporary.
func (g *Generator) withRetry(ctx context.Context, log *zap.Logger, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		err := call()
		if err == nil {
			return nil
		}

		var genErr *ai.GenerationError
		if errors.As(err, &genErr) {
			return genErr
		}

		lastErr = classify(err)
		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == g.maxRetries {
			break
		}

		log.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", g.maxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if waitErr := sleep(ctx, delay); waitErr != nil {
			return ai.NewGenerationError(ai.ReasonNetwork, waitErr)
		}
	}

	return lastErr
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ai.NewGenerationError(ai.ReasonEmpty, errors.New("gemini api returned empty response"))
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != "BLOCKED_REASON_UNSPECIFIED" {
		return "", ai.NewGenerationError(ai.ReasonSafety, fmt.Errorf("prompt blocked: %s", fb.BlockReason))
	}

	var builder strings.Builder
	blocked := false
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if candidate.FinishReason == genai.FinishReasonSafety {
			blocked = true
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		if blocked {
			return "", ai.NewGenerationError(ai.ReasonSafety, errors.New("response blocked by safety filters"))
		}
		return "", ai.NewGenerationError(ai.ReasonEmpty, errors.New("gemini api returned empty response"))
	}

	return output, nil
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

func classify(err error) *ai.GenerationError {
	if apiErr, ok := asAPIError(err); ok {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return ai.NewGenerationError(ai.ReasonAuth, err)
		case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
			return ai.NewGenerationError(ai.ReasonAuth, err)
		case apiErr.Code == http.StatusTooManyRequests:
			return ai.NewGenerationError(ai.ReasonQuota, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return ai.NewGenerationError(ai.ReasonNetwork, err)
		default:
			return ai.NewGenerationError(ai.ReasonUnknown, err)
		}
	}

	if isTransportError(err) {
		return ai.NewGenerationError(ai.ReasonNetwork, err)
	}

	return ai.NewGenerationError(ai.ReasonUnknown, err)
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryDelay reports whether err is worth another attempt and how long to
// wait before it.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	backoff := baseRetryDelay << (attempt - 1)

	apiErr, ok := asAPIError(err)
	if !ok {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return backoff, true
		}
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		delay, found := quotaDelay(apiErr)
		if !found {
			return backoff, true
		}
		if delay > maxQuotaRetryDelay {
			return 0, false
		}
		return delay, true
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff, true
	default:
		return 0, false
	}
}

// quotaDelay reads the server-suggested wait from the error details or message.
func quotaDelay(apiErr genai.APIError) (time.Duration, bool) {
	for _, detail := range apiErr.Details {
		if raw, ok := detail["retryDelay"].(string); ok {
			if d, err := time.ParseDuration(strings.TrimSpace(raw)); err == nil {
				return d, true
			}
		}
	}

	match := retryAfterPattern.FindStringSubmatch(apiErr.Message)
	if match == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
