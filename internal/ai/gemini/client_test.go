package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/spigell/resume-fit/internal/ai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type generateCall struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeEmbedResponse struct {
	resp *genai.EmbedContentResponse
	err  error
}

type fakeModels struct {
	mu          sync.Mutex
	calls       []generateCall
	queue       []fakeResponse
	embedCalls  int
	embedQueue  []fakeEmbedResponse
	embedModels []string
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prompt := ""
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		prompt = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, generateCall{model: model, prompt: prompt, config: config})

	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func (f *fakeModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.embedCalls++
	f.embedModels = append(f.embedModels, model)
	if len(f.embedQueue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.embedQueue[0]
	f.embedQueue = f.embedQueue[1:]
	return res.resp, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { sleep = original })
	return &delays
}

func testGenerator(models contentModels, maxRetries int) *Generator {
	return newGenerator(models, Options{Model: "gemini-pro", MaxRetries: maxRetries}, zap.NewNop())
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	delays := noSleep(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(textResponse("retry ok"), nil)

	g := testGenerator(models, 2)

	output, err := g.Generate(context.Background(), "  message ", 0.4)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}

	if len(*delays) != 1 || (*delays)[0] != baseRetryDelay {
		t.Fatalf("unexpected retry delays: %v", *delays)
	}

	for _, call := range models.calls {
		if call.model != "gemini-pro" {
			t.Fatalf("unexpected model: %q", call.model)
		}
		if call.prompt != "message" {
			t.Fatalf("unexpected prompt: %q", call.prompt)
		}
		if call.config == nil || call.config.Temperature == nil || *call.config.Temperature != 0.4 {
			t.Fatalf("expected temperature to be set")
		}
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	noSleep(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	g := testGenerator(models, 2)

	_, err := g.Generate(context.Background(), "msg", 0.2)
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if reason := ai.ReasonOf(err); reason != ai.ReasonNetwork {
		t.Fatalf("expected network reason, got %q", reason)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	delays := noSleep(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	g := testGenerator(models, 3)

	_, err := g.Generate(context.Background(), "msg", 0.2)
	if err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if reason := ai.ReasonOf(err); reason != ai.ReasonQuota {
		t.Fatalf("expected quota reason, got %q", reason)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}

	if len(*delays) != 0 {
		t.Fatalf("expected no waiting, got %v", *delays)
	}
}

func TestGeneratorWaitsForShortQuotaDelay(t *testing.T) {
	delays := noSleep(t)

	models := &fakeModels{}
	models.enqueue(nil, &genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry in 5s",
	})
	models.enqueue(textResponse("ok"), nil)

	g := testGenerator(models, 3)

	if _, err := g.Generate(context.Background(), "msg", 0.2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(*delays) != 1 || (*delays)[0] != 5*time.Second {
		t.Fatalf("unexpected retry delays: %v", *delays)
	}
}

func TestGeneratorClassifiesErrors(t *testing.T) {
	noSleep(t)

	cases := []struct {
		name   string
		resp   *genai.GenerateContentResponse
		err    error
		reason string
	}{
		{
			name:   "unauthorized",
			err:    genai.APIError{Code: http.StatusUnauthorized, Status: "UNAUTHENTICATED"},
			reason: ai.ReasonAuth,
		},
		{
			name:   "invalid api key",
			err:    genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."},
			reason: ai.ReasonAuth,
		},
		{
			name:   "bad request",
			err:    genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT", Message: "bad field"},
			reason: ai.ReasonUnknown,
		},
		{
			name:   "cancelled",
			err:    context.Canceled,
			reason: ai.ReasonNetwork,
		},
		{
			name:   "empty",
			resp:   &genai.GenerateContentResponse{},
			reason: ai.ReasonEmpty,
		},
		{
			name: "safety finish",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
			}}},
			reason: ai.ReasonSafety,
		},
		{
			name: "prompt blocked",
			resp: &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason: "SAFETY",
			}},
			reason: ai.ReasonSafety,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			models := &fakeModels{}
			models.enqueue(tc.resp, tc.err)

			_, err := testGenerator(models, 3).Generate(context.Background(), "msg", 0.2)
			if err == nil {
				t.Fatal("expected error")
			}

			var genErr *ai.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected GenerationError, got %T", err)
			}
			if genErr.Reason != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, genErr.Reason)
			}
			if len(models.calls) != 1 {
				t.Fatalf("expected single call, got %d", len(models.calls))
			}
		})
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{}

	_, err := testGenerator(models, 1).Generate(context.Background(), "   ", 0.2)
	if err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if len(models.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(models.calls))
	}
}

func TestGeneratorDefaults(t *testing.T) {
	g := newGenerator(&fakeModels{}, Options{}, nil)

	if g.Model() != defaultModel {
		t.Fatalf("unexpected model: %q", g.Model())
	}
	if g.Embedder().Model() != defaultEmbeddingModel {
		t.Fatalf("unexpected embedding model: %q", g.Embedder().Model())
	}
	if g.maxRetries != defaultMaxRetries {
		t.Fatalf("unexpected retries: %d", g.maxRetries)
	}

	if _, err := NewGenerator(context.Background(), Options{APIKey: " "}, nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestEmbedderEmbed(t *testing.T) {
	noSleep(t)

	models := &fakeModels{embedQueue: []fakeEmbedResponse{
		{err: genai.APIError{Code: http.StatusBadGateway, Status: "BAD_GATEWAY"}},
		{resp: &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{1, 0}},
			{Values: []float32{0, 1}},
		}}},
	}}

	e := newGenerator(models, Options{EmbeddingModel: "emb-1", MaxRetries: 2}, nil).Embedder()

	vectors, err := e.Embed(context.Background(), []string{"python docker", "aws"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
	if models.embedCalls != 2 || models.embedModels[0] != "emb-1" {
		t.Fatalf("unexpected embed calls: %d %v", models.embedCalls, models.embedModels)
	}
}

func TestEmbedderCountMismatch(t *testing.T) {
	models := &fakeModels{embedQueue: []fakeEmbedResponse{
		{resp: &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}}}},
	}}

	_, err := testGenerator(models, 3).Embedder().Embed(context.Background(), []string{"a", "b"})
	if ai.ReasonOf(err) != ai.ReasonEmpty {
		t.Fatalf("expected empty reason, got %v", err)
	}
	if models.embedCalls != 1 {
		t.Fatalf("expected single call, got %d", models.embedCalls)
	}
}
