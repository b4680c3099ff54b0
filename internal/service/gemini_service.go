package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"

	"github.com/fadilmartias/signal/internal/config"
)

var (
	// ErrProviderUnavailable marks provider failures worth retrying
	// (timeouts, rate limits, 5xx).
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrInvalidInput marks inputs the provider will never accept, such as
	// empty text. Not retried.
	ErrInvalidInput = errors.New("invalid embedding input")
)

// Embedder is the minimal capability the pipelines need from the provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

const maxEmbedTextLen = 10000

// GeminiService wraps the Gemini API with the retry, timeout, and concurrency
// policy for embedding calls. A failed call is surfaced to the caller after
// retries are exhausted, never swallowed into a zero vector: a zero vector
// would silently corrupt every downstream comparison.
type GeminiService struct {
	client *genai.Client
	model  string
	log    *zap.Logger

	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration

	inflight *semaphore.Weighted

	consecutiveErrors atomic.Int32
	circuitBreakerMax int32
}

func NewGeminiService(ctx context.Context, log *zap.Logger) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	concurrency := config.LoadRankingConfig().EmbedConcurrency
	if concurrency <= 0 {
		concurrency = 6
	}

	return &GeminiService{
		client:            client,
		model:             geminiConfig.EmbeddingModel,
		log:               log,
		MaxRetries:        3,
		BaseDelay:         200 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		RequestTimeout:    90 * time.Second,
		inflight:          semaphore.NewWeighted(int64(concurrency)),
		circuitBreakerMax: 5,
	}, nil
}

func (s *GeminiService) ModelName() string {
	return s.model
}

// Embed maps text to an embedding vector. Retries apply only to
// ErrProviderUnavailable, with delays of 200ms, 800ms, 3200ms between
// attempts. In-flight provider calls are bounded to respect rate limits.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty: %w", ErrInvalidInput)
	}
	if len(trimmed) > maxEmbedTextLen {
		s.log.Warn("truncating embedding input",
			zap.Int("length", len(trimmed)), zap.Int("limit", maxEmbedTextLen))
		trimmed = trimmed[:maxEmbedTextLen]
	}

	if s.consecutiveErrors.Load() >= s.circuitBreakerMax {
		return nil, fmt.Errorf("circuit breaker open after %d consecutive errors: %w",
			s.consecutiveErrors.Load(), ErrProviderUnavailable)
	}

	if err := s.inflight.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire embed slot: %w", err)
	}
	defer s.inflight.Release(1)

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.log.Info("retrying embedding call",
				zap.Int("attempt", attempt), zap.Int("max", s.MaxRetries), zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return nil, fmt.Errorf("context done during retry: %w", ErrProviderUnavailable)
			}
		}

		result, err := s.client.Models.EmbedContent(timeoutCtx, s.model, content, nil)
		if err == nil {
			s.consecutiveErrors.Store(0)
			vec, err := validateEmbeddingResponse(result)
			if err != nil {
				return nil, fmt.Errorf("invalid embedding response: %w", err)
			}
			return vec, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			s.consecutiveErrors.Add(1)
			return nil, fmt.Errorf("generate embedding: %w", err)
		}
		s.log.Warn("retryable embedding error", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.consecutiveErrors.Add(1)
	return nil, fmt.Errorf("max retries (%d) exceeded: %v: %w", s.MaxRetries, lastErr, ErrProviderUnavailable)
}

// GenerateContent sends a prompt to the given model and returns the textual
// response. Same retry policy as Embed.
func (s *GeminiService) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("model name cannot be empty: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty: %w", ErrInvalidInput)
	}

	if s.consecutiveErrors.Load() >= s.circuitBreakerMax {
		return "", fmt.Errorf("circuit breaker open after %d consecutive errors: %w",
			s.consecutiveErrors.Load(), ErrProviderUnavailable)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.log.Info("retrying content call",
				zap.Int("attempt", attempt), zap.Int("max", s.MaxRetries), zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return "", fmt.Errorf("context done during retry: %w", ErrProviderUnavailable)
			}
		}

		result, err := s.client.Models.GenerateContent(timeoutCtx, model, genai.Text(prompt), genConfig)
		if err == nil {
			s.consecutiveErrors.Store(0)
			text := strings.TrimSpace(result.Text())
			if text == "" {
				return "", fmt.Errorf("empty response from model %s", model)
			}
			return text, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			s.consecutiveErrors.Add(1)
			return "", fmt.Errorf("generate content: %w", err)
		}
		s.log.Warn("retryable content error", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.consecutiveErrors.Add(1)
	return "", fmt.Errorf("max retries (%d) exceeded: %v: %w", s.MaxRetries, lastErr, ErrProviderUnavailable)
}

// calculateBackoff returns the delay before the given retry attempt:
// 200ms, 800ms, 3200ms, capped at MaxDelay.
func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(4, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "context canceled") ||
		strings.Contains(errMsg, "context deadline exceeded") {
		return false
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return true
		case 500, 502, 503, 504:
			return true
		case 400, 401, 403, 404:
			return false
		}
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF") {
		return true
	}

	return false
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	vec := resp.Embeddings[0].Values
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range vec {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return vec, nil
}
