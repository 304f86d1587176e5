// Package ai wraps the generative services QuestLog leans on: quest breakdowns,
// goal suggestions, daily quotes and vision board images.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash-lite"

// ErrUnavailable means no generator is configured (usually a missing API key).
var ErrUnavailable = errors.New("ai generator unavailable")

// Options tunes a single generation.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// GeminiGenerator generates text with Google's Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewGeminiGenerator creates a Gemini-backed generator. An empty key returns
// ErrUnavailable so callers can fall back to canned text.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration, log *zap.Logger) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrUnavailable
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model, timeout: timeout, log: log}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxOutputTokens,
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		g.log.Warn("gemini generate failed", zap.String("model", g.model), zap.Error(err))
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	g.log.Debug("gemini generate", zap.String("model", g.model), zap.Duration("took", time.Since(start)))

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini generate: empty response")
	}
	return text, nil
}
