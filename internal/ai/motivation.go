package ai

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	FallbackQuote      = "The journey of a thousand miles begins with a single step."
	UnavailableQuote   = "Keep moving forward. Your vision awaits."
	UnavailableSuggest = "Project Hercules: Become Fit (AI Unavailable)"
)

// Motivator writes a short daily quote tied to the main quest.
type Motivator struct {
	gen Generator
	log *zap.Logger
}

func NewMotivator(gen Generator, log *zap.Logger) *Motivator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Motivator{gen: gen, log: log}
}

// Quote never fails: it falls back to canned text.
func (m *Motivator) Quote(ctx context.Context, goal string) string {
	if m.gen == nil {
		return UnavailableQuote
	}
	prompt := fmt.Sprintf("Generate a single, short, profound motivational quote specifically for someone whose goal is: '%s'. \n", goal) +
		"Do not be cheesy. Be stoic, inspiring, or visionary. \n" +
		"Maximum 15 words. \n" +
		"Format: Just the quote text."

	text, err := m.gen.Generate(ctx, prompt, Options{Temperature: 1.0, MaxOutputTokens: 30})
	if err != nil {
		m.log.Warn("quote failed", zap.Error(err))
		return FallbackQuote
	}
	return strings.TrimSpace(strings.ReplaceAll(text, `"`, ""))
}

var rerollPrefixes = []string{"Vision:", "Strategic Objective:", "Roadmap:", "Milestone:"}

var concreteGoals = []string{
	"Run a Marathon", "Learn French", "Save $10,000", "Write a Novel",
	"Learn Python", "Visit Japan", "Get Promoted", "Deadlift 100kg",
	"Learn Guitar", "Quit Sugar", "Read 24 Books", "Start a Business",
	"Renovate the House", "Learn to Surf", "Cook Every Day", "Meditate Daily",
}

// Suggester proposes a goal title for onboarding.
type Suggester struct {
	gen  Generator
	log  *zap.Logger
	pick func(n int) int
}

func NewSuggester(gen Generator, log *zap.Logger) *Suggester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Suggester{gen: gen, log: log, pick: rand.IntN}
}

// Suggest rephrases hint into a vision title. An empty hint, or one that
// already looks generated, gets a fresh idea instead.
func (s *Suggester) Suggest(ctx context.Context, hint string) (string, error) {
	if s.gen == nil {
		return UnavailableSuggest, nil
	}

	hint = strings.TrimSpace(hint)
	for _, prefix := range rerollPrefixes {
		if strings.HasPrefix(hint, prefix) {
			hint = ""
			break
		}
	}

	var prompt string
	if hint == "" {
		goal := concreteGoals[s.pick(len(concreteGoals))]
		prompt = fmt.Sprintf("Formulate a concise, punchy, and professional Vision Title for this goal: '%s'. \n", goal) +
			"The title should be inspiring but direct. Avoid excessive corporate buzzwords. \n" +
			"Format: 'Vision: [Short, Powerful Phrase]' or 'Strategic Objective: [Clear Outcome]'. \n" +
			"Keep it under 10 words. \n" +
			"Provide ONLY the title."
	} else {
		prompt = "Rephrase this goal into a short, punchy, and professional Vision Title. " +
			"Avoid lengthy sentences. Focus on the core value. " +
			"Format: 'Vision: ...' " +
			fmt.Sprintf("Goal: '%s'. Provide ONLY the title, no quotes.", hint)
	}

	text, err := s.gen.Generate(ctx, prompt, Options{Temperature: 1.0, MaxOutputTokens: 50})
	if err != nil {
		s.log.Warn("goal suggestion failed", zap.Error(err))
		return "", fmt.Errorf("suggest goal: %w", err)
	}
	return text, nil
}

// VisionImageURL builds a generated-art URL for the goal. The image service
// needs no key and renders on first fetch.
func VisionImageURL(goal string) string {
	prompt := fmt.Sprintf("cyberpunk futuristic vision board style art for goal: %s, cinematic lighting, high quality, 8k", goal)
	return "https://image.pollinations.ai/prompt/" + url.PathEscape(prompt) + "?width=1200&height=400&nologo=true"
}
