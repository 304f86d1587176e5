package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Step is one sub-quest proposed for a main quest.
type Step struct {
	Title    string
	Duration string // free text such as "2 weeks"
	Category string
}

// Architect breaks a main quest into actionable steps.
type Architect struct {
	gen Generator
	log *zap.Logger
}

func NewArchitect(gen Generator, log *zap.Logger) *Architect {
	if log == nil {
		log = zap.NewNop()
	}
	return &Architect{gen: gen, log: log}
}

// Breakdown asks the generator for five steps. Without a generator, or on
// failure, it returns no steps.
func (a *Architect) Breakdown(ctx context.Context, goal string) ([]Step, error) {
	if a.gen == nil {
		return nil, nil
	}

	prompt := fmt.Sprintf("Break down this Main Quest into 5 actionable sub-goals (quests): '%s'. \n", goal) +
		"Format each line exactly as: [Title] | [Estimated Duration] | [Category] \n" +
		"Example: \n" +
		"Research Running Shoes | 1 week | Preparation \n" +
		"Run 5km without stopping | 1 month | Training \n" +
		"Join a local running club | 2 weeks | Social \n" +
		"Avoid introductory text. Provide ONLY the list."

	text, err := a.gen.Generate(ctx, prompt, Options{Temperature: 0.7, MaxOutputTokens: 300})
	if err != nil {
		a.log.Warn("breakdown failed", zap.String("goal", goal), zap.Error(err))
		return nil, nil
	}
	return ParseSteps(text), nil
}

// ParseSteps reads "Title | Duration | Category" lines, skipping anything else.
func ParseSteps(text string) []Step {
	var out []Step
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		title := strings.TrimSpace(listMarker.ReplaceAllString(parts[0], ""))
		if title == "" {
			continue
		}
		out = append(out, Step{
			Title:    title,
			Duration: strings.TrimSpace(parts[1]),
			Category: strings.TrimSpace(parts[2]),
		})
	}
	return out
}

var (
	firstNumber = regexp.MustCompile(`\d+`)
	listMarker  = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s*`)
)

// ParseDuration turns "3 weeks", "1 month", "10 days" or "2 years" into a
// span of days (months count 30, years 365). It reports false when no unit is found.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	n := 1
	if m := firstNumber.FindString(s); m != "" {
		v, err := strconv.Atoi(m)
		if err == nil {
			n = v
		}
	}

	var days int
	switch {
	case strings.Contains(s, "month"):
		days = n * 30
	case strings.Contains(s, "week"):
		days = n * 7
	case strings.Contains(s, "day"):
		days = n
	case strings.Contains(s, "year"):
		days = n * 365
	}
	if days <= 0 {
		return 0, false
	}
	return time.Duration(days) * 24 * time.Hour, true
}
