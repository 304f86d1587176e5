// Package progression converts quest completions into XP, levels and theme unlocks.
// Everything here is pure: callers own persistence and serialization of updates.
package progression

import (
	"fmt"
	"sort"
	"time"
)

type themeUnlock struct {
	level int
	theme Theme
}

// Engine evaluates a validated progression table.
type Engine struct {
	// thresholds[i] is the minimum XP for level i+1.
	thresholds []int
	unlocks    []themeUnlock
}

// NewEngine validates cfg and builds an engine from it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	levels := sortedLevels(cfg.LevelThresholds)
	thresholds := make([]int, len(levels))
	for i, l := range levels {
		thresholds[i] = cfg.LevelThresholds[l]
	}

	unlockLevels := sortedLevels(cfg.ThemeUnlocks)
	unlocks := make([]themeUnlock, 0, len(unlockLevels))
	for _, l := range unlockLevels {
		unlocks = append(unlocks, themeUnlock{level: l, theme: cfg.ThemeUnlocks[l]})
	}

	return &Engine{thresholds: thresholds, unlocks: unlocks}, nil
}

// MustNewEngine is NewEngine for tables known to be valid at compile time.
func MustNewEngine(cfg Config) *Engine {
	e, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns an engine over DefaultConfig.
func Default() *Engine {
	return MustNewEngine(DefaultConfig())
}

// MaxLevel is the highest level in the table.
func (e *Engine) MaxLevel() int {
	return len(e.thresholds)
}

// LevelFor returns the highest level whose threshold is at most totalXP.
func (e *Engine) LevelFor(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	// First index whose threshold exceeds totalXP; the level is that index.
	return sort.Search(len(e.thresholds), func(i int) bool {
		return e.thresholds[i] > totalXP
	})
}

// Threshold returns the minimum XP for level. Levels below 1 clamp to 1, levels
// past the table clamp to the max level.
func (e *Engine) Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	if level > len(e.thresholds) {
		level = len(e.thresholds)
	}
	return e.thresholds[level-1]
}

// NextThreshold returns the XP needed for level+1, and false at the max level.
func (e *Engine) NextThreshold(level int) (int, bool) {
	if level >= len(e.thresholds) {
		return 0, false
	}
	if level < 1 {
		level = 1
	}
	return e.thresholds[level], true
}

// Progress is the position of a hero inside their current level.
type Progress struct {
	Level    int
	Current  int // XP earned inside the level
	Span     int // XP between this level and the next; 0 at max level
	Percent  int
	MaxedOut bool
}

// LevelProgress locates totalXP inside its level band.
func (e *Engine) LevelProgress(totalXP int) Progress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := e.LevelFor(totalXP)
	floor := e.Threshold(level)
	next, ok := e.NextThreshold(level)
	if !ok {
		return Progress{Level: level, Current: totalXP - floor, Percent: 100, MaxedOut: true}
	}
	span := next - floor
	cur := totalXP - floor
	return Progress{Level: level, Current: cur, Span: span, Percent: cur * 100 / span}
}

// UnlockedThemes returns every theme available at level, ordered by unlock level.
func (e *Engine) UnlockedThemes(level int) []Theme {
	var out []Theme
	for _, u := range e.unlocks {
		if u.level > level {
			break
		}
		out = append(out, u.theme)
	}
	return out
}

// UnlockLevel returns the level at which theme unlocks.
func (e *Engine) UnlockLevel(theme Theme) (int, bool) {
	for _, u := range e.unlocks {
		if u.theme == theme {
			return u.level, true
		}
	}
	return 0, false
}

// Themes lists every configured theme in unlock order.
func (e *Engine) Themes() []Theme {
	return e.UnlockedThemes(e.MaxLevel())
}

// IsUnlocked reports whether theme is usable by p.
func (e *Engine) IsUnlocked(p Profile, theme Theme) bool {
	return p.HasTheme(theme)
}

// NewProfile returns the onboarding profile: no XP, level 1, level-1 themes.
func (e *Engine) NewProfile() Profile {
	themes := e.UnlockedThemes(1)
	return Profile{
		TotalXP:        0,
		Level:          1,
		UnlockedThemes: themes,
		ActiveTheme:    themes[0],
	}
}

// Normalize recomputes the level from XP and merges in every theme the level
// grants. Previously unlocked themes are never dropped.
func (e *Engine) Normalize(p Profile) Profile {
	out := p.clone()
	if out.TotalXP < 0 {
		out.TotalXP = 0
	}
	out.Level = e.LevelFor(out.TotalXP)
	out.UnlockedThemes, _ = mergeThemes(out.UnlockedThemes, e.UnlockedThemes(out.Level))
	if out.ActiveTheme == "" || !out.HasTheme(out.ActiveTheme) {
		out.ActiveTheme = out.UnlockedThemes[0]
	}
	return out
}

// Award applies a quest completion to p. A quest that is already completed is
// a no-op with a zero delta. A non-positive XP value is a contract violation
// and leaves p untouched.
func (e *Engine) Award(p Profile, q Quest) (Profile, AwardResult, error) {
	before := e.LevelFor(p.TotalXP)

	if q.Status == StatusCompleted {
		return p, AwardResult{LevelBefore: before, LevelAfter: before}, nil
	}
	if q.Status != StatusPending {
		return p, AwardResult{}, fmt.Errorf("award quest %d: unknown status %q", q.ID, q.Status)
	}
	if q.XPValue <= 0 {
		return p, AwardResult{}, fmt.Errorf("award quest %d (xp %d): %w", q.ID, q.XPValue, ErrInvalidXPValue)
	}

	out := p.clone()
	out.TotalXP += q.XPValue
	out.Level = e.LevelFor(out.TotalXP)

	var added []Theme
	out.UnlockedThemes, added = mergeThemes(out.UnlockedThemes, e.UnlockedThemes(out.Level))

	return out, AwardResult{
		XPDelta:       q.XPValue,
		LevelBefore:   before,
		LevelAfter:    out.Level,
		LeveledUp:     out.Level > before,
		NewlyUnlocked: added,
	}, nil
}

// Complete flips a pending quest to completed at the given time. Completed
// quests come back unchanged; there is no reverse transition.
func Complete(q Quest, at time.Time) Quest {
	if q.Status == StatusCompleted {
		return q
	}
	at = at.UTC()
	q.Status = StatusCompleted
	q.CompletedAt = &at
	return q
}

// IsOverdue reports whether a still-pending quest is past its due time.
func IsOverdue(q Quest, now time.Time) bool {
	return q.Status == StatusPending && q.DueAt != nil && q.DueAt.Before(now)
}

// mergeThemes appends the members of add missing from have, preserving order,
// and returns the merged set plus what was added.
func mergeThemes(have, add []Theme) ([]Theme, []Theme) {
	merged := append([]Theme(nil), have...)
	var added []Theme
	for _, t := range add {
		found := false
		for _, h := range merged {
			if h == t {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, t)
			added = append(added, t)
		}
	}
	return merged, added
}
