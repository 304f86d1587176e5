package progression

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}

// Theme is a cosmetic UI theme identifier, e.g. "zen_garden".
type Theme string

const (
	ThemeCyberpunk  Theme = "cyberpunk"
	ThemeZenGarden  Theme = "zen_garden"
	ThemeMinimalist Theme = "minimalist"
)

// ErrInvalidXPValue is returned when a quest carries a non-positive XP reward.
var ErrInvalidXPValue = errors.New("quest xp value must be positive")

// Profile is a snapshot of a hero's progression state.
// UnlockedThemes is kept ordered by unlock level.
type Profile struct {
	TotalXP        int
	Level          int
	UnlockedThemes []Theme
	ActiveTheme    Theme
}

// Quest is the part of a quest the engine reasons about.
type Quest struct {
	ID          int64
	Title       string
	Status      Status
	XPValue     int
	DueAt       *time.Time
	CompletedAt *time.Time
}

// AwardResult describes what a single award changed.
type AwardResult struct {
	XPDelta       int
	LevelBefore   int
	LevelAfter    int
	LeveledUp     bool
	NewlyUnlocked []Theme
}

// HasTheme reports whether t is in the profile's unlocked set.
func (p Profile) HasTheme(t Theme) bool {
	for _, u := range p.UnlockedThemes {
		if u == t {
			return true
		}
	}
	return false
}

func (p Profile) clone() Profile {
	out := p
	out.UnlockedThemes = append([]Theme(nil), p.UnlockedThemes...)
	return out
}
