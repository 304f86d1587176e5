package engine

import (
	"errors"
	"fmt"

	"questlog/internal/progression"
)

var (
	ErrNotOnboarded     = errors.New("no main quest yet; finish onboarding first")
	ErrAlreadyOnboarded = errors.New("main quest already exists")
	ErrNotFound         = errors.New("not found")
	ErrMainQuest        = errors.New("not allowed on the main quest")
	ErrTitleRequired    = errors.New("title is required")
	ErrUnknownTheme     = errors.New("unknown theme")

	// ErrInvalidXPValue is the progression contract error, re-exported for callers.
	ErrInvalidXPValue = progression.ErrInvalidXPValue
)

// ThemeLockedError indicates a theme is gated behind a level the hero has not reached.
type ThemeLockedError struct {
	Theme         progression.Theme
	RequiredLevel int
	CurrentLevel  int
}

func (e ThemeLockedError) Error() string {
	return fmt.Sprintf("theme '%s' unlocks at level %d (currently %d)", e.Theme, e.RequiredLevel, e.CurrentLevel)
}

func questNotFound(id int64) error {
	return fmt.Errorf("quest %d: %w", id, ErrNotFound)
}
