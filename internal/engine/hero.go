package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"questlog/internal/progression"
	"questlog/internal/storage"
)

const DefaultHeroName = "Hero"

// Hero is the hero profile as the rest of the app sees it.
type Hero struct {
	Name        string
	Profile     progression.Profile
	Progress    progression.Progress
	DailyQuote  string
	LastQuoteAt *time.Time
	CreatedAt   time.Time
}

// ThemeOption describes one configured theme for a settings screen.
type ThemeOption struct {
	Theme         progression.Theme
	RequiredLevel int
	Unlocked      bool
	Active        bool
}

// loadHero reads the profile through r and reconciles it with the progression
// table: level is recomputed from XP and level themes are merged in, so stored
// state cannot drift. Returns nil before onboarding.
func (s *Service) loadHero(ctx context.Context, r storage.Repos) (*Hero, error) {
	p, err := r.Profiles.Get(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	themes, err := r.Profiles.ListThemes(ctx)
	if err != nil {
		return nil, err
	}

	stored := progression.Profile{
		TotalXP:     p.TotalXP,
		Level:       p.Level,
		ActiveTheme: progression.Theme(p.ActiveTheme),
	}
	for _, t := range themes {
		stored.UnlockedThemes = append(stored.UnlockedThemes, progression.Theme(t.Theme))
	}

	norm := s.prog.Normalize(stored)
	if norm.Level != stored.Level || norm.ActiveTheme != stored.ActiveTheme {
		if err := r.Profiles.UpdateProgress(ctx, norm.TotalXP, norm.Level, string(norm.ActiveTheme)); err != nil {
			return nil, err
		}
	}
	if len(norm.UnlockedThemes) != len(stored.UnlockedThemes) {
		now := s.clock()
		for _, t := range norm.UnlockedThemes[len(stored.UnlockedThemes):] {
			if err := r.Profiles.UnlockTheme(ctx, string(t), now); err != nil {
				return nil, err
			}
		}
	}

	h := &Hero{
		Name:        p.HeroName,
		Profile:     norm,
		Progress:    s.prog.LevelProgress(norm.TotalXP),
		LastQuoteAt: p.LastQuoteAt,
		CreatedAt:   p.CreatedAt,
	}
	if p.DailyQuote != nil {
		h.DailyQuote = *p.DailyQuote
	}
	return h, nil
}

// currentHero loads the hero inside a transaction so the reconcile write
// cannot overwrite a concurrent award. Returns nil before onboarding.
func (s *Service) currentHero(ctx context.Context) (*Hero, error) {
	var h *Hero
	err := storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		var err error
		h, err = s.loadHero(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Hero returns the current hero, or ErrNotOnboarded.
func (s *Service) Hero(ctx context.Context) (*Hero, error) {
	h, err := s.currentHero(ctx)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrNotOnboarded
	}
	return h, nil
}

// Themes lists every configured theme with its lock state for the hero.
func (s *Service) Themes(ctx context.Context) ([]ThemeOption, error) {
	h, err := s.Hero(ctx)
	if err != nil {
		return nil, err
	}
	var out []ThemeOption
	for _, t := range s.prog.Themes() {
		lvl, _ := s.prog.UnlockLevel(t)
		out = append(out, ThemeOption{
			Theme:         t,
			RequiredLevel: lvl,
			Unlocked:      h.Profile.HasTheme(t),
			Active:        h.Profile.ActiveTheme == t,
		})
	}
	return out, nil
}

// ParseTheme normalizes user input such as "Zen Garden" to a theme id.
func ParseTheme(input string) progression.Theme {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return progression.Theme(s)
}

func (s *Service) checkTheme(h *Hero, theme progression.Theme) error {
	required, ok := s.prog.UnlockLevel(theme)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	if !s.prog.IsUnlocked(h.Profile, theme) {
		return ThemeLockedError{Theme: theme, RequiredLevel: required, CurrentLevel: h.Profile.Level}
	}
	return nil
}

// SetTheme activates an unlocked theme.
func (s *Service) SetTheme(ctx context.Context, theme progression.Theme) error {
	h, err := s.Hero(ctx)
	if err != nil {
		return err
	}
	return s.UpdateSettings(ctx, h.Name, theme)
}

// SetHeroName renames the hero.
func (s *Service) SetHeroName(ctx context.Context, name string) error {
	h, err := s.Hero(ctx)
	if err != nil {
		return err
	}
	return s.UpdateSettings(ctx, name, h.Profile.ActiveTheme)
}

// UpdateSettings writes the hero name and active theme together. Locked or
// unknown themes are rejected.
func (s *Service) UpdateSettings(ctx context.Context, name string, theme progression.Theme) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultHeroName
	}
	err := storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		h, err := s.loadHero(ctx, r)
		if err != nil {
			return err
		}
		if h == nil {
			return ErrNotOnboarded
		}
		if err := s.checkTheme(h, theme); err != nil {
			return err
		}
		return r.Profiles.UpdateSettings(ctx, name, string(theme))
	})
	if err != nil {
		return err
	}
	s.log.Info("settings updated", zap.String("hero", name), zap.String("theme", string(theme)))
	return nil
}
