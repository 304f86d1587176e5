package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"questlog/internal/progression"
)

type ExportData struct {
	ID         string        `json:"id"`
	ExportedAt time.Time     `json:"exported_at"`
	Hero       *ExportHero   `json:"settings"`
	Quests     []ExportQuest `json:"quests"`
	Ledger     []ExportAward `json:"xp_ledger"`
}

type ExportHero struct {
	HeroName       string              `json:"hero_name"`
	ThemeName      progression.Theme   `json:"theme_name"`
	XP             int                 `json:"xp"`
	Level          int                 `json:"level"`
	UnlockedThemes []progression.Theme `json:"unlocked_themes"`
	DailyQuote     string              `json:"daily_quote,omitempty"`
	LastQuoteDate  *time.Time          `json:"last_quote_date,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

type ExportQuest struct {
	ID          int64      `json:"id"`
	ParentID    *int64     `json:"parent_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	XPValue     int        `json:"xp_value"`
	Deadline    *time.Time `json:"deadline"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Position    int        `json:"position"`
	ImageURL    *string    `json:"image_url"`
}

type ExportAward struct {
	QuestID     int64     `json:"quest_id"`
	QuestTitle  string    `json:"quest_title"`
	XPAwarded   int       `json:"xp_awarded"`
	LevelBefore int       `json:"level_before"`
	LevelAfter  int       `json:"level_after"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// Export snapshots every quest, the hero settings and the XP ledger. Before
// onboarding the hero is nil and the lists are empty.
func (s *Service) Export(ctx context.Context) (*ExportData, error) {
	out := &ExportData{
		ID:         uuid.NewString(),
		ExportedAt: s.clock(),
		Quests:     []ExportQuest{},
		Ledger:     []ExportAward{},
	}

	h, err := s.currentHero(ctx)
	if err != nil {
		return nil, err
	}
	if h != nil {
		out.Hero = &ExportHero{
			HeroName:       h.Name,
			ThemeName:      h.Profile.ActiveTheme,
			XP:             h.Profile.TotalXP,
			Level:          h.Profile.Level,
			UnlockedThemes: h.Profile.UnlockedThemes,
			DailyQuote:     h.DailyQuote,
			LastQuoteDate:  h.LastQuoteAt,
			CreatedAt:      h.CreatedAt,
		}
	}

	quests, err := s.repos.Quests.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range quests {
		out.Quests = append(out.Quests, ExportQuest{
			ID:          q.ID,
			ParentID:    q.ParentID,
			Title:       q.Title,
			Description: q.Description,
			Category:    q.Category,
			Status:      q.Status,
			XPValue:     q.XPValue,
			Deadline:    q.DueAt,
			CompletedAt: q.CompletedAt,
			CreatedAt:   q.CreatedAt,
			Position:    q.Position,
			ImageURL:    q.ImageURL,
		})
	}

	ledger, err := s.repos.Ledger.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range ledger {
		out.Ledger = append(out.Ledger, ExportAward{
			QuestID:     e.QuestID,
			QuestTitle:  e.QuestTitle,
			XPAwarded:   e.XPAwarded,
			LevelBefore: e.LevelBefore,
			LevelAfter:  e.LevelAfter,
			AwardedAt:   e.AwardedAt,
		})
	}
	return out, nil
}
