package engine

import (
	"context"
	"time"

	"questlog/internal/ai"
	"questlog/internal/storage"
)

// QuestItem is a stored quest plus its derived, never-persisted overdue flag.
type QuestItem struct {
	storage.Quest
	Overdue bool
}

type Dashboard struct {
	Hero         *Hero
	Main         *storage.Quest
	Quests       []QuestItem
	MainProgress int
	Now          time.Time
}

// ListQuests returns the main quest's quests in user order.
func (s *Service) ListQuests(ctx context.Context) ([]QuestItem, error) {
	main, err := s.MainQuest(ctx)
	if err != nil {
		return nil, err
	}
	return s.listItems(ctx, main.ID, s.clock())
}

func (s *Service) listItems(ctx context.Context, mainID int64, now time.Time) ([]QuestItem, error) {
	quests, err := s.repos.Quests.ListChildren(ctx, mainID)
	if err != nil {
		return nil, err
	}
	out := make([]QuestItem, 0, len(quests))
	for _, q := range quests {
		out = append(out, QuestItem{Quest: q, Overdue: IsOverdue(q, now)})
	}
	return out, nil
}

// GetQuest returns one quest with its overdue flag.
func (s *Service) GetQuest(ctx context.Context, id int64) (*QuestItem, error) {
	q, err := s.repos.Quests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, questNotFound(id)
	}
	return &QuestItem{Quest: *q, Overdue: IsOverdue(*q, s.clock())}, nil
}

// Dashboard gathers everything the main screen shows. It refreshes the daily
// quote once per UTC day and fills in a missing vision image.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.clock()

	h, err := s.Hero(ctx)
	if err != nil {
		return nil, err
	}
	main, err := s.MainQuest(ctx)
	if err != nil {
		return nil, err
	}

	if main.ImageURL == nil || *main.ImageURL == "" {
		img := ai.VisionImageURL(main.Title)
		if err := s.repos.Quests.UpdateImage(ctx, main.ID, img); err != nil {
			return nil, err
		}
		main.ImageURL = &img
	}

	if needsQuote(h.LastQuoteAt, now) {
		quote := s.motivator.Quote(ctx, main.Title)
		if err := s.repos.Profiles.UpdateQuote(ctx, quote, now); err != nil {
			return nil, err
		}
		h.DailyQuote = quote
		h.LastQuoteAt = &now
		s.log.Debug("daily quote refreshed")
	}

	items, err := s.listItems(ctx, main.ID, now)
	if err != nil {
		return nil, err
	}
	done := 0
	for _, q := range items {
		if q.Status == "completed" {
			done++
		}
	}
	pct := 0
	if len(items) > 0 {
		pct = done * 100 / len(items)
	}

	return &Dashboard{Hero: h, Main: main, Quests: items, MainProgress: pct, Now: now}, nil
}

func needsQuote(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	ly, lm, ld := last.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly != ny || lm != nm || ld != nd
}
