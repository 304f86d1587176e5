package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"questlog/internal/ai"
	"questlog/internal/storage"
)

type OnboardInput struct {
	Goal     string
	HeroName string
	DueAt    *time.Time
}

type AddQuestInput struct {
	Title       string
	Category    string
	Description string
	DueAt       *time.Time
	// XPValue defaults to DefaultQuestXP when zero.
	XPValue int
}

const (
	MainCategory    = "Main"
	DefaultCategory = "General"
)

// Onboard creates the hero profile (first run only) and the main quest.
func (s *Service) Onboard(ctx context.Context, in OnboardInput) (*storage.Quest, error) {
	goal, err := normalizeTitle(in.Goal)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.HeroName)
	if name == "" {
		name = DefaultHeroName
	}
	now := s.clock()
	image := ai.VisionImageURL(goal)

	var id int64
	err = storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		main, err := r.Quests.GetMain(ctx)
		if err != nil {
			return err
		}
		if main != nil {
			return ErrAlreadyOnboarded
		}

		existing, err := r.Profiles.Get(ctx)
		if err != nil {
			return err
		}
		if existing == nil {
			p := s.prog.NewProfile()
			if err := r.Profiles.Create(ctx, storage.Profile{
				HeroName:    name,
				TotalXP:     p.TotalXP,
				Level:       p.Level,
				ActiveTheme: string(p.ActiveTheme),
				CreatedAt:   now,
			}); err != nil {
				return err
			}
			for _, t := range p.UnlockedThemes {
				if err := r.Profiles.UnlockTheme(ctx, string(t), now); err != nil {
					return err
				}
			}
		}

		id, err = r.Quests.Insert(ctx, storage.QuestInsert{
			IsMain:    true,
			Title:     goal,
			Category:  MainCategory,
			DueAt:     in.DueAt,
			CreatedAt: now,
			ImageURL:  &image,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("onboarded", zap.Int64("main_quest", id), zap.String("goal", goal))
	return s.repos.Quests.Get(ctx, id)
}

// MainQuest returns the main quest, or ErrNotOnboarded.
func (s *Service) MainQuest(ctx context.Context) (*storage.Quest, error) {
	main, err := s.repos.Quests.GetMain(ctx)
	if err != nil {
		return nil, err
	}
	if main == nil {
		return nil, ErrNotOnboarded
	}
	return main, nil
}

// AddQuest appends a quest to the end of the main quest's sequence.
func (s *Service) AddQuest(ctx context.Context, in AddQuestInput) (*storage.Quest, error) {
	var id int64
	err := storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		var err error
		id, err = s.insertQuest(ctx, r, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Quests.Get(ctx, id)
}

func (s *Service) insertQuest(ctx context.Context, r storage.Repos, in AddQuestInput) (int64, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return 0, err
	}
	xp := in.XPValue
	if xp == 0 {
		xp = DefaultQuestXP
	}
	if xp < 0 {
		return 0, fmt.Errorf("xp %d: %w", xp, ErrInvalidXPValue)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	var desc *string
	if d := strings.TrimSpace(in.Description); d != "" {
		desc = &d
	}

	main, err := r.Quests.GetMain(ctx)
	if err != nil {
		return 0, err
	}
	if main == nil {
		return 0, ErrNotOnboarded
	}
	total, _, err := r.Quests.CountChildren(ctx, main.ID)
	if err != nil {
		return 0, err
	}

	parent := main.ID
	return r.Quests.Insert(ctx, storage.QuestInsert{
		ParentID:    &parent,
		Title:       title,
		Description: desc,
		Category:    category,
		XPValue:     xp,
		DueAt:       in.DueAt,
		CreatedAt:   s.clock(),
		Position:    total,
	})
}

// GenerateBreakdown asks the architect for steps toward the main quest and
// appends them as quests. Durations such as "2 weeks" become due dates.
func (s *Service) GenerateBreakdown(ctx context.Context) ([]storage.Quest, error) {
	main, err := s.MainQuest(ctx)
	if err != nil {
		return nil, err
	}

	// The AI call runs before any transaction is opened.
	steps, err := s.architect.Breakdown(ctx, main.Title)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, nil
	}

	now := s.clock()
	var ids []int64
	err = storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		for _, st := range steps {
			in := AddQuestInput{
				Title:       st.Title,
				Category:    st.Category,
				Description: "Duration: " + st.Duration,
			}
			if d, ok := ai.ParseDuration(st.Duration); ok {
				due := now.Add(d)
				in.DueAt = &due
			}
			id, err := s.insertQuest(ctx, r, in)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]storage.Quest, 0, len(ids))
	for _, id := range ids {
		q, err := s.repos.Quests.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if q != nil {
			out = append(out, *q)
		}
	}
	s.log.Info("breakdown generated", zap.Int("quests", len(out)))
	return out, nil
}

// SuggestGoal proposes a main quest title for onboarding.
func (s *Service) SuggestGoal(ctx context.Context, hint string) (string, error) {
	return s.suggester.Suggest(ctx, hint)
}
