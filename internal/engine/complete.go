package engine

import (
	"context"

	"go.uber.org/zap"

	"questlog/internal/progression"
	"questlog/internal/storage"
)

type CompleteResult struct {
	QuestID     int64
	Title       string
	XPAwarded   int
	TotalXP     int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	NewThemes   []progression.Theme
	ActiveTheme progression.Theme
	// AlreadyCompleted marks an idempotent repeat: nothing was awarded.
	AlreadyCompleted bool
	// MainProgress is the percent of the main quest's quests now completed.
	MainProgress int
}

// CompleteQuest marks a quest completed and awards its XP exactly once. The
// status flip, the award and the ledger row commit together; a repeated or
// concurrent request for the same quest finds it no longer pending and
// returns a zero award.
func (s *Service) CompleteQuest(ctx context.Context, id int64) (*CompleteResult, error) {
	now := s.clock()
	res := &CompleteResult{QuestID: id}

	err := storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		q, err := r.Quests.Get(ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return questNotFound(id)
		}
		if q.IsMain {
			return ErrMainQuest
		}
		res.Title = q.Title

		h, err := s.loadHero(ctx, r)
		if err != nil {
			return err
		}
		if h == nil {
			return ErrNotOnboarded
		}
		res.LevelBefore = h.Profile.Level
		res.LevelAfter = h.Profile.Level
		res.TotalXP = h.Profile.TotalXP
		res.ActiveTheme = h.Profile.ActiveTheme

		flipped, err := r.Quests.MarkCompleted(ctx, id, now)
		if err != nil {
			return err
		}
		if !flipped {
			res.AlreadyCompleted = true
			return nil
		}

		// An award error rolls the status flip back with the transaction.
		pq := toProgressionQuest(*q)
		pq.Status = progression.StatusPending
		profile, award, err := s.prog.Award(h.Profile, pq)
		if err != nil {
			return err
		}
		if s.autoSwitch && len(award.NewlyUnlocked) > 0 {
			profile.ActiveTheme = award.NewlyUnlocked[len(award.NewlyUnlocked)-1]
		}

		if err := r.Profiles.UpdateProgress(ctx, profile.TotalXP, profile.Level, string(profile.ActiveTheme)); err != nil {
			return err
		}
		for _, t := range award.NewlyUnlocked {
			if err := r.Profiles.UnlockTheme(ctx, string(t), now); err != nil {
				return err
			}
		}
		if _, err := r.Ledger.Insert(ctx, storage.LedgerEntry{
			QuestID:     id,
			QuestTitle:  q.Title,
			XPAwarded:   award.XPDelta,
			LevelBefore: award.LevelBefore,
			LevelAfter:  award.LevelAfter,
			AwardedAt:   now,
		}); err != nil {
			return err
		}

		res.XPAwarded = award.XPDelta
		res.TotalXP = profile.TotalXP
		res.LevelBefore = award.LevelBefore
		res.LevelAfter = award.LevelAfter
		res.LevelUp = award.LeveledUp
		res.NewThemes = award.NewlyUnlocked
		res.ActiveTheme = profile.ActiveTheme
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pct, err := s.MainProgress(ctx); err == nil {
		res.MainProgress = pct
	}

	if res.AlreadyCompleted {
		s.log.Debug("quest already completed", zap.Int64("quest", id))
	} else {
		s.log.Info("quest completed",
			zap.Int64("quest", id),
			zap.Int("xp", res.XPAwarded),
			zap.Int("total_xp", res.TotalXP),
			zap.Int("level", res.LevelAfter),
			zap.Bool("level_up", res.LevelUp),
		)
	}
	if s.recorder != nil {
		s.recorder.RecordCompletion(res)
	}
	return res, nil
}

// MainProgress returns the percent of the main quest's quests completed.
func (s *Service) MainProgress(ctx context.Context) (int, error) {
	main, err := s.MainQuest(ctx)
	if err != nil {
		return 0, err
	}
	total, done, err := s.repos.Quests.CountChildren(ctx, main.ID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return done * 100 / total, nil
}
