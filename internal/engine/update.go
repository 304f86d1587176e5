package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"questlog/internal/storage"
)

// UpdateQuest edits a quest's title and due date. The Main Quest may be
// retitled and rescheduled too. The XP reward is fixed at creation and cannot
// be changed here.
func (s *Service) UpdateQuest(ctx context.Context, id int64, title string, dueAt *time.Time) (*storage.Quest, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	var out *storage.Quest
	err = storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		q, err := r.Quests.Get(ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return questNotFound(id)
		}
		if err := r.Quests.UpdateDetails(ctx, id, t, dueAt); err != nil {
			return err
		}
		out, err = r.Quests.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteQuest removes a quest from the main quest. XP it already awarded stays.
func (s *Service) DeleteQuest(ctx context.Context, id int64) error {
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
		if err := r.Quests.Delete(ctx, id); err != nil {
			return err
		}
		if q.ParentID == nil {
			return nil
		}
		siblings, err := r.Quests.ListChildren(ctx, *q.ParentID)
		if err != nil {
			return err
		}
		return compactPositions(ctx, r, siblings)
	})
	if err != nil {
		return err
	}
	s.log.Info("quest deleted", zap.Int64("quest", id))
	return nil
}

// ReorderQuests rewrites the sequence to follow ids. Unknown ids and quests
// outside the main quest are skipped; quests missing from ids keep their
// relative order after the listed ones. XP and level are never touched.
func (s *Service) ReorderQuests(ctx context.Context, ids []int64) error {
	return storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		main, err := r.Quests.GetMain(ctx)
		if err != nil {
			return err
		}
		if main == nil {
			return ErrNotOnboarded
		}
		current, err := r.Quests.ListChildren(ctx, main.ID)
		if err != nil {
			return err
		}

		byID := make(map[int64]storage.Quest, len(current))
		for _, q := range current {
			byID[q.ID] = q
		}
		ordered := make([]storage.Quest, 0, len(current))
		placed := map[int64]bool{}
		for _, id := range ids {
			q, ok := byID[id]
			if !ok || placed[id] {
				continue
			}
			placed[id] = true
			ordered = append(ordered, q)
		}
		for _, q := range current {
			if !placed[q.ID] {
				ordered = append(ordered, q)
			}
		}
		return compactPositions(ctx, r, ordered)
	})
}

// MoveQuest moves one quest to index (0-based, clamped) within the sequence.
func (s *Service) MoveQuest(ctx context.Context, id int64, index int) error {
	quests, err := s.ListQuests(ctx)
	if err != nil {
		return err
	}
	from := -1
	for i, q := range quests {
		if q.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return questNotFound(id)
	}
	if index < 0 {
		index = 0
	}
	if index >= len(quests) {
		index = len(quests) - 1
	}

	ids := make([]int64, 0, len(quests))
	for i, q := range quests {
		if i != from {
			ids = append(ids, q.ID)
		}
	}
	ids = append(ids[:index], append([]int64{id}, ids[index:]...)...)
	return s.ReorderQuests(ctx, ids)
}

func compactPositions(ctx context.Context, r storage.Repos, ordered []storage.Quest) error {
	for i, q := range ordered {
		if q.Position == i {
			continue
		}
		if err := r.Quests.UpdatePosition(ctx, q.ID, i); err != nil {
			return err
		}
	}
	return nil
}

// Reset deletes every quest, award and the hero profile.
func (s *Service) Reset(ctx context.Context) error {
	err := storage.WithTx(ctx, s.db, func(r storage.Repos) error {
		if err := r.Ledger.DeleteAll(ctx); err != nil {
			return err
		}
		if err := r.Quests.DeleteAll(ctx); err != nil {
			return err
		}
		return r.Profiles.DeleteAll(ctx)
	})
	if err != nil {
		return err
	}
	s.log.Warn("all data reset")
	return nil
}
