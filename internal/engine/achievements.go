package engine

import (
	"context"

	"questlog/internal/storage"
)

// Achievement represents a badge the hero can earn.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// AchievementChecker calculates which achievements the hero has earned.
type AchievementChecker struct {
	hero   *Hero
	quests []storage.Quest
	themes int
}

func NewAchievementChecker(hero *Hero, quests []storage.Quest, themeCount int) *AchievementChecker {
	return &AchievementChecker{hero: hero, quests: quests, themes: themeCount}
}

// GetAchievements returns all achievements with their earned status.
func (c *AchievementChecker) GetAchievements() []Achievement {
	return []Achievement{
		// Level milestones
		c.levelAchievement("getting_started", "Getting Started", "Reach level 3", "🌿", 3),
		c.levelAchievement("on_the_path", "On the Path", "Reach level 5", "🌳", 5),
		c.levelAchievement("seasoned", "Seasoned Adventurer", "Reach level 10", "⭐", 10),

		// Quest completion milestones
		c.questCountAchievement("first_quest", "First Quest", "Complete 1 quest", "✓", 1),
		c.questCountAchievement("productive", "Productive", "Complete 10 quests", "📋", 10),
		c.questCountAchievement("achiever", "Achiever", "Complete 50 quests", "🏅", 50),

		c.collectorAchievement("collector", "Collector", "Unlock every theme", "🎨"),
		c.mainQuestAchievement("legend", "Legend", "Finish every quest of the main quest", "🏆"),
	}
}

// CountEarned returns how many achievements have been earned.
func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	earned := c.hero.Profile.Level >= level
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) questCountAchievement(id, name, desc, icon string, count int) Achievement {
	done := 0
	for _, q := range c.quests {
		if !q.IsMain && q.Status == "completed" {
			done++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: done >= count}
}

func (c *AchievementChecker) collectorAchievement(id, name, desc, icon string) Achievement {
	earned := c.themes > 0 && len(c.hero.Profile.UnlockedThemes) >= c.themes
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) mainQuestAchievement(id, name, desc, icon string) Achievement {
	total, done := 0, 0
	for _, q := range c.quests {
		if q.IsMain {
			continue
		}
		total++
		if q.Status == "completed" {
			done++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: total > 0 && done == total}
}

// Achievements evaluates every badge for the current hero.
func (s *Service) Achievements(ctx context.Context) ([]Achievement, error) {
	h, err := s.Hero(ctx)
	if err != nil {
		return nil, err
	}
	quests, err := s.repos.Quests.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewAchievementChecker(h, quests, len(s.prog.Themes())).GetAchievements(), nil
}
