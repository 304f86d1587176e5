package storage

import "time"

type Profile struct {
	HeroName    string
	TotalXP     int
	Level       int
	ActiveTheme string
	DailyQuote  *string
	LastQuoteAt *time.Time
	CreatedAt   time.Time
}

type UnlockedTheme struct {
	Theme      string
	UnlockedAt time.Time
}

type Quest struct {
	ID          int64
	ParentID    *int64
	IsMain      bool
	Title       string
	Description *string
	Category    string
	Status      string
	XPValue     int
	DueAt       *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	Position    int
	ImageURL    *string
}

type LedgerEntry struct {
	ID          int64
	QuestID     int64
	QuestTitle  string
	XPAwarded   int
	LevelBefore int
	LevelAfter  int
	AwardedAt   time.Time
}
