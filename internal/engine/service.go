package engine

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"questlog/internal/ai"
	"questlog/internal/progression"
	"questlog/internal/storage"
)

// DefaultQuestXP is the reward for a quest created without an explicit value.
const DefaultQuestXP = 100

// Recorder receives completion events, typically for metrics.
type Recorder interface {
	RecordCompletion(res *CompleteResult)
}

type Options struct {
	Progression *progression.Engine
	Architect   *ai.Architect
	Motivator   *ai.Motivator
	Suggester   *ai.Suggester
	Recorder    Recorder
	Logger      *zap.Logger

	// AutoSwitchTheme activates the newest theme as soon as it unlocks.
	AutoSwitchTheme bool

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service is the application layer around the progression engine. It owns
// persistence and makes every award an atomic read-modify-write.
type Service struct {
	db    *sql.DB
	repos storage.Repos

	prog       *progression.Engine
	architect  *ai.Architect
	motivator  *ai.Motivator
	suggester  *ai.Suggester
	recorder   Recorder
	log        *zap.Logger
	autoSwitch bool
	now        func() time.Time
}

func NewService(db *sql.DB, opts Options) *Service {
	s := &Service{
		db:         db,
		repos:      storage.NewRepos(db),
		prog:       opts.Progression,
		architect:  opts.Architect,
		motivator:  opts.Motivator,
		suggester:  opts.Suggester,
		recorder:   opts.Recorder,
		log:        opts.Logger,
		autoSwitch: opts.AutoSwitchTheme,
		now:        opts.Now,
	}
	if s.prog == nil {
		s.prog = progression.Default()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.architect == nil {
		s.architect = ai.NewArchitect(nil, s.log)
	}
	if s.motivator == nil {
		s.motivator = ai.NewMotivator(nil, s.log)
	}
	if s.suggester == nil {
		s.suggester = ai.NewSuggester(nil, s.log)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Progression() *progression.Engine { return s.prog }
func (s *Service) QuestRepo() *storage.QuestRepo { return s.repos.Quests }
func (s *Service) LedgerRepo() *storage.LedgerRepo { return s.repos.Ledger }

// Ping checks that the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ErrTitleRequired
	}
	return t, nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func toProgressionQuest(q storage.Quest) progression.Quest {
	return progression.Quest{
		ID:          q.ID,
		Title:       q.Title,
		Status:      progression.Status(q.Status),
		XPValue:     q.XPValue,
		DueAt:       q.DueAt,
		CompletedAt: q.CompletedAt,
	}
}

// IsOverdue evaluates the derived overdue flag for a stored quest.
func IsOverdue(q storage.Quest, now time.Time) bool {
	return progression.IsOverdue(toProgressionQuest(q), now)
}
