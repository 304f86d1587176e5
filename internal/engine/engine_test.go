package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"questlog/internal/ai"
	"questlog/internal/progression"
	"questlog/internal/storage"
)

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, _ ai.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db, opts)
}

func onboard(t *testing.T, svc *Service) *storage.Quest {
	t.Helper()
	main, err := svc.Onboard(context.Background(), OnboardInput{Goal: "Run a Marathon", HeroName: "Ada"})
	if err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	return main
}

func addQuest(t *testing.T, svc *Service, title string) *storage.Quest {
	t.Helper()
	q, err := svc.AddQuest(context.Background(), AddQuestInput{Title: title})
	if err != nil {
		t.Fatalf("AddQuest(%q): %v", title, err)
	}
	return q
}

func questOrder(t *testing.T, svc *Service) []string {
	t.Helper()
	items, err := svc.ListQuests(context.Background())
	if err != nil {
		t.Fatalf("ListQuests: %v", err)
	}
	var out []string
	for _, q := range items {
		out = append(out, q.Title)
	}
	return out
}

func TestOnboardCreatesHeroAndMainQuest(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	if _, err := svc.Hero(ctx); !errors.Is(err, ErrNotOnboarded) {
		t.Fatalf("Hero before onboarding err=%v, want ErrNotOnboarded", err)
	}

	main := onboard(t, svc)
	if !main.IsMain || main.Title != "Run a Marathon" || main.XPValue != 0 {
		t.Fatalf("main quest=%+v", main)
	}
	if main.ImageURL == nil || !strings.Contains(*main.ImageURL, "Run%20a%20Marathon") {
		t.Fatalf("image url=%v", main.ImageURL)
	}

	h, err := svc.Hero(ctx)
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if h.Name != "Ada" || h.Profile.TotalXP != 0 || h.Profile.Level != 1 {
		t.Fatalf("hero=%+v", h)
	}
	if h.Profile.ActiveTheme != progression.ThemeCyberpunk || len(h.Profile.UnlockedThemes) != 1 {
		t.Fatalf("themes active=%s unlocked=%v", h.Profile.ActiveTheme, h.Profile.UnlockedThemes)
	}

	if _, err := svc.Onboard(ctx, OnboardInput{Goal: "Again"}); !errors.Is(err, ErrAlreadyOnboarded) {
		t.Fatalf("second Onboard err=%v, want ErrAlreadyOnboarded", err)
	}
	if _, err := svc.Onboard(ctx, OnboardInput{Goal: "   "}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("blank goal err=%v, want ErrTitleRequired", err)
	}
}

func TestAddQuestRequiresOnboardingAndValidatesInput(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	if _, err := svc.AddQuest(ctx, AddQuestInput{Title: "Buy shoes"}); !errors.Is(err, ErrNotOnboarded) {
		t.Fatalf("AddQuest before onboarding err=%v", err)
	}
	onboard(t, svc)

	q := addQuest(t, svc, "  Buy shoes ")
	if q.Title != "Buy shoes" || q.XPValue != DefaultQuestXP || q.Category != DefaultCategory || q.Status != "pending" {
		t.Fatalf("quest=%+v", q)
	}
	if _, err := svc.AddQuest(ctx, AddQuestInput{Title: ""}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("empty title err=%v", err)
	}
	if _, err := svc.AddQuest(ctx, AddQuestInput{Title: "Bad", XPValue: -5}); !errors.Is(err, ErrInvalidXPValue) {
		t.Fatalf("negative xp err=%v", err)
	}
}

func TestCompleteQuestAwardsOnce(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)
	q := addQuest(t, svc, "Run 5km")
	addQuest(t, svc, "Run 10km")

	res, err := svc.CompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.XPAwarded != 100 || res.TotalXP != 100 || res.LevelBefore != 1 || res.LevelAfter != 2 || !res.LevelUp {
		t.Fatalf("first completion=%+v", res)
	}
	if res.MainProgress != 50 {
		t.Fatalf("main progress=%d, want 50", res.MainProgress)
	}

	again, err := svc.CompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("second CompleteQuest: %v", err)
	}
	if !again.AlreadyCompleted || again.XPAwarded != 0 || again.TotalXP != 100 {
		t.Fatalf("second completion=%+v", again)
	}

	got, err := svc.GetQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("GetQuest: %v", err)
	}
	if got.Status != "completed" || got.CompletedAt == nil {
		t.Fatalf("quest after completion=%+v", got)
	}
}

func TestCompleteQuestErrors(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	main := onboard(t, svc)

	if _, err := svc.CompleteQuest(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quest err=%v", err)
	}
	if _, err := svc.CompleteQuest(ctx, main.ID); !errors.Is(err, ErrMainQuest) {
		t.Fatalf("main quest err=%v", err)
	}
}

func TestConcurrentCompletionsAwardExactlyOnce(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)
	q := addQuest(t, svc, "Race day")

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan *CompleteResult, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.CompleteQuest(ctx, q.ID)
			if err != nil {
				errs <- err
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("CompleteQuest: %v", err)
	}
	awarded := 0
	for res := range results {
		if !res.AlreadyCompleted {
			awarded++
		}
	}
	if awarded != 1 {
		t.Fatalf("awards=%d, want 1", awarded)
	}

	sum, err := svc.LedgerRepo().SumXP(ctx)
	if err != nil {
		t.Fatalf("SumXP: %v", err)
	}
	h, err := svc.Hero(ctx)
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if sum != 100 || h.Profile.TotalXP != 100 {
		t.Fatalf("ledger=%d total=%d, want 100", sum, h.Profile.TotalXP)
	}
}

func TestHeroReconcileDoesNotLoseConcurrentAwards(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)
	var quests []*storage.Quest
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		quests = append(quests, addQuest(t, svc, title))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, q := range quests {
			if _, err := svc.CompleteQuest(ctx, q.ID); err != nil {
				errs <- err
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			// Drift the stored level so every load has to write back.
			if _, err := svc.db.ExecContext(ctx, `UPDATE hero_profile SET level = 9`); err != nil {
				errs <- err
				return
			}
			if _, err := svc.Hero(ctx); err != nil {
				errs <- err
				return
			}
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent run: %v", err)
	}

	sum, err := svc.LedgerRepo().SumXP(ctx)
	if err != nil {
		t.Fatalf("SumXP: %v", err)
	}
	h, err := svc.Hero(ctx)
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if sum != 500 || h.Profile.TotalXP != sum {
		t.Fatalf("ledger=%d total=%d, want 500", sum, h.Profile.TotalXP)
	}
	if h.Profile.Level != svc.Progression().LevelFor(h.Profile.TotalXP) {
		t.Fatalf("level=%d for %d xp", h.Profile.Level, h.Profile.TotalXP)
	}
}

func TestUpdateQuestAllowsMainQuest(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	main := onboard(t, svc)
	due := time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)

	q, err := svc.UpdateQuest(ctx, main.ID, "  Run an Ultra  ", &due)
	if err != nil {
		t.Fatalf("UpdateQuest: %v", err)
	}
	if q.Title != "Run an Ultra" || q.DueAt == nil || !q.DueAt.Equal(due) || q.XPValue != main.XPValue {
		t.Fatalf("updated main quest=%+v", q)
	}
	if _, err := svc.UpdateQuest(ctx, 999, "x", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quest err=%v, want ErrNotFound", err)
	}
}

func TestReorderKeepsXPAndOrder(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)
	a := addQuest(t, svc, "A")
	b := addQuest(t, svc, "B")
	c := addQuest(t, svc, "C")
	if _, err := svc.CompleteQuest(ctx, a.ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	if err := svc.ReorderQuests(ctx, []int64{c.ID, 4242, a.ID}); err != nil {
		t.Fatalf("ReorderQuests: %v", err)
	}
	if got := strings.Join(questOrder(t, svc), ","); got != "C,A,B" {
		t.Fatalf("order=%s, want C,A,B", got)
	}

	if err := svc.MoveQuest(ctx, b.ID, 0); err != nil {
		t.Fatalf("MoveQuest: %v", err)
	}
	if got := strings.Join(questOrder(t, svc), ","); got != "B,C,A" {
		t.Fatalf("order=%s, want B,C,A", got)
	}

	h, err := svc.Hero(ctx)
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if h.Profile.TotalXP != 100 || h.Profile.Level != 2 {
		t.Fatalf("xp=%d level=%d after reorder", h.Profile.TotalXP, h.Profile.Level)
	}
}

func TestDeleteQuestKeepsAwardedXP(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	main := onboard(t, svc)
	a := addQuest(t, svc, "A")
	addQuest(t, svc, "B")
	if _, err := svc.CompleteQuest(ctx, a.ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	if err := svc.DeleteQuest(ctx, a.ID); err != nil {
		t.Fatalf("DeleteQuest: %v", err)
	}
	if err := svc.DeleteQuest(ctx, main.ID); !errors.Is(err, ErrMainQuest) {
		t.Fatalf("delete main err=%v", err)
	}
	if err := svc.DeleteQuest(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete twice err=%v", err)
	}

	items, err := svc.ListQuests(ctx)
	if err != nil {
		t.Fatalf("ListQuests: %v", err)
	}
	if len(items) != 1 || items[0].Position != 0 {
		t.Fatalf("remaining=%+v", items)
	}
	h, err := svc.Hero(ctx)
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if h.Profile.TotalXP != 100 {
		t.Fatalf("xp=%d, want 100 kept after delete", h.Profile.TotalXP)
	}
}

func TestUpdateQuestEditsTitleAndDueDate(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)
	q := addQuest(t, svc, "Old")

	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.UpdateQuest(ctx, q.ID, "New", &due)
	if err != nil {
		t.Fatalf("UpdateQuest: %v", err)
	}
	if got.Title != "New" || got.DueAt == nil || !got.DueAt.Equal(due) || got.XPValue != q.XPValue {
		t.Fatalf("updated=%+v", got)
	}
	if _, err := svc.UpdateQuest(ctx, q.ID, " ", nil); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("blank title err=%v", err)
	}
}

func TestThemeGating(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)

	err := svc.SetTheme(ctx, progression.ThemeZenGarden)
	var locked ThemeLockedError
	if !errors.As(err, &locked) {
		t.Fatalf("SetTheme locked err=%v, want ThemeLockedError", err)
	}
	if locked.RequiredLevel != 3 || locked.CurrentLevel != 1 {
		t.Fatalf("locked=%+v", locked)
	}
	if err := svc.SetTheme(ctx, "vaporwave"); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("unknown theme err=%v", err)
	}

	var last *CompleteResult
	for _, title := range []string{"A", "B", "C"} {
		q := addQuest(t, svc, title)
		res, err := svc.CompleteQuest(ctx, q.ID)
		if err != nil {
			t.Fatalf("CompleteQuest: %v", err)
		}
		last = res
	}
	if last.LevelAfter != 3 || len(last.NewThemes) != 1 || last.NewThemes[0] != progression.ThemeZenGarden {
		t.Fatalf("level 3 completion=%+v", last)
	}
	if last.ActiveTheme != progression.ThemeCyberpunk {
		t.Fatalf("active theme switched without opt-in: %s", last.ActiveTheme)
	}

	if err := svc.SetTheme(ctx, ParseTheme("Zen Garden")); err != nil {
		t.Fatalf("SetTheme after unlock: %v", err)
	}
	opts, err := svc.Themes(ctx)
	if err != nil {
		t.Fatalf("Themes: %v", err)
	}
	for _, o := range opts {
		switch o.Theme {
		case progression.ThemeZenGarden:
			if !o.Unlocked || !o.Active {
				t.Fatalf("zen option=%+v", o)
			}
		case progression.ThemeMinimalist:
			if o.Unlocked || o.RequiredLevel != 5 {
				t.Fatalf("minimalist option=%+v", o)
			}
		}
	}
}

func TestAutoSwitchTheme(t *testing.T) {
	svc := newTestService(t, Options{AutoSwitchTheme: true})
	ctx := context.Background()
	onboard(t, svc)

	q, err := svc.AddQuest(ctx, AddQuestInput{Title: "Big step", XPValue: 300})
	if err != nil {
		t.Fatalf("AddQuest: %v", err)
	}
	res, err := svc.CompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.ActiveTheme != progression.ThemeZenGarden {
		t.Fatalf("active theme=%s, want zen_garden", res.ActiveTheme)
	}
	h, err := svc.Hero(ctx)
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if h.Profile.ActiveTheme != progression.ThemeZenGarden {
		t.Fatalf("stored active theme=%s", h.Profile.ActiveTheme)
	}
}

func TestStoredLevelIsReconciledOnLoad(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)

	if err := svc.repos.Profiles.UpdateProgress(ctx, 600, 1, "cyberpunk"); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	h, err := svc.Hero(ctx)
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if h.Profile.Level != 4 || !h.Profile.HasTheme(progression.ThemeZenGarden) {
		t.Fatalf("reconciled profile=%+v", h.Profile)
	}
}

func TestGenerateBreakdown(t *testing.T) {
	gen := &fakeGenerator{text: "1. Research shoes | 1 week | Preparation\nnot a step\n- Run 5km | 1 month | Training\n"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, Options{
		Architect: ai.NewArchitect(gen, nil),
		Now:       func() time.Time { return now },
	})
	ctx := context.Background()
	onboard(t, svc)

	quests, err := svc.GenerateBreakdown(ctx)
	if err != nil {
		t.Fatalf("GenerateBreakdown: %v", err)
	}
	if len(quests) != 2 {
		t.Fatalf("quests=%d, want 2", len(quests))
	}
	if quests[0].Title != "Research shoes" || quests[0].Category != "Preparation" || quests[0].XPValue != DefaultQuestXP {
		t.Fatalf("first=%+v", quests[0])
	}
	want := now.Add(30 * 24 * time.Hour)
	if quests[1].DueAt == nil || !quests[1].DueAt.Equal(want) {
		t.Fatalf("second due=%v, want %v", quests[1].DueAt, want)
	}
	if quests[1].Description == nil || *quests[1].Description != "Duration: 1 month" {
		t.Fatalf("second description=%v", quests[1].Description)
	}
}

func TestGenerateBreakdownWithoutAI(t *testing.T) {
	svc := newTestService(t, Options{})
	onboard(t, svc)

	quests, err := svc.GenerateBreakdown(context.Background())
	if err != nil {
		t.Fatalf("GenerateBreakdown: %v", err)
	}
	if len(quests) != 0 {
		t.Fatalf("quests=%d, want none without a generator", len(quests))
	}
}

func TestDashboardRefreshesQuoteDaily(t *testing.T) {
	gen := &fakeGenerator{text: `"Stride on."`}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := newTestService(t, Options{
		Motivator: ai.NewMotivator(gen, nil),
		Now:       func() time.Time { return now },
	})
	ctx := context.Background()
	onboard(t, svc)
	q := addQuest(t, svc, "Late one")
	past := now.Add(-time.Hour)
	if _, err := svc.UpdateQuest(ctx, q.ID, q.Title, &past); err != nil {
		t.Fatalf("UpdateQuest: %v", err)
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Hero.DailyQuote != "Stride on." {
		t.Fatalf("quote=%q", d.Hero.DailyQuote)
	}
	if len(d.Quests) != 1 || !d.Quests[0].Overdue {
		t.Fatalf("quests=%+v", d.Quests)
	}

	now = now.Add(4 * time.Hour)
	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard same day: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls=%d, want 1 on the same day", gen.calls)
	}

	now = now.Add(24 * time.Hour)
	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard next day: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("generator calls=%d, want 2 after a day", gen.calls)
	}
}

func TestExportAndReset(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)
	q := addQuest(t, svc, "A")
	if _, err := svc.CompleteQuest(ctx, q.ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	data, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if data.ID == "" || data.Hero == nil || data.Hero.XP != 100 {
		t.Fatalf("export=%+v hero=%+v", data, data.Hero)
	}
	if len(data.Quests) != 2 || len(data.Ledger) != 1 || data.Ledger[0].QuestID != q.ID {
		t.Fatalf("quests=%d ledger=%+v", len(data.Quests), data.Ledger)
	}

	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := svc.Hero(ctx); !errors.Is(err, ErrNotOnboarded) {
		t.Fatalf("Hero after reset err=%v", err)
	}
	empty, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export after reset: %v", err)
	}
	if empty.Hero != nil || len(empty.Quests) != 0 || len(empty.Ledger) != 0 {
		t.Fatalf("export after reset=%+v", empty)
	}
	onboard(t, svc)
}

func TestAchievements(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()
	onboard(t, svc)
	q := addQuest(t, svc, "Only step")
	if _, err := svc.CompleteQuest(ctx, q.ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	list, err := svc.Achievements(ctx)
	if err != nil {
		t.Fatalf("Achievements: %v", err)
	}
	earned := map[string]bool{}
	for _, a := range list {
		earned[a.ID] = a.Earned
	}
	if !earned["first_quest"] || !earned["legend"] {
		t.Fatalf("earned=%v", earned)
	}
	if earned["getting_started"] || earned["collector"] {
		t.Fatalf("earned too much=%v", earned)
	}
}
