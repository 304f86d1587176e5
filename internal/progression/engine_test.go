package progression

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func scenarioEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{
		LevelThresholds: map[int]int{1: 0, 2: 100, 3: 250, 4: 500, 5: 1000},
		ThemeUnlocks:    map[int]Theme{1: ThemeCyberpunk, 3: ThemeZenGarden, 5: ThemeMinimalist},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func pending(id int64, xp int) Quest {
	return Quest{ID: id, Title: "q", Status: StatusPending, XPValue: xp}
}

func TestLevelForBoundaries(t *testing.T) {
	e := scenarioEngine(t)
	cases := []struct {
		xp   int
		want int
	}{
		{-5, 1}, {0, 1}, {99, 1}, {100, 2}, {249, 2}, {250, 3}, {999, 4}, {1000, 5}, {50_000, 5},
	}
	for _, c := range cases {
		if got := e.LevelFor(c.xp); got != c.want {
			t.Fatalf("LevelFor(%d)=%d, want %d", c.xp, got, c.want)
		}
	}
}

func TestLevelForIsMonotonic(t *testing.T) {
	e := Default()
	prev := e.LevelFor(0)
	if prev < 1 {
		t.Fatalf("LevelFor(0)=%d, want >= 1", prev)
	}
	for xp := 1; xp <= 10_000; xp++ {
		got := e.LevelFor(xp)
		if got < prev {
			t.Fatalf("LevelFor(%d)=%d dropped below %d", xp, got, prev)
		}
		prev = got
	}
}

func TestUnlockedThemesAreMonotonic(t *testing.T) {
	e := Default()
	for a := 1; a <= e.MaxLevel(); a++ {
		for b := a; b <= e.MaxLevel(); b++ {
			sa, sb := e.UnlockedThemes(a), e.UnlockedThemes(b)
			for _, th := range sa {
				if !(Profile{UnlockedThemes: sb}).HasTheme(th) {
					t.Fatalf("theme %q unlocked at level %d but not at %d", th, a, b)
				}
			}
		}
	}
	if got := e.UnlockedThemes(2); !reflect.DeepEqual(got, []Theme{ThemeCyberpunk}) {
		t.Fatalf("UnlockedThemes(2)=%v", got)
	}
	if got := e.UnlockedThemes(5); !reflect.DeepEqual(got, []Theme{ThemeCyberpunk, ThemeZenGarden, ThemeMinimalist}) {
		t.Fatalf("UnlockedThemes(5)=%v", got)
	}
}

func TestAwardScenarios(t *testing.T) {
	e := scenarioEngine(t)
	p := e.NewProfile()
	if p.TotalXP != 0 || p.Level != 1 || !reflect.DeepEqual(p.UnlockedThemes, []Theme{ThemeCyberpunk}) {
		t.Fatalf("new profile=%+v", p)
	}

	p, res, err := e.Award(p, pending(1, 100))
	if err != nil {
		t.Fatalf("award 1: %v", err)
	}
	if p.TotalXP != 100 || p.Level != 2 || !res.LeveledUp || len(res.NewlyUnlocked) != 0 {
		t.Fatalf("after award 1: profile=%+v result=%+v", p, res)
	}

	p, res, err = e.Award(p, pending(2, 200))
	if err != nil {
		t.Fatalf("award 2: %v", err)
	}
	if p.TotalXP != 300 || p.Level != 3 || !res.LeveledUp {
		t.Fatalf("after award 2: profile=%+v result=%+v", p, res)
	}
	if !reflect.DeepEqual(res.NewlyUnlocked, []Theme{ThemeZenGarden}) {
		t.Fatalf("newly unlocked=%v, want [zen_garden]", res.NewlyUnlocked)
	}
	if p.ActiveTheme != ThemeCyberpunk {
		t.Fatalf("active theme changed to %q", p.ActiveTheme)
	}
}

func TestAwardRejectsNonPositiveXP(t *testing.T) {
	e := scenarioEngine(t)
	start := e.NewProfile()
	for _, xp := range []int{0, -10} {
		got, _, err := e.Award(start, pending(7, xp))
		if !errors.Is(err, ErrInvalidXPValue) {
			t.Fatalf("xp=%d: err=%v, want ErrInvalidXPValue", xp, err)
		}
		if !reflect.DeepEqual(got, start) {
			t.Fatalf("xp=%d: profile changed to %+v", xp, got)
		}
	}
}

func TestAwardIsIdempotentForCompletedQuest(t *testing.T) {
	e := scenarioEngine(t)
	q := pending(3, 150)

	p, _, err := e.Award(e.NewProfile(), q)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	q = Complete(q, time.Now())

	again, res, err := e.Award(p, q)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if res.XPDelta != 0 || res.LeveledUp || len(res.NewlyUnlocked) != 0 {
		t.Fatalf("second award result=%+v, want zero", res)
	}
	if !reflect.DeepEqual(again, p) {
		t.Fatalf("second award changed profile: %+v vs %+v", again, p)
	}
}

func TestAwardIgnoresStaleStoredLevel(t *testing.T) {
	e := scenarioEngine(t)
	stale := Profile{TotalXP: 0, Level: 5, UnlockedThemes: []Theme{ThemeCyberpunk}, ActiveTheme: ThemeCyberpunk}

	p, res, err := e.Award(stale, pending(1, 100))
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if p.Level != 2 || p.Level != e.LevelFor(p.TotalXP) {
		t.Fatalf("level=%d, want %d", p.Level, e.LevelFor(p.TotalXP))
	}
	if res.LevelBefore != 1 || res.LevelAfter != 2 || !res.LeveledUp {
		t.Fatalf("result=%+v, want 1 -> 2", res)
	}
	if len(res.NewlyUnlocked) != 0 || !reflect.DeepEqual(p.UnlockedThemes, []Theme{ThemeCyberpunk}) {
		t.Fatalf("themes=%v newly=%v, want only cyberpunk", p.UnlockedThemes, res.NewlyUnlocked)
	}
}

func TestAwardKeepsThemesUnlockedUnderStricterTable(t *testing.T) {
	loose := scenarioEngine(t)
	p, _, err := loose.Award(loose.NewProfile(), pending(1, 300))
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !p.HasTheme(ThemeZenGarden) {
		t.Fatalf("expected zen_garden after 300 xp")
	}

	strict := MustNewEngine(Config{
		LevelThresholds: map[int]int{1: 0, 2: 1000, 3: 5000},
		ThemeUnlocks:    map[int]Theme{1: ThemeCyberpunk, 3: ThemeZenGarden},
	})
	n := strict.Normalize(p)
	if n.Level != 1 {
		t.Fatalf("normalized level=%d, want 1", n.Level)
	}
	if !n.HasTheme(ThemeZenGarden) {
		t.Fatalf("zen_garden dropped after normalize: %v", n.UnlockedThemes)
	}
}

func TestCompleteIsOneWay(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := Complete(pending(1, 10), at)
	if q.Status != StatusCompleted || q.CompletedAt == nil || !q.CompletedAt.Equal(at) {
		t.Fatalf("complete=%+v", q)
	}
	again := Complete(q, at.Add(time.Hour))
	if !again.CompletedAt.Equal(at) {
		t.Fatalf("completed_at moved to %v", again.CompletedAt)
	}
}

func TestIsOverdue(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := due.Add(24 * time.Hour)

	q := pending(1, 100)
	if IsOverdue(q, later) {
		t.Fatalf("quest without due date reported overdue")
	}
	q.DueAt = &due
	if !IsOverdue(q, later) {
		t.Fatalf("past-due pending quest not overdue")
	}
	if IsOverdue(q, due) {
		t.Fatalf("quest due exactly now reported overdue")
	}
	done := Complete(q, later)
	if IsOverdue(done, later.Add(48*time.Hour)) {
		t.Fatalf("completed quest reported overdue")
	}
}

func TestLevelProgress(t *testing.T) {
	e := scenarioEngine(t)
	got := e.LevelProgress(175)
	want := Progress{Level: 2, Current: 75, Span: 150, Percent: 50}
	if got != want {
		t.Fatalf("LevelProgress(175)=%+v, want %+v", got, want)
	}
	maxed := e.LevelProgress(1200)
	if !maxed.MaxedOut || maxed.Level != 5 || maxed.Percent != 100 {
		t.Fatalf("LevelProgress(1200)=%+v", maxed)
	}
}
