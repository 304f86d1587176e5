package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"questlog/internal/engine"
	"questlog/internal/storage"
)

func newTestBoard(t *testing.T, titles ...string) (boardModel, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := engine.NewService(db, engine.Options{})
	if _, err := svc.Onboard(ctx, engine.OnboardInput{Goal: "Write a Novel"}); err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	for _, title := range titles {
		if _, err := svc.AddQuest(ctx, engine.AddQuestInput{Title: title}); err != nil {
			t.Fatalf("AddQuest: %v", err)
		}
	}

	m := newBoardModel(ctx, svc)
	m = step(t, m, m.Init()())
	return m, svc
}

// step applies msg and runs follow-up commands until the model settles.
func step(t *testing.T, m boardModel, msg tea.Msg) boardModel {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(boardModel)
		if cmd == nil {
			break
		}
		msg = cmd()
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBoardLoadsMainQuest(t *testing.T) {
	m, _ := newTestBoard(t, "Outline", "Draft")

	if m.loading || m.err != nil {
		t.Fatalf("loading=%v err=%v", m.loading, m.err)
	}
	if len(m.quests) != 2 || m.main == nil || m.main.Title != "Write a Novel" {
		t.Fatalf("main=%v quests=%d", m.main, len(m.quests))
	}
	view := m.View()
	if !strings.Contains(view, "Write a Novel (0%)") || !strings.Contains(view, "Level 1") {
		t.Fatalf("view missing header or main quest:\n%s", view)
	}
}

func TestBoardCompleteAwardsXP(t *testing.T) {
	m, svc := newTestBoard(t, "Outline")

	m = step(t, m, key("c"))
	if !strings.Contains(m.lastLog, "+100 XP") {
		t.Fatalf("lastLog=%q", m.lastLog)
	}
	if m.quests[0].Status != "completed" {
		t.Fatalf("quest status=%s", m.quests[0].Status)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.lastLog != "Already completed." {
		t.Fatalf("repeat lastLog=%q", m.lastLog)
	}

	h, err := svc.Hero(context.Background())
	if err != nil {
		t.Fatalf("Hero: %v", err)
	}
	if h.Profile.TotalXP != 100 {
		t.Fatalf("xp=%d, want 100", h.Profile.TotalXP)
	}
}

func TestBoardReorder(t *testing.T) {
	m, _ := newTestBoard(t, "A", "B", "C")

	m = step(t, m, key("j"))
	m = step(t, m, key("j"))
	m = step(t, m, key("K"))

	var got []string
	for _, q := range m.quests {
		got = append(got, q.Title)
	}
	if strings.Join(got, ",") != "A,C,B" {
		t.Fatalf("order=%v, want A,C,B", got)
	}
	if m.selected != 1 {
		t.Fatalf("selected=%d, want 1", m.selected)
	}

	m = step(t, m, key("k"))
	m = step(t, m, key("K"))
	if m.selected != 0 {
		t.Fatalf("selected=%d after moving top quest up", m.selected)
	}
}
