package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"questlog/internal/engine"
	"questlog/internal/storage"
	"questlog/internal/ui"
)

// boardService is the slice of engine.Service the board needs.
type boardService interface {
	Hero(ctx context.Context) (*engine.Hero, error)
	MainQuest(ctx context.Context) (*storage.Quest, error)
	ListQuests(ctx context.Context) ([]engine.QuestItem, error)
	CompleteQuest(ctx context.Context, id int64) (*engine.CompleteResult, error)
	MoveQuest(ctx context.Context, id int64, index int) error
}

type boardModel struct {
	ctx context.Context
	svc boardService

	width  int
	height int

	hero   *engine.Hero
	main   *storage.Quest
	quests []engine.QuestItem

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	hero   *engine.Hero
	main   *storage.Quest
	quests []engine.QuestItem
	err    error
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

type movedMsg struct {
	id    int64
	index int
	err   error
}

func newBoardModel(ctx context.Context, svc boardService) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		h, err := m.svc.Hero(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		main, err := m.svc.MainQuest(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		quests, err := m.svc.ListQuests(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{hero: h, main: main, quests: quests}
	}
}

func (m boardModel) completeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteQuest(m.ctx, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) moveCmd(id int64, index int) tea.Cmd {
	return func() tea.Msg {
		err := m.svc.MoveQuest(m.ctx, id, index)
		return movedMsg{id: id, index: index, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.hero = msg.hero
		m.main = msg.main
		m.quests = msg.quests
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completionLog(msg.res)
		return m, m.loadCmd()
	case movedMsg:
		if msg.err != nil {
			m.lastLog = "Move failed: " + msg.err.Error()
			return m, nil
		}
		m.selected = msg.index
		m.lastLog = fmt.Sprintf("Moved quest %d to position %d.", msg.id, msg.index+1)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.quests)-1 {
				m.selected++
			}
			return m, nil
		case "shift+up", "K":
			return m.move(-1)
		case "shift+down", "J":
			return m.move(1)
		case "c", " ":
			q, ok := m.current()
			if !ok {
				return m, nil
			}
			if q.Status == "completed" {
				m.lastLog = "Already completed."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %d…", q.ID)
			return m, m.completeCmd(q.ID)
		}
	}
	return m, nil
}

func (m boardModel) move(delta int) (tea.Model, tea.Cmd) {
	q, ok := m.current()
	if !ok {
		return m, nil
	}
	to := m.selected + delta
	if to < 0 || to >= len(m.quests) {
		return m, nil
	}
	return m, m.moveCmd(q.ID, to)
}

func (m boardModel) current() (engine.QuestItem, bool) {
	if m.selected < 0 || m.selected >= len(m.quests) {
		return engine.QuestItem{}, false
	}
	return m.quests[m.selected], true
}

func (m *boardModel) clampSelection() {
	if m.selected >= len(m.quests) {
		m.selected = len(m.quests) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func completionLog(res *engine.CompleteResult) string {
	if res.AlreadyCompleted {
		return fmt.Sprintf("Quest %d was already completed.", res.QuestID)
	}
	s := fmt.Sprintf("Completed %q: +%d XP (level %d → %d)", res.Title, res.XPAwarded, res.LevelBefore, res.LevelAfter)
	if res.LevelUp {
		s += " " + ui.BadgeLevelUp
	}
	for _, t := range res.NewThemes {
		s += fmt.Sprintf(" %s %s unlocked", ui.IconPalette, ui.ThemeLabel(string(t)))
	}
	return s
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.hero == nil {
		return "QuestLog: loading…"
	}
	p := m.hero.Progress
	xp := fmt.Sprintf("XP %d", m.hero.Profile.TotalXP)
	if !p.MaxedOut {
		xp += fmt.Sprintf(" (%d/%d)", p.Current, p.Span)
	}
	title := fmt.Sprintf("QuestLog | %s | Level %d | %s %s", m.hero.Name, p.Level, xp, ui.XPBar(p.Percent, 30))
	return ui.ThemedHeading(string(m.hero.Profile.ActiveTheme), "", title)
}

func (m boardModel) renderSidebar() string {
	if m.hero == nil {
		return "Hero\n\nLoading…"
	}
	lines := []string{"Themes"}
	for _, t := range m.hero.Profile.UnlockedThemes {
		marker := "-"
		if t == m.hero.Profile.ActiveTheme {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %s", marker, ui.ThemeLabel(string(t))))
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- shift+↑/↓ or K/J: reorder")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	if m.main != nil {
		out = append(out, fmt.Sprintf("%s %s (%d%%)", ui.IconMain, m.main.Title, m.mainProgress()))
	}
	out = append(out, "")

	if len(m.quests) == 0 {
		out = append(out, "(no quests yet: add one with `questlog add`)")
		return strings.Join(out, "\n")
	}
	for i, q := range m.quests {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		title := q.Title
		switch {
		case i == m.selected:
			title = ui.SelectedRow.Render(title)
		case q.Status == "completed":
			title = ui.Done.Render(title)
		}
		due := ""
		if q.DueAt != nil {
			due = " due " + q.DueAt.Format("2006-01-02")
			if q.Overdue {
				due = ui.Bad.Render(due + " OVERDUE")
			}
		}
		out = append(out, fmt.Sprintf("%s%s %s (+%d XP)%s", cursor, ui.QuestIcon(q.Status == "completed", q.Overdue), title, q.XPValue, due))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func (m boardModel) mainProgress() int {
	if len(m.quests) == 0 {
		return 0
	}
	done := 0
	for _, q := range m.quests {
		if q.Status == "completed" {
			done++
		}
	}
	return done * 100 / len(m.quests)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
