package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// QuestLog terminal styles (CLI + TUI).

const (
	IconQuest   = "🗺️"
	IconMain    = "🎯"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconFire    = "🔥"
	IconPalette = "🎨"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconScroll  = "📜"
	IconLock    = "🔒"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

// themeAccents tint headings by the hero's active theme.
var themeAccents = map[string]lipgloss.Color{
	"cyberpunk":  lipgloss.Color("205"),
	"zen_garden": lipgloss.Color("108"),
	"minimalist": lipgloss.Color("252"),
}

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Done  = lipgloss.NewStyle().Strikethrough(true).Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

// ThemedHeading renders a heading in the accent color of theme.
func ThemedHeading(theme, icon, title string) string {
	c, ok := themeAccents[theme]
	if !ok {
		return Heading(icon, title)
	}
	if icon = strings.TrimSpace(icon); icon != "" {
		icon += " "
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func StatusText(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return Good.Render("completed")
	case "pending":
		return Warn.Render("pending")
	default:
		return Muted.Render(status)
	}
}

// QuestIcon picks the marker shown before a quest title.
func QuestIcon(completed, overdue bool) string {
	switch {
	case completed:
		return IconDone
	case overdue:
		return IconFire
	default:
		return IconQuest
	}
}

// ThemeLabel turns "zen_garden" into "Zen Garden".
func ThemeLabel(theme string) string {
	words := strings.Split(theme, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// XPBar draws a fixed-width bar for percent (0-100).
func XPBar(percent, width int) string {
	if width < 3 {
		width = 3
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + Gold.Render(strings.Repeat("#", filled)) + Muted.Render(strings.Repeat("-", width-filled)) + "]"
}
