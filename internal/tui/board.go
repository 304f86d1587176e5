package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"questlog/internal/engine"
)

// RunBoard opens the interactive board for the main quest.
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer) error {
	m := newBoardModel(ctx, svc)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
