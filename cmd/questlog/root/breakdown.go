package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"questlog/internal/ui"
)

func newBreakdownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Ask the AI architect to split the Main Quest into quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			quests, err := svc.GenerateBreakdown(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(quests) == 0 {
				if !cfg.AIEnabled() {
					fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" AI unavailable: set GEMINI_API_KEY to enable breakdowns."))
				} else {
					fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" The architect returned no usable steps; try again."))
				}
				return nil
			}
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, fmt.Sprintf("%d quests added", len(quests))))
			for _, q := range quests {
				line := fmt.Sprintf("- %s %s %s", ui.Key.Render(fmt.Sprintf("#%d", q.ID)), q.Title, ui.Muted.Render("["+q.Category+"]"))
				if q.DueAt != nil {
					line += " " + ui.Muted.Render("due "+q.DueAt.Format(dateLayout))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	return cmd
}
