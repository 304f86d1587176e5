package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"questlog/internal/ui"
)

func newListCmd() *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the Main Quest's quests in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			main, err := svc.MainQuest(ctx)
			if err != nil {
				return err
			}
			quests, err := svc.ListQuests(ctx)
			if err != nil {
				return err
			}
			pct, err := svc.MainProgress(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMain, fmt.Sprintf("%s (%d%%)", main.Title, pct)))
			if len(quests) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no quests yet)"))
				return nil
			}
			for i, q := range quests {
				if pendingOnly && q.Status != "pending" {
					continue
				}
				completed := q.Status == "completed"
				title := q.Title
				if completed {
					title = ui.Done.Render(title)
				}
				line := fmt.Sprintf("%2d. %s %s %s %s %s", i+1, ui.QuestIcon(completed, q.Overdue), ui.Key.Render(fmt.Sprintf("#%d", q.ID)), title, ui.Muted.Render(fmt.Sprintf("[%s, %d XP]", q.Category, q.XPValue)), ui.StatusText(q.Status))
				if q.DueAt != nil {
					due := "due " + q.DueAt.Format(dateLayout)
					if q.Overdue {
						line += " " + ui.Bad.Render(due+" (overdue)")
					} else {
						line += " " + ui.Muted.Render(due)
					}
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show pending quests")
	return cmd
}
