package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"questlog/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a quest and collect its XP",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CompleteQuest(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.AlreadyCompleted {
				fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%s Quest #%d was already completed; no XP awarded.", ui.IconInfo, id)))
				return nil
			}
			fmt.Fprintf(out, "%s %s %s\n", ui.IconDone, res.Title, ui.Gold.Render(fmt.Sprintf("+%d XP", res.XPAwarded)))
			fmt.Fprintln(out, ui.LabelValue("Total XP", res.TotalXP))
			if res.LevelUp {
				fmt.Fprintf(out, "%s %s level %d → %d\n", ui.IconTrophy, ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter)
			}
			for _, t := range res.NewThemes {
				fmt.Fprintf(out, "%s Theme unlocked: %s\n", ui.IconPalette, ui.Good.Render(ui.ThemeLabel(string(t))))
			}
			fmt.Fprintln(out, ui.LabelValue("Main Quest", fmt.Sprintf("%d%%", res.MainProgress)))
			return nil
		},
	}
	return cmd
}
