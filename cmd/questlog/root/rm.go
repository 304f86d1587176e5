package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"questlog/internal/ui"
)

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a quest (earned XP is kept)",
		Args:    idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.DeleteQuest(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", ui.IconWarn, ui.Key.Render(fmt.Sprintf("#%d", id)))
			return nil
		},
	}
	return cmd
}
