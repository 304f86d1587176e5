package root

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"questlog/internal/ui"
)

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a quest to a position (1-based) in the sequence",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("id and position are required")
			}
			if _, err := parseID(args[0]); err != nil {
				return err
			}
			if n, err := strconv.Atoi(args[1]); err != nil || n < 1 {
				return errors.New("position must be a positive integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			pos, _ := strconv.Atoi(args[1])

			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.MoveQuest(ctx, id, pos-1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Moved %s\n", ui.IconScroll, ui.Key.Render(fmt.Sprintf("#%d", id)))
			return nil
		},
	}
	return cmd
}
