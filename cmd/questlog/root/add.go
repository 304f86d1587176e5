package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"questlog/internal/engine"
	"questlog/internal/ui"
)

func newAddCmd() *cobra.Command {
	var xp int
	var due string
	var category string
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a quest to the Main Quest",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			dueAt, err := parseDue(due)
			if err != nil {
				return err
			}
			q, err := svc.AddQuest(ctx, engine.AddQuestInput{
				Title:       strings.TrimSpace(args[0]),
				Category:    category,
				Description: description,
				DueAt:       dueAt,
				XPValue:     xp,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s\n", ui.IconPlus, ui.Key.Render(fmt.Sprintf("#%d", q.ID)), q.Title)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(fmt.Sprintf("reward %d XP, category %s", q.XPValue, q.Category)))
			return nil
		},
	}

	cmd.Flags().IntVar(&xp, "xp", 0, fmt.Sprintf("XP reward (default %d)", engine.DefaultQuestXP))
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category (default General)")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Description")
	return cmd
}
