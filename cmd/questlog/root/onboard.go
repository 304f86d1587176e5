package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"questlog/internal/engine"
	"questlog/internal/ui"
)

func newOnboardCmd() *cobra.Command {
	var heroName string
	var due string
	var suggest bool

	cmd := &cobra.Command{
		Use:   "onboard [goal]",
		Short: "Create your hero and Main Quest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			goal := ""
			if len(args) == 1 {
				goal = args[0]
			}
			if suggest {
				goal, err = svc.SuggestGoal(ctx, goal)
				if err != nil {
					return err
				}
				goal = strings.TrimSpace(goal)
			}
			if strings.TrimSpace(goal) == "" {
				return errors.New("goal is required (or pass --suggest)")
			}
			dueAt, err := parseDue(due)
			if err != nil {
				return err
			}

			main, err := svc.Onboard(ctx, engine.OnboardInput{Goal: goal, HeroName: heroName, DueAt: dueAt})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconMain, "Main Quest accepted"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Goal", main.Title))
			if main.DueAt != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Deadline", main.DueAt.Format(dateLayout)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Next: `questlog breakdown` or `questlog add <title>`."))
			return nil
		},
	}

	cmd.Flags().StringVarP(&heroName, "name", "n", "", "Hero name (default Hero)")
	cmd.Flags().StringVar(&due, "due", "", "Deadline (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Let the AI phrase (or pick) the goal")
	return cmd
}
