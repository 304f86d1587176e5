package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"questlog/internal/engine"
	"questlog/internal/ui"
)

func newThemeCmd() *cobra.Command {
	var heroName string

	cmd := &cobra.Command{
		Use:   "theme [name]",
		Short: "List themes, or switch to an unlocked one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if len(args) == 0 && heroName == "" {
				themes, err := svc.Themes(ctx)
				if err != nil {
					return err
				}
				for _, t := range themes {
					state := ui.Muted.Render(fmt.Sprintf("locked until level %d", t.RequiredLevel))
					if t.Active {
						state = ui.Good.Render("active")
					} else if t.Unlocked {
						state = "unlocked"
					}
					fmt.Fprintf(out, "- %-12s %s\n", t.Theme, state)
				}
				return nil
			}

			h, err := svc.Hero(ctx)
			if err != nil {
				return err
			}
			theme := h.Profile.ActiveTheme
			if len(args) == 1 {
				theme = engine.ParseTheme(args[0])
			}
			name := h.Name
			if heroName != "" {
				name = heroName
			}

			err = svc.UpdateSettings(ctx, name, theme)
			var locked engine.ThemeLockedError
			if errors.As(err, &locked) {
				return fmt.Errorf("%s %w", ui.IconLock, locked)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Theme %s, hero %s\n", ui.IconPalette, ui.Good.Render(ui.ThemeLabel(string(theme))), name)
			return nil
		},
	}

	cmd.Flags().StringVar(&heroName, "name", "", "Rename the hero")
	return cmd
}
