package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"questlog/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show hero level, XP, themes and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := svc.Hero(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			theme := string(h.Profile.ActiveTheme)

			card := []string{
				ui.ThemedHeading(theme, ui.IconSparkle, h.Name),
				ui.LabelValue("Level", h.Profile.Level),
			}
			if h.Progress.MaxedOut {
				card = append(card, ui.LabelValue("Total XP", fmt.Sprintf("%d (max level)", h.Profile.TotalXP)))
			} else {
				next := h.Profile.TotalXP - h.Progress.Current + h.Progress.Span
				card = append(card, ui.LabelValue("Total XP", fmt.Sprintf("%d (next level at %d, %d to go)", h.Profile.TotalXP, next, next-h.Profile.TotalXP)))
			}
			card = append(card, ui.XPBar(h.Progress.Percent, 30))
			if h.DailyQuote != "" {
				card = append(card, ui.Muted.Render("“"+h.DailyQuote+"”"))
			}
			fmt.Fprintln(out, ui.Panel.Render(strings.Join(card, "\n")))
			fmt.Fprintln(out, "")

			if main, err := svc.MainQuest(ctx); err == nil {
				pct, err := svc.MainProgress(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.PanelTitle.Render(ui.IconMain+" Main Quest"))
				fmt.Fprintf(out, "- %s %s\n", main.Title, ui.Muted.Render(fmt.Sprintf("(%d%%)", pct)))
				fmt.Fprintln(out, "")
			}

			themes, err := svc.Themes(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconPalette+" Themes"))
			for _, t := range themes {
				label := ui.ThemeLabel(string(t.Theme))
				switch {
				case t.Active:
					fmt.Fprintf(out, "- %s %s\n", ui.Good.Render(label), ui.Muted.Render("(active)"))
				case t.Unlocked:
					fmt.Fprintf(out, "- %s\n", label)
				default:
					fmt.Fprintf(out, "- %s %s %s\n", ui.IconLock, ui.Muted.Render(label), ui.Muted.Render(fmt.Sprintf("(level %d)", t.RequiredLevel)))
				}
			}
			fmt.Fprintln(out, "")

			achievements, err := svc.Achievements(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Achievements"))
			for _, a := range achievements {
				if a.Earned {
					fmt.Fprintf(out, "- %s %s %s\n", a.Icon, ui.Gold.Render(a.Name), ui.Muted.Render(a.Description))
				} else {
					fmt.Fprintf(out, "- %s %s\n", ui.IconLock, ui.Muted.Render(a.Name+": "+a.Description))
				}
			}
			return nil
		},
	}
	return cmd
}
