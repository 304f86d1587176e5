package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"questlog/internal/config"
	"questlog/internal/ui"
)

const Version = "0.2.0"

var (
	cfg    config.Config
	logger = zap.NewNop()

	flagDB      string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "questlog",
	Short:         "QuestLog: turn one big goal into quests and level up",
	Long:          "QuestLog is a local-first goal tracker: pick a Main Quest, break it into quests, earn XP and unlock themes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if flagDB != "" {
			loaded.DBPath = flagDB
		}
		if flagVerbose {
			loaded.LogLevel = "debug"
		}
		cfg = loaded

		log, err := cfg.NewLogger()
		if err != nil {
			return err
		}
		logger = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default ~/.questlog.db)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newOnboardCmd(),
		newAddCmd(),
		newDoCmd(),
		newListCmd(),
		newMoveCmd(),
		newRmCmd(),
		newStatusCmd(),
		newThemeCmd(),
		newBreakdownCmd(),
		newExportCmd(),
		newResetCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
