package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/config"
	"github.com/abhisek/examiz/internal/logging"
	"github.com/abhisek/examiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examiz",
	Short: "AI-assisted exam authoring and timed delivery",
	Long: "Examiz generates exams with an LLM, delivers them as timed sessions with a\n" +
		"per-student question order, and scores the results.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = config.Load().LogLevel
		}
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		logger = logging.Setup(lvl)
		logLevel = lvl
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

var (
	logger   = slog.Default()
	logLevel = slog.LevelInfo
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite file path (overrides EXAMIZ_DB_DSN)")
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver: sqlite or postgres (overrides EXAMIZ_DB_DRIVER)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides EXAMIZ_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("as", "", "Acting user ID (overrides EXAMIZ_USER)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDB returns the driver and DSN using the --db-driver and --db
// flags first, then EXAMIZ_DB_DRIVER and EXAMIZ_DB_DSN, then the default
// SQLite path.
func resolveDB(cmd *cobra.Command) (driver, dsn string, err error) {
	cfg := config.Load()
	driver, dsn = cfg.DBDriver, cfg.DBDSN
	if d, _ := cmd.Flags().GetString("db-driver"); d != "" {
		driver = d
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		dsn = p
		if driver == store.DriverSQLite {
			return driver, dsn, store.EnsureDir(p)
		}
		return driver, dsn, nil
	}
	if dsn != "" {
		return driver, dsn, nil
	}
	if driver != store.DriverSQLite {
		return "", "", fmt.Errorf("%s needs a DSN: set --db or EXAMIZ_DB_DSN", driver)
	}
	dsn, err = store.DefaultDBPath()
	return driver, dsn, err
}

// actingUser returns the --as flag, falling back to EXAMIZ_USER.
func actingUser(cmd *cobra.Command) (string, error) {
	if u, _ := cmd.Flags().GetString("as"); u != "" {
		return u, nil
	}
	if u := config.Load().User; u != "" {
		return u, nil
	}
	return "", fmt.Errorf("no user given: pass --as or set EXAMIZ_USER")
}
