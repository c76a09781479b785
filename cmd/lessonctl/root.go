package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/vytor/lessonflow/internal/config"
	"github.com/vytor/lessonflow/internal/content"
	"github.com/vytor/lessonflow/internal/db"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/repository/sqlite"
	"github.com/vytor/lessonflow/internal/services"
	"github.com/vytor/lessonflow/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "lessonctl",
	Short:         "Inspect and repair learner progress",
	Long:          "lessonctl reads and adjusts the progress database used by the lessonflow server.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		logger.SetDefault(logger.New(
			logger.WithLevel(logger.ParseLevel(level)),
			logger.WithOutput(cmd.ErrOrStderr()),
		))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DB_PATH)")
	rootCmd.PersistentFlags().String("log-level", "WARN", "Log level written to stderr")

	rootCmd.AddCommand(rollupCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(migrationsCmd)
}

type deps struct {
	cfg      config.Config
	db       *db.DB
	source   content.Source
	store    store.ProgressStore
	progress services.ProgressService
}

// openDeps resolves configuration, letting --db win over DB_PATH, and opens
// the progress database.
func openDeps(cmd *cobra.Command) (*deps, error) {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	ps := store.New(sqlite.NewKVStore(database.DB))
	source := content.New(cfg.ContentAPIURL, cfg.ContentAPITimeout)

	return &deps{
		cfg:      cfg,
		db:       database,
		source:   source,
		store:    ps,
		progress: services.NewProgressService(source, ps, cfg.WeekStart, nil),
	}, nil
}

func (d *deps) Close() {
	d.db.Close()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
