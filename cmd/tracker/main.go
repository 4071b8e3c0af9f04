// Command tracker is a terminal client for quotes, news sentiment and
// portfolio valuations. It shares configuration and storage with the server.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-tracker/internal/api"
	"github.com/ndewijer/portfolio-tracker/internal/app"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/database"
	"github.com/ndewijer/portfolio-tracker/internal/logging"
	"github.com/ndewijer/portfolio-tracker/internal/version"
)

var (
	cfg      *config.Config
	db       *sql.DB
	services api.Services
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// offline commands run without config, database or services.
var offline = map[string]bool{"version": true, "help": true, "completion": true}

var rootCmd = &cobra.Command{
	Use:           "tracker",
	Short:         "Quotes, news sentiment and portfolio valuations from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if offline[cmd.Name()] {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		logging.InitWithWriter(os.Stderr, level, cfg.Logging.Format)

		if path, _ := cmd.Flags().GetString("db"); path != "" {
			cfg.Database.Path = path
		}
		db, err = database.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		services, err = app.NewServices(cfg, db, nil)
		return err
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db", "", "database path override")
	rootCmd.PersistentFlags().Bool("plain", false, "print markdown without terminal styling")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sentimentCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(refreshCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tracker %s\n", version.Version)
	},
}
