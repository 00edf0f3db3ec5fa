package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memoryjournal/internal/config"
	"memoryjournal/internal/db"
)

var rootCmd = &cobra.Command{
	Use:           "memoryjournal",
	Short:         "Personal journaling API with mood analytics and reminders",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations, the HTTP API and the reminder scheduler",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		conn, err := db.Open(cmd.Context(), cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBConnLifetime)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := db.RunMigrations(cmd.Context(), conn); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		logger.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// setup loads configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}
	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
