// Package cli provides the command-line interface for bidhunt.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/10thony/CobecDev-sub005/internal/config"
	"github.com/10thony/CobecDev-sub005/internal/db"
	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/hunt"
	"github.com/10thony/CobecDev-sub005/internal/llm"
	"github.com/10thony/CobecDev-sub005/internal/metrics"
	"github.com/10thony/CobecDev-sub005/internal/verify"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger and db client
	cfg       config.Config
	logger    *slog.Logger
	logCloser func() error
	dbClient  *db.Client

	// Lazy-initialized LLM model
	model *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bidhunt",
	Short: "Procurement lead hunting and tracking",
	Long: `Bidhunt finds government procurement opportunities with AI-driven hunts,
parks candidates for human review, and keeps accepted leads verified.

Hunts and verification runs execute as durable background jobs: progress
survives restarts, cancellation takes effect at unit boundaries, and a
paused hunt resumes once its review queue is worked off.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load config
		cfg = config.Load()
		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logCloser = config.SetupLogger(cfg.LogFile, level)

		// Connect to database
		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		// Initialize schema
		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Close database connection
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCloser != nil {
			_ = logCloser()
		}
	},
}

// newEngine wires a controller with both processors. requireLLM pulls up the
// model backend, which hunt jobs need and verification jobs do not.
func newEngine(ctx context.Context, requireLLM bool) (*engine.Controller, error) {
	if requireLLM && model == nil {
		var err error
		model, err = llm.NewModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init model: %w", err)
		}
	}

	ctrl := engine.NewController(dbClient, logger, metrics.NewCollector())
	if model != nil {
		ctrl.Register(hunt.NewProcessor(model, dbClient, logger))
	}
	ctrl.Register(verify.NewProcessor(dbClient, verify.NewChecker(cfg.VerifyTimeout, cfg.VerifyUserAgent), logger))
	return ctrl, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
