package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parcelforge/parcelforge/internal/audit"
	"github.com/parcelforge/parcelforge/internal/core/config"
	"github.com/parcelforge/parcelforge/internal/core/db"
)

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "parcelforge",
	Short: "ParcelForge shipping payload mapping toolkit",
	Long: `ParcelForge compiles record filters into SQL predicates, validates mapping
templates against carrier payload schemas, and repairs failing templates
through a bounded self-correction loop.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds a zap logger from the persistent logging flags.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	switch logFormat {
	case "json":
	case "text":
		cfg.Encoding = "console"
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or text)", logFormat)
	}

	return cfg.Build()
}

// effectiveDBURL resolves the audit store URL: flag over config.
func effectiveDBURL(cfg *config.Config) string {
	if dbURL != "" {
		return dbURL
	}
	return cfg.DB.URL
}

// openStore connects to the audit store. The returned cleanup closes the
// underlying connection.
func openStore(cfg *config.Config) (*audit.Store, func(), error) {
	database, err := db.Open(effectiveDBURL(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}

	return audit.NewStore(queries), func() { database.Close() }, nil
}
