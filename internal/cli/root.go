// Package cli provides the command-line interface for the data pipeline.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"crypto-pulse/internal/analysis"
	"crypto-pulse/internal/config"
	"crypto-pulse/internal/ingest"
	"crypto-pulse/internal/logging"
	"crypto-pulse/internal/pipeline"
	"crypto-pulse/internal/report"
	"crypto-pulse/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-08-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Pipeline *pipeline.Pipeline
	Reporter *report.Reporter
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		app.Reporter = report.NewReporter(dataStore)
		app.Pipeline = pipeline.New(cfg, dataStore, logger, buildAdapters(cfg, logger))
		logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "crypto-pulse",
		Short: "Crypto Pulse - crypto news and market data pipeline",
		Long: `Crypto Pulse collects crypto news, market data, on-chain TVL and macro
indicators into a local SQLite database and annotates news with AI sentiment.

Each run is incremental: time series are fetched only from the last stored
date forward, and already seen articles are skipped.

Use 'crypto-pulse help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/crypto-pulse)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addPipelineCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addCoreCommands(rootCmd, app)

	return rootCmd
}

// buildAdapters wires the ingestion and annotation adapters from config.
// Sources whose credentials are missing stay nil and their steps are skipped.
func buildAdapters(cfg *config.Config, logger zerolog.Logger) pipeline.Options {
	opts := pipeline.Options{
		Market: ingest.NewCoinGeckoClient(),
		Candle: ingest.NewKucoinClient(),
		TVL:    ingest.NewDefiLlamaClient(logger),
	}

	if len(cfg.News.RSSFeeds) > 0 {
		opts.RSS = ingest.NewRSSClient(cfg.News.RSSFeeds, logger)
	}
	if cfg.Credentials.NewsAPI.APIKey != "" {
		opts.News = ingest.NewNewsAPIClient(cfg.Credentials.NewsAPI.APIKey, cfg.News.EconomicSources, cfg.News.PageSize)
	} else {
		logger.Debug().Msg("NewsAPI key not configured, keyword news disabled")
	}
	if cfg.Credentials.EODHD.APIKey != "" {
		opts.Forex = ingest.NewEODHDClient(cfg.Credentials.EODHD.APIKey)
	} else {
		logger.Debug().Msg("EODHD key not configured, forex sync disabled")
	}

	opts.AI = analysis.NewAnalyzer(
		cfg.Credentials.OpenAI.APIKey,
		cfg.AI.BaseURL,
		cfg.AI.Model,
		cfg.AI.MaxRetries,
		logger,
	)

	return opts
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAssetsCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Crypto Pulse v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func newAssetsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List tracked assets and symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config.Tracking)
			}

			output.Bold("Tracked Assets")
			table := NewTable(output, "Name", "Provider ID")
			for name, id := range app.Config.Tracking.Assets {
				table.AddRow(name, id)
			}
			table.Render()
			output.Println()

			output.Bold("Chains (TVL)")
			for _, chain := range app.Config.Tracking.Chains {
				output.Printf("  %s\n", chain)
			}
			output.Println()

			output.Bold("Exchange Symbols")
			for _, symbol := range app.Config.Tracking.ExchangeSymbols {
				output.Printf("  %s\n", symbol)
			}
			output.Println()

			output.Bold("Forex Symbols")
			for _, symbol := range app.Config.Tracking.ForexSymbols {
				output.Printf("  %s\n", symbol)
			}
			return nil
		},
	}
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Database")
	output.Printf("  Path:            %s\n", cfg.Database.Path)
	output.Println()

	output.Bold("Tracking")
	output.Printf("  Assets:          %d\n", len(cfg.Tracking.Assets))
	output.Printf("  Chains:          %d\n", len(cfg.Tracking.Chains))
	output.Printf("  Exchange Pairs:  %d\n", len(cfg.Tracking.ExchangeSymbols))
	output.Printf("  Forex Symbols:   %d\n", len(cfg.Tracking.ForexSymbols))
	output.Printf("  Default Window:  %d days\n", cfg.Tracking.DefaultWindowDays)
	output.Println()

	output.Bold("News")
	output.Printf("  RSS Feeds:       %d\n", len(cfg.News.RSSFeeds))
	output.Printf("  Page Size:       %d\n", cfg.News.PageSize)
	output.Println()

	output.Bold("AI")
	output.Printf("  Base URL:        %s\n", cfg.AI.BaseURL)
	output.Printf("  Model:           %s\n", cfg.AI.Model)
	output.Printf("  Max Retries:     %d\n", cfg.AI.MaxRetries)
	output.Printf("  Batch Limit:     %d\n", cfg.AI.BatchLimit)
}
