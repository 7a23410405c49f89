package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	perrors "crypto-pulse/internal/errors"
)

// addPipelineCommands adds the data collection commands.
func addPipelineCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
}

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one full data collection cycle",
		Long: `Fetch news from all configured sources, annotate pending articles with AI
sentiment, and sync market data, exchange candles, chain TVL and forex bars.

Each time series is fetched incrementally from its last stored date. Sources
that are already up to date for today are skipped.`,
		Example: `  crypto-pulse run
  crypto-pulse run --timeout 10m
  crypto-pulse run --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Pipeline == nil {
				output.Error("Store not available, cannot run pipeline.")
				return fmt.Errorf("store not initialized")
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if !output.IsJSON() {
				color.Cyan("🛰  Running data collection cycle...")
			}

			res, err := app.Pipeline.Run(ctx)
			if err != nil {
				output.Error("Pipeline run failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}

			color.Green("✓ Cycle complete")
			table := NewTable(output, "Step", "Rows")
			table.AddRow("Articles saved", fmt.Sprintf("%d", res.ArticlesSaved))
			table.AddRow("Articles annotated", fmt.Sprintf("%d", res.ArticlesTagged))
			table.AddRow("Market data", fmt.Sprintf("%d", res.MarketRows))
			table.AddRow("Candles", fmt.Sprintf("%d", res.CandleRows))
			table.AddRow("Chain TVL", fmt.Sprintf("%d", res.TVLRows))
			table.AddRow("Forex", fmt.Sprintf("%d", res.ForexRows))
			table.Render()
			return nil
		},
	}

	cmd.Flags().Duration("timeout", 5*time.Minute, "overall cycle timeout")
	return cmd
}

func newAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <asset>",
		Short: "Refresh and report one tracked asset",
		Long: `Sync market data for a single tracked asset and show its sentiment
breakdown and latest market figures.

Unlike the full cycle, an up-to-date asset is still refreshed for the
current day.`,
		Example: `  crypto-pulse analyze bitcoin
  crypto-pulse analyze ethereum --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			if app.Pipeline == nil || app.Reporter == nil {
				output.Error("Store not available.")
				return fmt.Errorf("store not initialized")
			}

			name := args[0]
			assetID, ok := app.Config.AssetID(name)
			if !ok {
				output.Error("Unknown asset %q. Run 'crypto-pulse assets' to list tracked assets.", name)
				return fmt.Errorf("%w: asset %s is not tracked", perrors.ErrDataNotFound, name)
			}

			if !output.IsJSON() {
				color.Cyan("📈 Syncing market data for %s...", name)
			}

			rows, err := app.Pipeline.SyncAsset(ctx, assetID)
			if err != nil {
				output.Warning("Market data sync failed: %v", err)
			} else if !output.IsJSON() {
				output.Dim("Synced %d market rows", rows)
			}

			overview, err := app.Reporter.BuildOverview(ctx, map[string]string{name: assetID})
			if err != nil {
				output.Error("Building report failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(overview.Assets)
			}

			for _, rep := range overview.Assets {
				printAssetReport(output, rep)
			}
			return nil
		},
	}
}
