package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crypto-pulse/internal/report"
)

// addReportCommands adds the reporting commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newReportCmd(app))
}

func newReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show sentiment and market overview for all tracked assets",
		Example: `  crypto-pulse report
  crypto-pulse report --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if app.Reporter == nil {
				output.Error("Store not available.")
				return fmt.Errorf("store not initialized")
			}

			overview, err := app.Reporter.BuildOverview(ctx, app.Config.Tracking.Assets)
			if err != nil {
				output.Error("Building report failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(overview)
			}

			color.Cyan("📊 Crypto Pulse Overview")
			output.Dim("%d analyzed articles on record", overview.TotalAnalyzed)
			output.Println()

			table := NewTable(output, "Asset", "Pos", "Neg", "Neu", "Price", "Date")
			for _, rep := range overview.Assets {
				price := "-"
				date := "-"
				if rep.Date != "" {
					price = fmt.Sprintf("$%.2f", rep.Price)
					date = rep.Date
				}
				table.AddRow(
					rep.Name,
					fmt.Sprintf("%d", rep.Sentiment.Positive),
					fmt.Sprintf("%d", rep.Sentiment.Negative),
					fmt.Sprintf("%d", rep.Sentiment.Neutral),
					price,
					date,
				)
			}
			table.Render()

			if overview.Economic.Total() > 0 {
				output.Println()
				output.Bold("Economic Events")
				output.Printf("  Positive: %d  Negative: %d  Neutral: %d\n",
					overview.Economic.Positive, overview.Economic.Negative, overview.Economic.Neutral)
			}
			return nil
		},
	}
}

func printAssetReport(output *Output, rep report.AssetReport) {
	output.Bold("%s", rep.Name)
	if rep.Date != "" {
		output.Printf("  Price:        $%.2f (%s)\n", rep.Price, rep.Date)
		if rep.MarketCap >= 0 {
			output.Printf("  Market Cap:   $%.0f\n", rep.MarketCap)
		}
		if rep.TotalVolume >= 0 {
			output.Printf("  Volume (24h): $%.0f\n", rep.TotalVolume)
		}
	} else {
		output.Dim("  No market data stored yet")
	}

	output.Printf("  Sentiment:    %d positive, %d negative, %d neutral\n",
		rep.Sentiment.Positive, rep.Sentiment.Negative, rep.Sentiment.Neutral)

	if len(rep.Articles) > 0 {
		output.Println()
		output.Bold("Recent Articles")
		for _, a := range rep.Articles {
			output.Printf("  [%s] %s\n", output.SentimentString(a.Sentiment), a.Title)
			if a.Summary != "" && a.Summary != "N/A" {
				output.Dim("    %s", a.Summary)
			}
		}
	}
}
