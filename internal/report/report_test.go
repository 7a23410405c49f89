package report

import (
	"context"
	"testing"

	"crypto-pulse/internal/models"
	"crypto-pulse/internal/store"
)

func seedStore(t *testing.T) store.DataStore {
	t.Helper()
	st, err := store.NewSQLiteStore(t.TempDir() + "/report_test.db")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()

	articles := []models.Article{
		{Title: "Bitcoin hits new high", URL: "https://example.com/1", PublishedAt: "2026-08-30", Category: models.CategoryGeneral},
		{Title: "Bitcoin miners under pressure", URL: "https://example.com/2", PublishedAt: "2026-08-29", Category: models.CategoryGeneral},
		{Title: "Ethereum upgrade ships", URL: "https://example.com/3", PublishedAt: "2026-08-28", Category: models.CategoryGeneral},
		{Title: "Rates held steady", URL: "https://example.com/4", PublishedAt: "2026-08-27", Category: models.CategoryEconomicEvent},
		{Title: "Unannotated story", URL: "https://example.com/5", PublishedAt: "2026-08-26", Category: models.CategoryGeneral},
	}
	if _, err := st.SaveArticles(ctx, articles); err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}

	sentiments := map[string]models.Sentiment{
		"https://example.com/1": models.SentimentPositive,
		"https://example.com/2": models.SentimentNegative,
		"https://example.com/3": models.SentimentPositive,
		"https://example.com/4": models.SentimentNeutral,
	}
	pending, err := st.GetUnprocessedArticles(ctx, 100)
	if err != nil {
		t.Fatalf("GetUnprocessedArticles failed: %v", err)
	}
	for _, a := range pending {
		sentiment, ok := sentiments[a.URL]
		if !ok {
			continue
		}
		if err := st.UpdateArticleAnalysis(ctx, a.ID, models.Annotation{
			Summary:           "Summary",
			Sentiment:         sentiment,
			Reasoning:         "N/A",
			InvestmentFactors: "None",
		}); err != nil {
			t.Fatalf("UpdateArticleAnalysis failed: %v", err)
		}
	}

	if _, err := st.SaveMarketData(ctx, []models.MarketSnapshot{
		{AssetID: "bitcoin", Date: "2026-08-29", Price: 99000, MarketCap: 1.9e12, TotalVolume: 4e10},
		{AssetID: "bitcoin", Date: "2026-08-30", Price: 100000, MarketCap: 2e12, TotalVolume: 5e10},
	}); err != nil {
		t.Fatalf("SaveMarketData failed: %v", err)
	}

	return st
}

func TestBuildOverview(t *testing.T) {
	st := seedStore(t)
	reporter := NewReporter(st)

	overview, err := reporter.BuildOverview(context.Background(), map[string]string{
		"bitcoin":  "bitcoin",
		"ethereum": "ethereum",
	})
	if err != nil {
		t.Fatalf("BuildOverview failed: %v", err)
	}

	if overview.TotalAnalyzed != 4 {
		t.Errorf("Expected 4 analyzed articles, got %d", overview.TotalAnalyzed)
	}
	if len(overview.Assets) != 2 {
		t.Fatalf("Expected 2 asset reports, got %d", len(overview.Assets))
	}

	// Sorted by name: bitcoin then ethereum.
	btc := overview.Assets[0]
	if btc.Name != "bitcoin" {
		t.Fatalf("Expected bitcoin first, got %s", btc.Name)
	}
	if btc.Sentiment.Positive != 1 || btc.Sentiment.Negative != 1 || btc.Sentiment.Neutral != 0 {
		t.Errorf("Unexpected bitcoin sentiment breakdown: %+v", btc.Sentiment)
	}
	if btc.Date != "2026-08-30" || btc.Price != 100000 {
		t.Errorf("Expected latest snapshot 2026-08-30 @ 100000, got %s @ %v", btc.Date, btc.Price)
	}
	if len(btc.Articles) != 2 {
		t.Errorf("Expected 2 bitcoin articles, got %d", len(btc.Articles))
	}

	eth := overview.Assets[1]
	if eth.Sentiment.Total() != 1 {
		t.Errorf("Expected 1 ethereum article, got %d", eth.Sentiment.Total())
	}
	if eth.Date != "" {
		t.Errorf("Expected no market data for ethereum, got %s", eth.Date)
	}

	if overview.Economic.Total() != 1 || overview.Economic.Neutral != 1 {
		t.Errorf("Unexpected economic breakdown: %+v", overview.Economic)
	}
}

func TestMentionsAsset(t *testing.T) {
	cases := []struct {
		title string
		name  string
		want  bool
	}{
		{"Bitcoin hits new high", "bitcoin", true},
		{"BITCOIN futures expire", "bitcoin", true},
		{"Ethereum upgrade ships", "bitcoin", false},
		{"Pudgy Penguins floor rises", "pudgy-penguins", true},
		{"pudgy-penguins volume spikes", "pudgy-penguins", true},
	}
	for _, c := range cases {
		if got := mentionsAsset(c.title, c.name); got != c.want {
			t.Errorf("mentionsAsset(%q, %q) = %v, want %v", c.title, c.name, got, c.want)
		}
	}
}
