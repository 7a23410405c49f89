// Package report builds read-only summaries over the persisted data.
package report

import (
	"context"
	"sort"
	"strings"

	"crypto-pulse/internal/models"
	"crypto-pulse/internal/store"
)

// SentimentBreakdown counts analyzed articles per sentiment label.
type SentimentBreakdown struct {
	Positive int
	Negative int
	Neutral  int
}

// Total returns the number of articles counted.
func (b SentimentBreakdown) Total() int {
	return b.Positive + b.Negative + b.Neutral
}

// AssetReport is the per-asset slice of the overview.
type AssetReport struct {
	Name      string
	AssetID   string
	Sentiment SentimentBreakdown
	// Latest market figures; Date is empty when no market data exists yet.
	Date        string
	Price       float64
	MarketCap   float64
	TotalVolume float64
	// Recent articles mentioning the asset, newest first.
	Articles []models.Article
}

// Overview is a full snapshot of stored sentiment and market state.
type Overview struct {
	Assets        []AssetReport
	Economic      SentimentBreakdown
	TotalAnalyzed int
}

// Reporter builds overviews from a DataStore.
type Reporter struct {
	store store.DataStore
	// maxArticles caps the per-asset article list in the overview.
	maxArticles int
}

// NewReporter creates a reporter over the given store.
func NewReporter(st store.DataStore) *Reporter {
	return &Reporter{store: st, maxArticles: 5}
}

// BuildOverview assembles the report for the given tracked assets. Articles
// are attributed to an asset when its name appears in the title; one article
// can count toward several assets.
func (r *Reporter) BuildOverview(ctx context.Context, assets map[string]string) (*Overview, error) {
	articles, err := r.store.GetAllAnalyzedArticles(ctx)
	if err != nil {
		return nil, err
	}
	marketData, err := r.store.GetAllMarketData(ctx)
	if err != nil {
		return nil, err
	}

	latest := latestByAsset(marketData)

	overview := &Overview{TotalAnalyzed: len(articles)}
	for name, assetID := range assets {
		rep := AssetReport{Name: name, AssetID: assetID}

		for _, a := range articles {
			if !mentionsAsset(a.Title, name) {
				continue
			}
			tally(&rep.Sentiment, a.Sentiment)
			if len(rep.Articles) < r.maxArticles {
				rep.Articles = append(rep.Articles, a)
			}
		}

		if snap, ok := latest[assetID]; ok {
			rep.Date = snap.Date
			rep.Price = snap.Price
			rep.MarketCap = snap.MarketCap
			rep.TotalVolume = snap.TotalVolume
		}

		overview.Assets = append(overview.Assets, rep)
	}

	sort.Slice(overview.Assets, func(i, j int) bool {
		return overview.Assets[i].Name < overview.Assets[j].Name
	})

	for _, a := range articles {
		if a.Category == models.CategoryEconomicEvent {
			tally(&overview.Economic, a.Sentiment)
		}
	}

	return overview, nil
}

func tally(b *SentimentBreakdown, s models.Sentiment) {
	switch s {
	case models.SentimentPositive:
		b.Positive++
	case models.SentimentNegative:
		b.Negative++
	default:
		b.Neutral++
	}
}

// mentionsAsset matches the asset name case-insensitively; hyphenated names
// like "pudgy-penguins" also match their space-separated form.
func mentionsAsset(title, name string) bool {
	t := strings.ToLower(title)
	n := strings.ToLower(name)
	if strings.Contains(t, n) {
		return true
	}
	if strings.Contains(n, "-") {
		return strings.Contains(t, strings.ReplaceAll(n, "-", " "))
	}
	return false
}

// latestByAsset keeps the newest snapshot per asset. GetAllMarketData
// returns rows date ascending, so the last row per asset wins.
func latestByAsset(snapshots []models.MarketSnapshot) map[string]models.MarketSnapshot {
	latest := make(map[string]models.MarketSnapshot)
	for _, s := range snapshots {
		latest[s.AssetID] = s
	}
	return latest
}
