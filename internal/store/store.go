// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"crypto-pulse/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Articles
	SaveArticles(ctx context.Context, articles []models.Article) (int, error)
	GetUnprocessedArticles(ctx context.Context, limit int) ([]models.Article, error)
	UpdateArticleAnalysis(ctx context.Context, articleID int64, annotation models.Annotation) error

	// Time series
	SaveMarketData(ctx context.Context, snapshots []models.MarketSnapshot) (int, error)
	SaveHistoricalPrices(ctx context.Context, symbol string, candles []models.Candle) (int, error)
	SaveChainTVL(ctx context.Context, snapshots []models.ChainTVL) (int, error)
	SaveForexData(ctx context.Context, symbol string, bars []models.ForexBar) (int, error)

	// Incremental sync reads: the second return value reports whether any
	// row exists for the key.
	LatestMarketDate(ctx context.Context, assetID string) (string, bool, error)
	LatestCandleTime(ctx context.Context, symbol string) (int64, bool, error)
	LatestChainTVLTime(ctx context.Context, chain string) (int64, bool, error)
	LatestForexDate(ctx context.Context, symbol string) (string, bool, error)

	// Reporting reads
	GetAllAnalyzedArticles(ctx context.Context) ([]models.Article, error)
	GetAllMarketData(ctx context.Context) ([]models.MarketSnapshot, error)
	GetCandles(ctx context.Context, symbol string, from, to int64) ([]models.Candle, error)

	// Lifecycle
	Close() error
}
