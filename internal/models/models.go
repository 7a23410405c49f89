// Package models provides domain models for the data pipeline.
package models

import (
	"time"
)

// Sentiment is the AI-assigned sentiment label for an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Article categories beyond the tracked asset names.
const (
	CategoryEconomicEvent = "economic_event"
	CategoryGeneral       = "general"
)

// Article represents a news article fetched from one of the news sources.
// URL is the natural key: a second insert with the same URL is a silent no-op.
type Article struct {
	ID          int64
	Source      string
	Title       string
	URL         string
	PublishedAt string
	Category    string
	FetchedAt   time.Time

	// Annotation fields, empty until the article has been analyzed.
	Summary           string
	Sentiment         Sentiment
	Reasoning         string
	InvestmentFactors string
}

// Analyzed reports whether the article carries an AI annotation.
func (a Article) Analyzed() bool {
	return a.Summary != ""
}

// Annotation is the structured output of the AI analysis of an article title.
type Annotation struct {
	Summary           string    `json:"summary"`
	Sentiment         Sentiment `json:"sentiment"`
	Reasoning         string    `json:"reasoning"`
	InvestmentFactors string    `json:"investment_factors"`
}

// MarketSnapshot is one daily market data point for a tracked asset.
// Keyed by (AssetID, Date); a re-fetch for the same date overwrites.
type MarketSnapshot struct {
	AssetID     string
	Date        string // YYYY-MM-DD
	Price       float64
	MarketCap   float64
	TotalVolume float64
}

// Candle represents OHLCV data for one period of an exchange symbol.
// Keyed by (symbol, Timestamp) in the store; Timestamp is unix seconds.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// ChainTVL is a timestamped total-value-locked snapshot for a chain.
type ChainTVL struct {
	Chain     string
	Timestamp int64
	TVL       float64
}

// ForexBar is one daily bar for a forex symbol.
type ForexBar struct {
	Date          string // YYYY-MM-DD
	Open          float64
	High          float64
	Low           float64
	Close         float64
	AdjustedClose float64
	Volume        int64
}
