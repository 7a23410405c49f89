package ingest

import (
	"context"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"crypto-pulse/internal/models"
)

// RSSClient fetches articles from a fixed list of RSS feeds.
type RSSClient struct {
	feeds  []string
	parser *gofeed.Parser
	logger zerolog.Logger
}

// NewRSSClient creates a new RSS ingestion client.
func NewRSSClient(feeds []string, logger zerolog.Logger) *RSSClient {
	return &RSSClient{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		logger: logger.With().Str("source", "rss").Logger(),
	}
}

// FetchArticles pulls every configured feed and returns the union of their
// entries. A failing feed is logged and skipped; the others still contribute.
func (c *RSSClient) FetchArticles(ctx context.Context) []models.Article {
	var articles []models.Article

	for _, url := range c.feeds {
		feed, err := c.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			c.logger.Warn().Err(err).Str("feed", url).Msg("Failed to fetch RSS feed")
			continue
		}

		source := feed.Title
		if source == "" {
			source = url
		}

		for _, entry := range feed.Items {
			if entry.Link == "" {
				continue
			}
			articles = append(articles, models.Article{
				Source:      source,
				Title:       entry.Title,
				URL:         entry.Link,
				PublishedAt: entry.Published,
			})
		}

		c.logger.Debug().Str("feed", source).Int("entries", len(feed.Items)).Msg("Fetched RSS feed")
	}

	c.logger.Info().Int("articles", len(articles)).Msg("RSS fetch complete")
	return articles
}
