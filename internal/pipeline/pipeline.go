// Package pipeline orchestrates the ingestion, annotation and persistence
// cycle across all configured data sources.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"crypto-pulse/internal/config"
	"crypto-pulse/internal/logging"
	"crypto-pulse/internal/models"
	"crypto-pulse/internal/store"
)

// RSSSource fetches articles from the configured RSS feeds. Per-feed failures
// are handled inside the adapter; an empty slice means nothing new.
type RSSSource interface {
	FetchArticles(ctx context.Context) []models.Article
}

// NewsSource fetches keyword-filtered articles from the news API.
type NewsSource interface {
	FetchGeneralNews(ctx context.Context, keywords []string) ([]models.Article, error)
	FetchEconomicNews(ctx context.Context, keywords []string) ([]models.Article, error)
}

// MarketSource fetches daily market history for an asset, days deep.
type MarketSource interface {
	FetchHistoricalData(ctx context.Context, assetID string, days int) ([]models.MarketSnapshot, error)
}

// CandleSource fetches daily OHLCV candles for an exchange symbol.
type CandleSource interface {
	FetchCandles(ctx context.Context, symbol string, startAt, endAt int64) ([]models.Candle, error)
}

// TVLSource fetches the latest TVL snapshot per chain. Per-chain failures are
// handled inside the adapter.
type TVLSource interface {
	FetchChainTVL(ctx context.Context, chains []string) []models.ChainTVL
}

// ForexSource fetches daily forex bars for a symbol between two dates.
type ForexSource interface {
	FetchForexData(ctx context.Context, symbol, fromDate, toDate string) ([]models.ForexBar, error)
}

// Annotator produces an AI annotation for one article title.
type Annotator interface {
	AnalyzeTitle(ctx context.Context, title string, isEconomic bool) (*models.Annotation, error)
}

// Pipeline runs the full data collection cycle. Each step is isolated: a
// failing source is logged and skipped so the remaining sources still run.
type Pipeline struct {
	cfg     *config.Config
	store   store.DataStore
	planner *store.SyncPlanner
	logger  zerolog.Logger

	rss    RSSSource
	news   NewsSource
	market MarketSource
	candle CandleSource
	tvl    TVLSource
	forex  ForexSource
	ai     Annotator

	now func() time.Time
}

// Options bundles the adapters wired into a pipeline. Nil adapters disable
// their step.
type Options struct {
	RSS    RSSSource
	News   NewsSource
	Market MarketSource
	Candle CandleSource
	TVL    TVLSource
	Forex  ForexSource
	AI     Annotator

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// New creates a pipeline over the given store and adapters.
func New(cfg *config.Config, st store.DataStore, logger zerolog.Logger, opts Options) *Pipeline {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		planner: store.NewSyncPlanner(st, nowFn),
		logger:  logger.With().Str("component", "pipeline").Logger(),
		rss:     opts.RSS,
		news:    opts.News,
		market:  opts.Market,
		candle:  opts.Candle,
		tvl:     opts.TVL,
		forex:   opts.Forex,
		ai:      opts.AI,
		now:     nowFn,
	}
}

// Result summarizes one pipeline run.
type Result struct {
	ArticlesSaved  int
	ArticlesTagged int
	MarketRows     int
	CandleRows     int
	TVLRows        int
	ForexRows      int
}

// Run executes one full cycle: news collection, annotation, then the four
// time series syncs. It always runs every enabled step; errors are logged
// per step and never abort the cycle.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := p.now()
	p.logger.Info().Msg("Starting pipeline cycle")

	res := &Result{}
	res.ArticlesSaved = p.runNews(ctx)
	res.ArticlesTagged = p.runAnnotation(ctx)
	res.MarketRows = p.runMarketData(ctx)
	res.CandleRows = p.runCandles(ctx)
	res.TVLRows = p.runChainTVL(ctx)
	res.ForexRows = p.runForex(ctx)

	p.logger.Info().
		Dur("elapsed", p.now().Sub(started)).
		Int("articles_saved", res.ArticlesSaved).
		Int("articles_tagged", res.ArticlesTagged).
		Int("market_rows", res.MarketRows).
		Int("candle_rows", res.CandleRows).
		Int("tvl_rows", res.TVLRows).
		Int("forex_rows", res.ForexRows).
		Msg("Pipeline cycle complete")
	return res, nil
}

// SyncAsset refreshes market data for a single asset, flooring the warm
// window to one day so an up-to-date asset still gets a same-day refresh.
func (p *Pipeline) SyncAsset(ctx context.Context, assetID string) (int, error) {
	if p.market == nil {
		return 0, nil
	}

	days, err := p.planner.MarketWindowMin1(ctx, assetID, p.cfg.Tracking.DefaultWindowDays)
	if err != nil {
		return 0, err
	}

	snapshots, err := p.market.FetchHistoricalData(ctx, assetID, days)
	if err != nil {
		return 0, err
	}
	return p.store.SaveMarketData(ctx, snapshots)
}

func (p *Pipeline) runNews(ctx context.Context) int {
	var articles []models.Article

	if p.rss != nil {
		fetched := p.rss.FetchArticles(ctx)
		log := logging.WithSource(p.logger, "rss")
		log.Debug().Int("count", len(fetched)).Msg("Articles fetched")
		articles = append(articles, fetched...)
	}

	if p.news != nil {
		log := logging.WithSource(p.logger, "newsapi")

		general, err := p.news.FetchGeneralNews(ctx, p.cfg.News.GeneralKeywords)
		if err != nil {
			log.Error().Err(err).Msg("General news fetch failed")
		} else {
			articles = append(articles, general...)
		}

		economic, err := p.news.FetchEconomicNews(ctx, p.cfg.News.EconomicKeywords)
		if err != nil {
			log.Error().Err(err).Msg("Economic news fetch failed")
		} else {
			articles = append(articles, economic...)
		}
	}

	if len(articles) == 0 {
		return 0
	}

	saved, err := p.store.SaveArticles(ctx, dedupeByURL(articles))
	if err != nil {
		p.logger.Error().Err(err).Msg("Saving articles failed")
		return 0
	}

	logging.LogSaved(p.logger, "news", len(articles), saved)
	return saved
}

func (p *Pipeline) runAnnotation(ctx context.Context) int {
	if p.ai == nil {
		return 0
	}

	pending, err := p.store.GetUnprocessedArticles(ctx, p.cfg.AI.BatchLimit)
	if err != nil {
		p.logger.Error().Err(err).Msg("Loading unprocessed articles failed")
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	tagged := 0
	for _, article := range pending {
		isEconomic := article.Category == models.CategoryEconomicEvent
		annotation, err := p.ai.AnalyzeTitle(ctx, article.Title, isEconomic)
		if err != nil {
			p.logger.Warn().Err(err).Str("title", article.Title).Msg("Annotation failed, leaving article for next cycle")
			continue
		}
		if annotation == nil {
			p.logger.Debug().Str("title", article.Title).Msg("Model produced no usable annotation")
			continue
		}
		if err := p.store.UpdateArticleAnalysis(ctx, article.ID, *annotation); err != nil {
			p.logger.Error().Err(err).Int64("article_id", article.ID).Msg("Persisting annotation failed")
			continue
		}
		logging.LogAnnotation(p.logger, article.ID, string(annotation.Sentiment))
		tagged++
	}

	p.logger.Info().Int("pending", len(pending)).Int("tagged", tagged).Msg("Annotation step complete")
	return tagged
}

func (p *Pipeline) runMarketData(ctx context.Context) int {
	if p.market == nil {
		return 0
	}

	total := 0
	for name, assetID := range p.cfg.Tracking.Assets {
		log := logging.WithAsset(p.logger, name)

		days, err := p.planner.MarketWindow(ctx, assetID, p.cfg.Tracking.DefaultWindowDays)
		if err != nil {
			log.Error().Err(err).Msg("Planning market window failed")
			continue
		}
		if days == store.Skip {
			log.Debug().Msg("Market data up to date, skipping")
			continue
		}

		snapshots, err := p.market.FetchHistoricalData(ctx, assetID, days)
		if err != nil {
			log.Error().Err(err).Int("days", days).Msg("Market data fetch failed")
			continue
		}

		saved, err := p.store.SaveMarketData(ctx, snapshots)
		if err != nil {
			log.Error().Err(err).Msg("Saving market data failed")
			continue
		}
		logging.LogSaved(log, "market", len(snapshots), saved)
		total += saved
	}
	return total
}

func (p *Pipeline) runCandles(ctx context.Context) int {
	if p.candle == nil {
		return 0
	}

	total := 0
	for _, symbol := range p.cfg.Tracking.ExchangeSymbols {
		log := p.logger.With().Str("symbol", symbol).Logger()

		days, err := p.planner.CandleWindow(ctx, symbol, p.cfg.Tracking.DefaultWindowDays)
		if err != nil {
			log.Error().Err(err).Msg("Planning candle window failed")
			continue
		}
		if days == store.Skip {
			log.Debug().Msg("Candles up to date, skipping")
			continue
		}

		end := p.now()
		start := end.AddDate(0, 0, -days)
		candles, err := p.candle.FetchCandles(ctx, symbol, start.Unix(), end.Unix())
		if err != nil {
			log.Error().Err(err).Int("days", days).Msg("Candle fetch failed")
			continue
		}

		saved, err := p.store.SaveHistoricalPrices(ctx, symbol, candles)
		if err != nil {
			log.Error().Err(err).Msg("Saving candles failed")
			continue
		}
		logging.LogSaved(log, "candles", len(candles), saved)
		total += saved
	}
	return total
}

func (p *Pipeline) runChainTVL(ctx context.Context) int {
	if p.tvl == nil || len(p.cfg.Tracking.Chains) == 0 {
		return 0
	}

	snapshots := p.tvl.FetchChainTVL(ctx, p.cfg.Tracking.Chains)
	if len(snapshots) == 0 {
		return 0
	}

	saved, err := p.store.SaveChainTVL(ctx, snapshots)
	if err != nil {
		p.logger.Error().Err(err).Msg("Saving chain TVL failed")
		return 0
	}
	logging.LogSaved(p.logger, "tvl", len(snapshots), saved)
	return saved
}

func (p *Pipeline) runForex(ctx context.Context) int {
	if p.forex == nil {
		return 0
	}

	total := 0
	for _, symbol := range p.cfg.Tracking.ForexSymbols {
		log := p.logger.With().Str("symbol", symbol).Logger()

		days, err := p.planner.ForexWindow(ctx, symbol, p.cfg.Tracking.DefaultWindowDays)
		if err != nil {
			log.Error().Err(err).Msg("Planning forex window failed")
			continue
		}
		if days == store.Skip {
			log.Debug().Msg("Forex data up to date, skipping")
			continue
		}

		to := p.now()
		from := to.AddDate(0, 0, -days)
		bars, err := p.forex.FetchForexData(ctx, symbol, from.Format(store.DateLayout), to.Format(store.DateLayout))
		if err != nil {
			log.Error().Err(err).Int("days", days).Msg("Forex fetch failed")
			continue
		}

		saved, err := p.store.SaveForexData(ctx, symbol, bars)
		if err != nil {
			log.Error().Err(err).Msg("Saving forex data failed")
			continue
		}
		logging.LogSaved(log, "forex", len(bars), saved)
		total += saved
	}
	return total
}

// dedupeByURL drops in-batch duplicates before the store sees them; the URL
// uniqueness constraint still guards cross-run duplicates.
func dedupeByURL(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0:0]
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
