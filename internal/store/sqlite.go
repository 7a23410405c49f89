package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store and brings its schema
// up to date. A failure to initialize the schema is fatal and closes the
// handle before returning.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// schemaVersion is bumped whenever a migration is added below.
const schemaVersion = 1

// initSchema applies pending schema migrations, tracked via the database's
// user_version pragma. A store already at the current version is untouched.
func (s *SQLiteStore) initSchema() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	if version < 1 {
		if _, err := s.db.Exec(baseSchema); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

const baseSchema = `
	-- News articles; url is the natural key, duplicates are silently ignored
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT,
		title TEXT,
		url TEXT UNIQUE,
		published_at TEXT,
		category TEXT,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		summary TEXT,
		sentiment TEXT,
		reasoning TEXT,
		investment_factors TEXT
	);

	-- Daily market snapshots per tracked asset
	CREATE TABLE IF NOT EXISTS market_data (
		asset_id TEXT NOT NULL,
		date TEXT NOT NULL,
		price REAL,
		market_cap REAL,
		total_volume REAL,
		PRIMARY KEY (asset_id, date)
	);

	-- Exchange candles, keyed per symbol at second granularity
	CREATE TABLE IF NOT EXISTS historical_prices (
		asset_symbol TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (asset_symbol, timestamp)
	);

	-- On-chain TVL snapshots per chain
	CREATE TABLE IF NOT EXISTS chain_tvl_data (
		chain TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		tvl REAL NOT NULL CHECK (tvl >= 0),
		PRIMARY KEY (chain, timestamp)
	);

	-- Forex daily bars
	CREATE TABLE IF NOT EXISTS forex_data (
		symbol TEXT NOT NULL,
		date TEXT NOT NULL,
		open REAL,
		high REAL,
		low REAL,
		close REAL,
		adjusted_close REAL,
		volume INTEGER,
		PRIMARY KEY (symbol, date)
	);

	CREATE INDEX IF NOT EXISTS idx_articles_fetched ON articles(fetched_at);
	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
	CREATE INDEX IF NOT EXISTS idx_articles_sentiment ON articles(sentiment);
	CREATE INDEX IF NOT EXISTS idx_market_data_date ON market_data(date);
	CREATE INDEX IF NOT EXISTS idx_historical_symbol ON historical_prices(asset_symbol);
	`

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a single transaction: committed if fn returns nil,
// rolled back otherwise. This is the sole transaction boundary for batch
// writes, making each Save call all-or-nothing.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ============================================================================
// Articles Methods
// ============================================================================

// SaveArticles batch-inserts articles with ignore-on-conflict semantics:
// a duplicate url is silently dropped, not an error. Rows lacking a url are
// skipped. Returns the number of rows actually inserted.
func (s *SQLiteStore) SaveArticles(ctx context.Context, articles []models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO articles (source, title, url, published_at, category)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, a := range articles {
			if a.URL == "" {
				continue
			}
			res, err := stmt.ExecContext(ctx, a.Source, a.Title, a.URL, a.PublishedAt, a.Category)
			if err != nil {
				return fmt.Errorf("failed to insert article: %w", err)
			}
			n, _ := res.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, perrors.NewDataError("save_articles", "", err)
	}
	return inserted, nil
}

// GetUnprocessedArticles returns up to limit articles that have no AI summary
// yet, most recently fetched first.
func (s *SQLiteStore) GetUnprocessedArticles(ctx context.Context, limit int) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(source, ''), COALESCE(title, ''), url,
		       COALESCE(published_at, ''), COALESCE(category, ''), fetched_at
		FROM articles
		WHERE summary IS NULL
		ORDER BY fetched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, perrors.NewDataError("get_unprocessed_articles", "", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.URL, &a.PublishedAt, &a.Category, &a.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// UpdateArticleAnalysis attaches an annotation to one article, setting all
// annotation fields atomically. A missing id is a no-op, not an error.
func (s *SQLiteStore) UpdateArticleAnalysis(ctx context.Context, articleID int64, annotation models.Annotation) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE articles
		SET summary = ?, sentiment = ?, reasoning = ?, investment_factors = ?
		WHERE id = ?
	`, annotation.Summary, string(annotation.Sentiment), annotation.Reasoning, annotation.InvestmentFactors, articleID)
	if err != nil {
		return perrors.NewDataError("update_article_analysis", fmt.Sprintf("%d", articleID), err)
	}
	return nil
}

// ============================================================================
// Time Series Methods
// ============================================================================

// SaveMarketData batch-upserts daily snapshots with replace-on-conflict
// semantics: a re-fetch of an already stored (asset_id, date) wins.
func (s *SQLiteStore) SaveMarketData(ctx context.Context, snapshots []models.MarketSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	affected := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO market_data (asset_id, date, price, market_cap, total_volume)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, m := range snapshots {
			res, err := stmt.ExecContext(ctx, m.AssetID, m.Date, m.Price, m.MarketCap, m.TotalVolume)
			if err != nil {
				return fmt.Errorf("failed to insert market data: %w", err)
			}
			n, _ := res.RowsAffected()
			affected += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, perrors.NewDataError("save_market_data", "", err)
	}
	return affected, nil
}

// SaveHistoricalPrices batch-upserts candles for one exchange symbol,
// replace-on-conflict per (symbol, timestamp).
func (s *SQLiteStore) SaveHistoricalPrices(ctx context.Context, symbol string, candles []models.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	affected := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO historical_prices (asset_symbol, timestamp, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, c := range candles {
			res, err := stmt.ExecContext(ctx, symbol, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
			if err != nil {
				return fmt.Errorf("failed to insert candle: %w", err)
			}
			n, _ := res.RowsAffected()
			affected += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, perrors.NewDataError("save_candles", symbol, err)
	}
	return affected, nil
}

// SaveChainTVL batch-upserts TVL snapshots, replace-on-conflict per
// (chain, timestamp).
func (s *SQLiteStore) SaveChainTVL(ctx context.Context, snapshots []models.ChainTVL) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	affected := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO chain_tvl_data (chain, timestamp, tvl)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, t := range snapshots {
			res, err := stmt.ExecContext(ctx, t.Chain, t.Timestamp, t.TVL)
			if err != nil {
				return fmt.Errorf("failed to insert chain tvl: %w", err)
			}
			n, _ := res.RowsAffected()
			affected += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, perrors.NewDataError("save_chain_tvl", "", err)
	}
	return affected, nil
}

// SaveForexData batch-upserts daily forex bars for one symbol,
// replace-on-conflict per (symbol, date).
func (s *SQLiteStore) SaveForexData(ctx context.Context, symbol string, bars []models.ForexBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	affected := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO forex_data (symbol, date, open, high, low, close, adjusted_close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, b := range bars {
			res, err := stmt.ExecContext(ctx, symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.AdjustedClose, b.Volume)
			if err != nil {
				return fmt.Errorf("failed to insert forex bar: %w", err)
			}
			n, _ := res.RowsAffected()
			affected += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, perrors.NewDataError("save_forex_data", symbol, err)
	}
	return affected, nil
}

// ============================================================================
// Incremental Sync Reads
// ============================================================================

// LatestMarketDate returns the most recent stored date for an asset, or
// ok=false if no rows exist.
func (s *SQLiteStore) LatestMarketDate(ctx context.Context, assetID string) (string, bool, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(date) FROM market_data WHERE asset_id = ?
	`, assetID).Scan(&date)
	if err != nil && err != sql.ErrNoRows {
		return "", false, perrors.NewDataError("latest_market_date", assetID, err)
	}
	if !date.Valid {
		return "", false, nil
	}
	return date.String, true, nil
}

// LatestCandleTime returns the most recent candle timestamp for a symbol.
func (s *SQLiteStore) LatestCandleTime(ctx context.Context, symbol string) (int64, bool, error) {
	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM historical_prices WHERE asset_symbol = ?
	`, symbol).Scan(&ts)
	if err != nil && err != sql.ErrNoRows {
		return 0, false, perrors.NewDataError("latest_candle_time", symbol, err)
	}
	if !ts.Valid {
		return 0, false, nil
	}
	return ts.Int64, true, nil
}

// LatestChainTVLTime returns the most recent TVL timestamp for a chain.
func (s *SQLiteStore) LatestChainTVLTime(ctx context.Context, chain string) (int64, bool, error) {
	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM chain_tvl_data WHERE chain = ?
	`, chain).Scan(&ts)
	if err != nil && err != sql.ErrNoRows {
		return 0, false, perrors.NewDataError("latest_chain_tvl_time", chain, err)
	}
	if !ts.Valid {
		return 0, false, nil
	}
	return ts.Int64, true, nil
}

// LatestForexDate returns the most recent stored date for a forex symbol.
func (s *SQLiteStore) LatestForexDate(ctx context.Context, symbol string) (string, bool, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(date) FROM forex_data WHERE symbol = ?
	`, symbol).Scan(&date)
	if err != nil && err != sql.ErrNoRows {
		return "", false, perrors.NewDataError("latest_forex_date", symbol, err)
	}
	if !date.Valid {
		return "", false, nil
	}
	return date.String, true, nil
}

// ============================================================================
// Reporting Reads
// ============================================================================

// GetAllAnalyzedArticles returns every article that carries an annotation,
// newest published first. Read-only, used by the reporting surface.
func (s *SQLiteStore) GetAllAnalyzedArticles(ctx context.Context) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(source, ''), COALESCE(title, ''), url,
		       COALESCE(published_at, ''), COALESCE(category, ''), fetched_at,
		       COALESCE(summary, ''), COALESCE(sentiment, ''),
		       COALESCE(reasoning, ''), COALESCE(investment_factors, '')
		FROM articles
		WHERE sentiment IS NOT NULL
		ORDER BY published_at DESC
	`)
	if err != nil {
		return nil, perrors.NewDataError("get_analyzed_articles", "", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		var sentiment string
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.URL, &a.PublishedAt, &a.Category,
			&a.FetchedAt, &a.Summary, &sentiment, &a.Reasoning, &a.InvestmentFactors); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		a.Sentiment = models.Sentiment(sentiment)
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// GetAllMarketData returns all daily snapshots in ascending date order.
func (s *SQLiteStore) GetAllMarketData(ctx context.Context) ([]models.MarketSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id, date, COALESCE(price, 0), COALESCE(market_cap, 0), COALESCE(total_volume, 0)
		FROM market_data
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, perrors.NewDataError("get_market_data", "", err)
	}
	defer rows.Close()

	var snapshots []models.MarketSnapshot
	for rows.Next() {
		var m models.MarketSnapshot
		if err := rows.Scan(&m.AssetID, &m.Date, &m.Price, &m.MarketCap, &m.TotalVolume); err != nil {
			return nil, fmt.Errorf("failed to scan market data: %w", err)
		}
		snapshots = append(snapshots, m)
	}

	return snapshots, rows.Err()
}

// GetCandles retrieves candles for a symbol within [from, to], ascending.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, from, to int64) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM historical_prices
		WHERE asset_symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, from, to)
	if err != nil {
		return nil, perrors.NewDataError("get_candles", symbol, err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	return candles, rows.Err()
}
