package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
)

const defiLlamaBaseURL = "https://api.llama.fi"

// DefiLlamaClient fetches total-value-locked data per chain.
type DefiLlamaClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDefiLlamaClient creates a DefiLlama client.
func NewDefiLlamaClient(logger zerolog.Logger) *DefiLlamaClient {
	return &DefiLlamaClient{
		baseURL:    defiLlamaBaseURL,
		httpClient: defaultHTTPClient(),
		logger:     logger.With().Str("source", "defillama").Logger(),
		now:        time.Now,
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *DefiLlamaClient) SetBaseURL(u string) { c.baseURL = u }

// SetNowFunc overrides the snapshot clock, used by tests.
func (c *DefiLlamaClient) SetNowFunc(fn func() time.Time) { c.now = fn }

type chainTvlPoint struct {
	Date int64   `json:"date"`
	TVL  float64 `json:"tvl"`
}

// FetchChainTVL returns the current TVL snapshot for each requested chain,
// all stamped with the same fetch time. A chain that fails or returns no
// history is logged and skipped; the others still contribute.
func (c *DefiLlamaClient) FetchChainTVL(ctx context.Context, chains []string) []models.ChainTVL {
	fetchedAt := c.now().Unix()

	var snapshots []models.ChainTVL
	for _, chain := range chains {
		tvl, err := c.fetchLatestTVL(ctx, chain)
		if err != nil {
			c.logger.Warn().Err(err).Str("chain", chain).Msg("Failed to fetch chain TVL")
			continue
		}
		snapshots = append(snapshots, models.ChainTVL{
			Chain:     chain,
			Timestamp: fetchedAt,
			TVL:       tvl,
		})
	}

	c.logger.Info().Int("chains", len(snapshots)).Msg("TVL fetch complete")
	return snapshots
}

func (c *DefiLlamaClient) fetchLatestTVL(ctx context.Context, chain string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v2/historicalChainTvl/%s", c.baseURL, chain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, perrors.NewIngestError("defillama", chain, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, perrors.NewIngestError("defillama", chain, err)
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp); err != nil {
		return 0, perrors.NewIngestError("defillama", chain, err)
	}

	var history []chainTvlPoint
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return 0, perrors.NewIngestError("defillama", chain, err)
	}
	if len(history) == 0 {
		return 0, perrors.NewIngestError("defillama", chain, fmt.Errorf("empty TVL history"))
	}

	// The last point is the most recent value.
	return history[len(history)-1].TVL, nil
}
