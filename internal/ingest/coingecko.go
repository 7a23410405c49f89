package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
	"crypto-pulse/internal/store"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient fetches daily market chart data for tracked assets.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a CoinGecko client. The public market chart
// endpoint requires no credentials.
func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    coinGeckoBaseURL,
		httpClient: defaultHTTPClient(),
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *CoinGeckoClient) SetBaseURL(u string) { c.baseURL = u }

type marketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// FetchHistoricalData returns one daily snapshot per day for the trailing
// days window. The three provider series are zipped by index; a value missing
// from a shorter series is recorded as -1 rather than dropping the day.
func (c *CoinGeckoClient) FetchHistoricalData(ctx context.Context, assetID string, days int) ([]models.MarketSnapshot, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d&interval=daily", c.baseURL, assetID, days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, perrors.NewIngestError("coingecko", assetID, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, perrors.NewIngestError("coingecko", assetID, err)
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp); err != nil {
		return nil, perrors.NewIngestError("coingecko", assetID, err)
	}

	var chart marketChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, perrors.NewIngestError("coingecko", assetID, err)
	}

	return zipChartData(assetID, chart), nil
}

func zipChartData(assetID string, chart marketChartResponse) []models.MarketSnapshot {
	if len(chart.Prices) == 0 {
		return nil
	}

	snapshots := make([]models.MarketSnapshot, 0, len(chart.Prices))
	for i, p := range chart.Prices {
		// Provider timestamps are unix milliseconds.
		date := time.UnixMilli(int64(p[0])).UTC().Format(store.DateLayout)

		snapshot := models.MarketSnapshot{
			AssetID:     assetID,
			Date:        date,
			Price:       p[1],
			MarketCap:   -1,
			TotalVolume: -1,
		}
		if i < len(chart.MarketCaps) {
			snapshot.MarketCap = chart.MarketCaps[i][1]
		}
		if i < len(chart.TotalVolumes) {
			snapshot.TotalVolume = chart.TotalVolumes[i][1]
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}
