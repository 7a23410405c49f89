package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
)

const eodhdBaseURL = "https://eodhd.com/api"

// EODHDClient fetches daily forex bars from EOD Historical Data.
type EODHDClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewEODHDClient creates an EODHD client.
func NewEODHDClient(apiKey string) *EODHDClient {
	return &EODHDClient{
		apiKey:     apiKey,
		baseURL:    eodhdBaseURL,
		httpClient: defaultHTTPClient(),
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *EODHDClient) SetBaseURL(u string) { c.baseURL = u }

type eodBar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// FetchForexData returns daily bars for a symbol within [fromDate, toDate],
// dates formatted YYYY-MM-DD.
func (c *EODHDClient) FetchForexData(ctx context.Context, symbol, fromDate, toDate string) ([]models.ForexBar, error) {
	params := url.Values{}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")
	params.Set("period", "d")
	params.Set("from", fromDate)
	params.Set("to", toDate)
	endpoint := fmt.Sprintf("%s/eod/%s?%s", c.baseURL, symbol, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, perrors.NewIngestError("eodhd", symbol, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, perrors.NewIngestError("eodhd", symbol, err)
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp); err != nil {
		return nil, perrors.NewIngestError("eodhd", symbol, err)
	}

	var payload []eodBar
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, perrors.NewIngestError("eodhd", symbol, err)
	}

	bars := make([]models.ForexBar, 0, len(payload))
	for _, b := range payload {
		bars = append(bars, models.ForexBar{
			Date:          b.Date,
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			AdjustedClose: b.AdjustedClose,
			Volume:        b.Volume,
		})
	}
	return bars, nil
}
