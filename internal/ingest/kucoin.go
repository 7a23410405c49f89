package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
)

const kucoinBaseURL = "https://api.kucoin.com"

// KucoinClient fetches public candle data from the exchange.
type KucoinClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewKucoinClient creates a KuCoin market data client. Kline endpoints are
// public and need no authentication.
func NewKucoinClient() *KucoinClient {
	return &KucoinClient{
		baseURL:    kucoinBaseURL,
		httpClient: defaultHTTPClient(),
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *KucoinClient) SetBaseURL(u string) { c.baseURL = u }

type kucoinKlineResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// FetchCandles returns daily candles for a symbol between startAt and endAt
// (unix seconds). The provider encodes each kline as a string array:
// [timestamp, open, close, high, low, volume, turnover].
func (c *KucoinClient) FetchCandles(ctx context.Context, symbol string, startAt, endAt int64) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("type", "1day")
	params.Set("startAt", strconv.FormatInt(startAt, 10))
	params.Set("endAt", strconv.FormatInt(endAt, 10))
	endpoint := c.baseURL + "/api/v1/market/candles?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, perrors.NewIngestError("kucoin", symbol, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, perrors.NewIngestError("kucoin", symbol, err)
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp); err != nil {
		return nil, perrors.NewIngestError("kucoin", symbol, err)
	}

	var payload kucoinKlineResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, perrors.NewIngestError("kucoin", symbol, err)
	}
	if payload.Code != "200000" {
		return nil, perrors.NewIngestError("kucoin", symbol, fmt.Errorf("api code %s: %s", payload.Code, payload.Msg))
	}

	candles := make([]models.Candle, 0, len(payload.Data))
	for _, k := range payload.Data {
		candle, err := parseKline(k)
		if err != nil {
			return nil, perrors.NewIngestError("kucoin", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseKline(k []string) (models.Candle, error) {
	if len(k) < 6 {
		return models.Candle{}, fmt.Errorf("short kline record: %d fields", len(k))
	}

	ts, err := strconv.ParseInt(k[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("bad kline timestamp %q: %w", k[0], err)
	}

	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := strconv.ParseFloat(k[i], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("bad kline field %q: %w", k[i], err)
		}
		vals[i-1] = v
	}

	return models.Candle{
		Timestamp: ts,
		Open:      vals[0],
		Close:     vals[1],
		High:      vals[2],
		Low:       vals[3],
		Volume:    vals[4],
	}, nil
}
