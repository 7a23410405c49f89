package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchCandles_ParsesKlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/market/candles" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTC-USDT" {
			t.Errorf("Unexpected symbol: %s", q.Get("symbol"))
		}
		if q.Get("type") != "1day" {
			t.Errorf("Unexpected type: %s", q.Get("type"))
		}
		// Fields: [timestamp, open, close, high, low, volume, turnover]
		fmt.Fprint(w, `{
			"code": "200000",
			"data": [
				["1756512000", "50000.1", "50500.2", "51000.3", "49800.4", "123.45", "6200000"],
				["1756425600", "49500.0", "50000.1", "50200.0", "49300.0", "98.76", "4900000"]
			]
		}`)
	}))
	defer server.Close()

	client := NewKucoinClient()
	client.SetBaseURL(server.URL)

	candles, err := client.FetchCandles(context.Background(), "BTC-USDT", 1756425600, 1756512000)
	if err != nil {
		t.Fatalf("FetchCandles failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(candles))
	}

	c := candles[0]
	if c.Timestamp != 1756512000 {
		t.Errorf("Unexpected timestamp: %d", c.Timestamp)
	}
	if c.Open != 50000.1 || c.Close != 50500.2 || c.High != 51000.3 || c.Low != 49800.4 {
		t.Errorf("OHLC fields mapped incorrectly: %+v", c)
	}
	if c.Volume != 123.45 {
		t.Errorf("Unexpected volume: %v", c.Volume)
	}
}

func TestFetchCandles_APIErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "400100", "msg": "symbol not exists", "data": []}`)
	}))
	defer server.Close()

	client := NewKucoinClient()
	client.SetBaseURL(server.URL)

	if _, err := client.FetchCandles(context.Background(), "NOPE-USDT", 0, 1); err == nil {
		t.Error("Expected error for non-success api code")
	}
}

func TestFetchCandles_MalformedKline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "200000", "data": [["1756512000", "not-a-number", "1", "1", "1", "1"]]}`)
	}))
	defer server.Close()

	client := NewKucoinClient()
	client.SetBaseURL(server.URL)

	if _, err := client.FetchCandles(context.Background(), "BTC-USDT", 0, 1); err == nil {
		t.Error("Expected error for malformed kline field")
	}
}

func TestParseKline_ShortRecord(t *testing.T) {
	if _, err := parseKline([]string{"1756512000", "1", "2"}); err == nil {
		t.Error("Expected error for short kline record")
	}
}
