package store

import (
	"context"
	"testing"
	"time"

	"crypto-pulse/internal/models"
)

func TestPlanFetchWindow_ColdStart(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	days, err := PlanFetchWindow("", false, now, 30)
	if err != nil {
		t.Fatalf("PlanFetchWindow failed: %v", err)
	}
	if days != 30 {
		t.Errorf("Expected default window 30 on cold start, got %d", days)
	}
}

func TestPlanFetchWindow_ElapsedDays(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	days, err := PlanFetchWindow("2026-08-27", true, now, 30)
	if err != nil {
		t.Fatalf("PlanFetchWindow failed: %v", err)
	}
	if days != 5 {
		t.Errorf("Expected 5 elapsed days, got %d", days)
	}
}

func TestPlanFetchWindow_UpToDateSkips(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	days, err := PlanFetchWindow("2026-09-01", true, now, 30)
	if err != nil {
		t.Fatalf("PlanFetchWindow failed: %v", err)
	}
	if days != Skip {
		t.Errorf("Expected Skip when latest is today, got %d", days)
	}
}

func TestPlanFetchWindow_BadDate(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	if _, err := PlanFetchWindow("not-a-date", true, now, 30); err == nil {
		t.Error("Expected parse error for malformed date")
	}
}

func TestPlanFetchWindowMin1_FloorsToOne(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	days, err := PlanFetchWindowMin1("2026-09-01", true, now, 30)
	if err != nil {
		t.Fatalf("PlanFetchWindowMin1 failed: %v", err)
	}
	if days != 1 {
		t.Errorf("Expected floor to 1 when latest is today, got %d", days)
	}
}

func TestPlanFetchWindowMin1_ColdStartKeepsDefault(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	days, err := PlanFetchWindowMin1("", false, now, 30)
	if err != nil {
		t.Fatalf("PlanFetchWindowMin1 failed: %v", err)
	}
	if days != 30 {
		t.Errorf("Expected default window 30 on cold start, got %d", days)
	}
}

func TestSyncPlanner_MarketWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	planner := NewSyncPlanner(store, func() time.Time { return now })

	// Cold start.
	days, err := planner.MarketWindow(ctx, "bitcoin", 30)
	if err != nil {
		t.Fatalf("MarketWindow failed: %v", err)
	}
	if days != 30 {
		t.Errorf("Expected 30 on cold start, got %d", days)
	}

	// Warm with a gap.
	if _, err := store.SaveMarketData(ctx, []models.MarketSnapshot{
		{AssetID: "bitcoin", Date: "2026-08-29", Price: 100},
	}); err != nil {
		t.Fatalf("SaveMarketData failed: %v", err)
	}

	days, err = planner.MarketWindow(ctx, "bitcoin", 30)
	if err != nil {
		t.Fatalf("MarketWindow failed: %v", err)
	}
	if days != 3 {
		t.Errorf("Expected 3 elapsed days, got %d", days)
	}
}

func TestSyncPlanner_CandleWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	planner := NewSyncPlanner(store, func() time.Time { return now })

	twoDaysAgo := now.AddDate(0, 0, -2)
	if _, err := store.SaveHistoricalPrices(ctx, "BTC-USDT", []models.Candle{
		{Timestamp: twoDaysAgo.Unix(), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}); err != nil {
		t.Fatalf("SaveHistoricalPrices failed: %v", err)
	}

	days, err := planner.CandleWindow(ctx, "BTC-USDT", 30)
	if err != nil {
		t.Fatalf("CandleWindow failed: %v", err)
	}
	if days != 2 {
		t.Errorf("Expected 2 elapsed days, got %d", days)
	}

	// Fresh candle from moments ago skips.
	if _, err := store.SaveHistoricalPrices(ctx, "BTC-USDT", []models.Candle{
		{Timestamp: now.Add(-time.Hour).Unix(), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}); err != nil {
		t.Fatalf("SaveHistoricalPrices failed: %v", err)
	}

	days, err = planner.CandleWindow(ctx, "BTC-USDT", 30)
	if err != nil {
		t.Fatalf("CandleWindow failed: %v", err)
	}
	if days != Skip {
		t.Errorf("Expected Skip for fresh candle, got %d", days)
	}
}

func TestSyncPlanner_ForexWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	planner := NewSyncPlanner(store, func() time.Time { return now })

	if _, err := store.SaveForexData(ctx, "DXY.INDX", []models.ForexBar{
		{Date: "2026-08-25", Close: 104.5},
	}); err != nil {
		t.Fatalf("SaveForexData failed: %v", err)
	}

	days, err := planner.ForexWindow(ctx, "DXY.INDX", 30)
	if err != nil {
		t.Fatalf("ForexWindow failed: %v", err)
	}
	if days != 7 {
		t.Errorf("Expected 7 elapsed days, got %d", days)
	}
}
