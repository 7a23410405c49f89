package store

import (
	"context"
	"time"
)

// Skip is the window value signalling that stored data already covers "now"
// and the source should not be fetched this cycle.
const Skip = 0

// DateLayout is the canonical date format used for daily keys.
const DateLayout = "2006-01-02"

// PlanFetchWindow computes how many whole days of history must be (re)fetched
// for a key whose latest stored date is latest. With no stored data it returns
// defaultWindow (cold start). With stored data it returns the elapsed whole
// days since that date, or Skip when that is zero, so a bounded incremental
// fetch replaces a full historical one.
func PlanFetchWindow(latest string, hasData bool, now time.Time, defaultWindow int) (int, error) {
	if !hasData {
		return defaultWindow, nil
	}

	last, err := time.Parse(DateLayout, latest)
	if err != nil {
		return 0, err
	}

	days := wholeDaysBetween(last, now)
	if days <= 0 {
		return Skip, nil
	}
	return days, nil
}

// PlanFetchWindowMin1 behaves like PlanFetchWindow but floors the warm window
// to 1 day, so a same-day latest record still triggers a one-day refetch.
// Used by targeted analysis, where an up-to-date asset is refreshed anyway.
func PlanFetchWindowMin1(latest string, hasData bool, now time.Time, defaultWindow int) (int, error) {
	window, err := PlanFetchWindow(latest, hasData, now, defaultWindow)
	if err != nil {
		return 0, err
	}
	if hasData && window == Skip {
		return 1, nil
	}
	return window, nil
}

func wholeDaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// SyncPlanner computes incremental fetch windows against a DataStore. It is
// the only consumer of the store's Latest* reads.
type SyncPlanner struct {
	store DataStore
	now   func() time.Time
}

// NewSyncPlanner creates a planner. nowFn may be nil, defaulting to time.Now.
func NewSyncPlanner(store DataStore, nowFn func() time.Time) *SyncPlanner {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &SyncPlanner{store: store, now: nowFn}
}

// MarketWindow plans the fetch window for an asset's daily market data.
func (p *SyncPlanner) MarketWindow(ctx context.Context, assetID string, defaultWindow int) (int, error) {
	latest, ok, err := p.store.LatestMarketDate(ctx, assetID)
	if err != nil {
		return 0, err
	}
	return PlanFetchWindow(latest, ok, p.now(), defaultWindow)
}

// MarketWindowMin1 is the targeted-analysis variant of MarketWindow.
func (p *SyncPlanner) MarketWindowMin1(ctx context.Context, assetID string, defaultWindow int) (int, error) {
	latest, ok, err := p.store.LatestMarketDate(ctx, assetID)
	if err != nil {
		return 0, err
	}
	return PlanFetchWindowMin1(latest, ok, p.now(), defaultWindow)
}

// CandleWindow plans the fetch window for an exchange symbol's daily candles.
func (p *SyncPlanner) CandleWindow(ctx context.Context, symbol string, defaultWindow int) (int, error) {
	ts, ok, err := p.store.LatestCandleTime(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if !ok {
		return defaultWindow, nil
	}
	days := wholeDaysBetween(time.Unix(ts, 0), p.now())
	if days <= 0 {
		return Skip, nil
	}
	return days, nil
}

// ForexWindow plans the fetch window for a forex symbol's daily bars.
func (p *SyncPlanner) ForexWindow(ctx context.Context, symbol string, defaultWindow int) (int, error) {
	latest, ok, err := p.store.LatestForexDate(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return PlanFetchWindow(latest, ok, p.now(), defaultWindow)
}
