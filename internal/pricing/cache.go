// Package pricing holds the last-known exchange rates used to value token
// balances in fiat.
//
// The cache has no freshness cutoff: a stale rate is served until a refresh
// replaces it, and a failed refresh keeps the old entry (availability over
// freshness). Callers that need a number even on a cache miss apply
// FallbackRate themselves; the cache never substitutes it silently.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/models"
)

// Currency is a fiat quote currency.
type Currency string

// USD is the only quote currency the app displays.
const USD Currency = "USD"

var (
	// ErrNotInitialized means no rate fetch has ever succeeded.
	ErrNotInitialized = errors.New("pricing not initialized")
	// ErrRateUnavailable means the specific pair was never fetched.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

// Oracle fetches spot prices from an external source.
type Oracle interface {
	GetLastPrice(ctx context.Context, asset models.Asset, currency Currency) (decimal.Decimal, error)
}

type pair struct {
	asset    models.Asset
	currency Currency
}

type entry struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// Cache caches (asset, currency) exchange rates with their fetch time.
type Cache struct {
	oracle Oracle
	now    func() time.Time

	mu    sync.RWMutex
	rates map[pair]entry
}

// NewCache creates an empty cache backed by the given oracle.
func NewCache(oracle Oracle) *Cache {
	return &Cache{
		oracle: oracle,
		now:    time.Now,
		rates:  make(map[pair]entry),
	}
}

// Refresh fetches the pair from the oracle and overwrites the cached entry.
// On oracle failure the stale entry, if any, is retained.
func (c *Cache) Refresh(ctx context.Context, asset models.Asset, currency Currency) (decimal.Decimal, time.Time, error) {
	rate, err := c.oracle.GetLastPrice(ctx, asset, currency)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("fetch %s/%s: %w", asset, currency, err)
	}
	fetchedAt := c.now()
	c.mu.Lock()
	c.rates[pair{asset, currency}] = entry{rate: rate, fetchedAt: fetchedAt}
	c.mu.Unlock()
	return rate, fetchedAt, nil
}

// Valuate converts a token amount to fiat using the cached rate.
func (c *Cache) Valuate(amount decimal.Decimal, asset models.Asset, currency Currency) (decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.rates) == 0 {
		return decimal.Zero, ErrNotInitialized
	}
	e, ok := c.rates[pair{asset, currency}]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrRateUnavailable, asset, currency)
	}
	return amount.Mul(e.rate), nil
}

// Rate returns the cached rate and its fetch time for the pair.
func (c *Cache) Rate(asset models.Asset, currency Currency) (decimal.Decimal, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.rates[pair{asset, currency}]
	return e.rate, e.fetchedAt, ok
}

// Ready reports whether at least one fetch has succeeded.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rates) > 0
}

// Approximate rates used by callers when a pair is unavailable. XAUT tracks
// one troy ounce of gold.
var fallbackRates = map[models.Asset]decimal.Decimal{
	models.AssetUSDT: decimal.NewFromInt(1),
	models.AssetXAUT: decimal.NewFromInt(2000),
}

// FallbackRate returns the hardcoded approximate USD rate for an asset, or
// zero for unknown assets.
func FallbackRate(asset models.Asset) decimal.Decimal {
	return fallbackRates[asset]
}
