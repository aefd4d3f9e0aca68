// Package ledger aggregates raw wallet balances into valued positions.
package ledger

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/models"
	"github.com/kese-app/goldday/internal/pricing"
	"github.com/kese-app/goldday/internal/wallet"
)

// AssetPosition is the summed balance for one supported asset together
// with its fiat valuation. ValuationFailed marks positions whose pricing
// lookup failed; the balance itself is always reported.
type AssetPosition struct {
	Asset           models.Asset     `json:"asset"`
	Symbol          string           `json:"symbol"`
	Balance         decimal.Decimal  `json:"balance"`
	FiatValue       decimal.Decimal  `json:"fiatValue"`
	FiatCurrency    pricing.Currency `json:"fiatCurrency"`
	ValuationFailed bool             `json:"valuationFailed,omitempty"`
}

// Aggregator turns raw balance records into valued positions.
type Aggregator struct {
	cache *pricing.Cache
}

// New creates an Aggregator valuing positions against the given cache.
func New(cache *pricing.Cache) *Aggregator {
	return &Aggregator{cache: cache}
}

// Aggregate groups raw balances by asset, sums them with decimal
// arithmetic, and attaches USD valuations. Unknown denominations are
// dropped silently: a shared indexer reports assets this app does not
// handle. XAUT sorts first, then by asset name.
func (a *Aggregator) Aggregate(raw []wallet.Balance) []AssetPosition {
	totals := make(map[models.Asset]decimal.Decimal)
	for _, b := range raw {
		asset, err := models.ParseAsset(b.Denomination)
		if err != nil {
			continue
		}
		totals[asset] = totals[asset].Add(b.Value)
	}

	positions := make([]AssetPosition, 0, len(totals))
	for asset, total := range totals {
		pos := AssetPosition{
			Asset:        asset,
			Symbol:       asset.DisplaySymbol(),
			Balance:      total,
			FiatCurrency: pricing.USD,
		}
		fiat, err := a.cache.Valuate(total, asset, pricing.USD)
		if err != nil {
			// Never hide a holding because pricing failed.
			slog.Warn("valuation failed", "asset", asset, "error", err)
			pos.FiatValue = decimal.Zero
			pos.ValuationFailed = true
		} else {
			pos.FiatValue = fiat
		}
		positions = append(positions, pos)
	}

	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Asset == models.AssetXAUT {
			return true
		}
		if positions[j].Asset == models.AssetXAUT {
			return false
		}
		return positions[i].Asset < positions[j].Asset
	})
	return positions
}

// TotalValue sums the fiat values of the given positions.
func TotalValue(positions []AssetPosition) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.FiatValue)
	}
	return total
}
