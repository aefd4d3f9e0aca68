package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/models"
)

// DefaultBitfinexURL is the public Bitfinex REST endpoint.
const DefaultBitfinexURL = "https://api-pub.bitfinex.com"

// BitfinexClient fetches last-trade prices from the Bitfinex public ticker.
type BitfinexClient struct {
	http *resty.Client
}

var _ Oracle = (*BitfinexClient)(nil)

// NewBitfinexClient creates a client for the given base URL, falling back
// to the public endpoint when empty.
func NewBitfinexClient(baseURL string) *BitfinexClient {
	if baseURL == "" {
		baseURL = DefaultBitfinexURL
	}
	return &BitfinexClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
	}
}

// GetLastPrice returns the last trade price for asset quoted in currency.
// USDT is treated at peg and never hits the network.
func (c *BitfinexClient) GetLastPrice(ctx context.Context, asset models.Asset, currency Currency) (decimal.Decimal, error) {
	if currency != USD {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrRateUnavailable, asset, currency)
	}
	if asset == models.AssetUSDT {
		return decimal.NewFromInt(1), nil
	}

	// Ticker response is a flat array; LAST_PRICE is index 6.
	var ticker []float64
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&ticker).
		Get("/v2/ticker/" + tickerSymbol(asset))
	if err != nil {
		return decimal.Zero, fmt.Errorf("bitfinex ticker: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("bitfinex ticker: status %d", resp.StatusCode())
	}
	if len(ticker) < 7 {
		return decimal.Zero, fmt.Errorf("bitfinex ticker: malformed response for %s", asset)
	}
	return decimal.NewFromFloat(ticker[6]), nil
}

func tickerSymbol(asset models.Asset) string {
	// Bitfinex separates base and quote with a colon for 4-letter tickers.
	if len(asset) > 3 {
		return "t" + string(asset) + ":USD"
	}
	return "t" + string(asset) + "USD"
}
