package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/models"
)

// fakeOracle serves canned rates and can be flipped into failure mode.
type fakeOracle struct {
	rates map[models.Asset]decimal.Decimal
	fail  bool
}

func (o *fakeOracle) GetLastPrice(ctx context.Context, asset models.Asset, currency Currency) (decimal.Decimal, error) {
	if o.fail {
		return decimal.Zero, errors.New("oracle down")
	}
	rate, ok := o.rates[asset]
	if !ok {
		return decimal.Zero, errors.New("no such pair")
	}
	return rate, nil
}

func TestValuate_NotInitialized(t *testing.T) {
	cache := NewCache(&fakeOracle{})

	_, err := cache.Valuate(decimal.RequireFromString("10"), models.AssetUSDT, USD)
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestValuate_RateUnavailable(t *testing.T) {
	oracle := &fakeOracle{rates: map[models.Asset]decimal.Decimal{
		models.AssetUSDT: decimal.NewFromInt(1),
	}}
	cache := NewCache(oracle)
	if _, _, err := cache.Refresh(context.Background(), models.AssetUSDT, USD); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	_, err := cache.Valuate(decimal.NewFromInt(1), models.AssetXAUT, USD)
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestValuate(t *testing.T) {
	oracle := &fakeOracle{rates: map[models.Asset]decimal.Decimal{
		models.AssetXAUT: decimal.RequireFromString("2150.5"),
	}}
	cache := NewCache(oracle)
	if _, _, err := cache.Refresh(context.Background(), models.AssetXAUT, USD); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	got, err := cache.Valuate(decimal.RequireFromString("2"), models.AssetXAUT, USD)
	if err != nil {
		t.Fatalf("Valuate failed: %v", err)
	}
	if want := decimal.RequireFromString("4301"); !got.Equal(want) {
		t.Errorf("fiat value: expected %s, got %s", want, got)
	}
}

func TestRefresh_FailureKeepsStaleRate(t *testing.T) {
	oracle := &fakeOracle{rates: map[models.Asset]decimal.Decimal{
		models.AssetXAUT: decimal.NewFromInt(2000),
	}}
	cache := NewCache(oracle)
	if _, _, err := cache.Refresh(context.Background(), models.AssetXAUT, USD); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	oracle.fail = true
	if _, _, err := cache.Refresh(context.Background(), models.AssetXAUT, USD); err == nil {
		t.Fatal("expected refresh error")
	}

	rate, _, ok := cache.Rate(models.AssetXAUT, USD)
	if !ok {
		t.Fatal("stale rate must be retained after failed refresh")
	}
	if want := decimal.NewFromInt(2000); !rate.Equal(want) {
		t.Errorf("stale rate: expected %s, got %s", want, rate)
	}
}

func TestRefresh_RecordsFetchedAt(t *testing.T) {
	oracle := &fakeOracle{rates: map[models.Asset]decimal.Decimal{
		models.AssetUSDT: decimal.NewFromInt(1),
	}}
	cache := NewCache(oracle)

	_, fetchedAt, err := cache.Refresh(context.Background(), models.AssetUSDT, USD)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if fetchedAt.IsZero() {
		t.Error("fetchedAt must be recorded on success")
	}
	if !cache.Ready() {
		t.Error("cache must be ready after a successful fetch")
	}
}

func TestFallbackRate(t *testing.T) {
	if !FallbackRate(models.AssetUSDT).Equal(decimal.NewFromInt(1)) {
		t.Error("USDT fallback must be 1")
	}
	if !FallbackRate(models.AssetXAUT).Equal(decimal.NewFromInt(2000)) {
		t.Error("XAUT fallback must be 2000")
	}
	if !FallbackRate(models.Asset("DOGE")).IsZero() {
		t.Error("unknown asset fallback must be zero")
	}
}
