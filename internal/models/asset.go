package models

import "fmt"

// Asset is a supported contribution denomination.
type Asset string

const (
	AssetUSDT Asset = "USDT"
	AssetXAUT Asset = "XAUT"
)

// ParseAsset validates a caller-supplied asset string.
// Display glyphs (USD₮, XAU₮) are accepted as aliases.
func ParseAsset(s string) (Asset, error) {
	switch s {
	case "USDT", "USD₮":
		return AssetUSDT, nil
	case "XAUT", "XAU₮":
		return AssetXAUT, nil
	}
	return "", fmt.Errorf("%w: unsupported asset %q", ErrValidation, s)
}

// DisplaySymbol returns the glyph form used by the UI.
func (a Asset) DisplaySymbol() string {
	switch a {
	case AssetUSDT:
		return "USD₮"
	case AssetXAUT:
		return "XAU₮"
	}
	return string(a)
}

// Frequency is the cadence between rounds.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency validates a caller-supplied frequency string.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyWeekly, FrequencyMonthly:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("%w: unsupported frequency %q", ErrValidation, s)
}

// NextDue returns the due date of a round that opens at from.
func (f Frequency) NextDue(from int64) int64 {
	t := unixTime(from)
	if f == FrequencyWeekly {
		return t.AddDate(0, 0, 7).Unix()
	}
	return t.AddDate(0, 1, 0).Unix()
}
