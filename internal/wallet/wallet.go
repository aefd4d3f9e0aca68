// Package wallet declares the interfaces of the external wallet module.
//
// Key management, address derivation and on-chain transfers live in a
// separate wallet SDK; this core only reads balances from it and records
// bookkeeping after the UI reports a completed transfer. The interfaces
// here are what the rest of the code programs against.
package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/models"
)

// Balance is one raw balance record as reported by the wallet's indexer.
// Denomination strings arrive unnormalized (both USDT and USD₮ occur).
type Balance struct {
	Denomination string          `json:"denomination"`
	Value        decimal.Decimal `json:"value"`
}

// Receipt describes a submitted on-chain transfer.
type Receipt struct {
	Hash string          `json:"hash"`
	Fee  decimal.Decimal `json:"fee"`
}

// Account is one derived account of the wallet.
type Account interface {
	// Address returns the account's on-chain address.
	Address() string
	// Balances returns the raw balance records for the account.
	Balances(ctx context.Context) ([]Balance, error)
	// Transfer submits an on-chain transfer and returns its receipt.
	Transfer(ctx context.Context, token models.Asset, recipient string, amount decimal.Decimal) (Receipt, error)
}

// Wallet exposes derived accounts by index.
type Wallet interface {
	Account(index int) (Account, error)
}
