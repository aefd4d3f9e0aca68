package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/models"
)

// MemoryWallet is an in-process wallet used for development and tests. It
// hands out fixed accounts with seeded balances and fakes transfers with a
// flat fee.
type MemoryWallet struct {
	mu       sync.Mutex
	accounts []*memoryAccount
}

var _ Wallet = (*MemoryWallet)(nil)

// NewMemoryWallet creates a wallet with one account per address, each
// holding the given balances.
func NewMemoryWallet(addresses []string, balances []Balance) *MemoryWallet {
	w := &MemoryWallet{}
	for _, addr := range addresses {
		seeded := make([]Balance, len(balances))
		copy(seeded, balances)
		w.accounts = append(w.accounts, &memoryAccount{address: addr, balances: seeded})
	}
	return w
}

// Account returns the derived account at index.
func (w *MemoryWallet) Account(index int) (Account, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.accounts) {
		return nil, fmt.Errorf("no account at index %d", index)
	}
	return w.accounts[index], nil
}

type memoryAccount struct {
	address  string
	mu       sync.Mutex
	balances []Balance
}

func (a *memoryAccount) Address() string { return a.address }

func (a *memoryAccount) Balances(ctx context.Context) ([]Balance, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Balance, len(a.balances))
	copy(out, a.balances)
	return out, nil
}

func (a *memoryAccount) Transfer(ctx context.Context, token models.Asset, recipient string, amount decimal.Decimal) (Receipt, error) {
	if !amount.IsPositive() {
		return Receipt{}, fmt.Errorf("transfer amount must be positive")
	}
	return Receipt{
		Hash: "0x" + uuid.New().String(),
		Fee:  decimal.RequireFromString("0.0001"),
	}, nil
}
