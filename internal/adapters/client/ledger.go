package client

import (
	"context"

	"github.com/okian/aether/internal/domain/account"
)

// Ledger posts transactions to the state ledger.
type Ledger interface {
	ApplyTransaction(ctx context.Context, tx account.Transaction) (account.Account, error)
}

// LedgerClient implements Ledger over HTTP.
type LedgerClient struct {
	base
}

var _ Ledger = (*LedgerClient)(nil)

// NewLedgerClient targets the ledger at baseURL.
func NewLedgerClient(baseURL string, opts ...Option) *LedgerClient {
	return &LedgerClient{base: newBase("ledger", baseURL, opts...)}
}

// ApplyTransaction posts tx to /transaction and returns the updated account.
func (c *LedgerClient) ApplyTransaction(ctx context.Context, tx account.Transaction) (account.Account, error) {
	var acc account.Account
	if err := c.postJSON(ctx, "/transaction", tx, &acc); err != nil {
		return account.Account{}, err
	}
	return acc, nil
}
