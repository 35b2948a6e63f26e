// Package repository holds the ledger's account state.
package repository

import (
	"context"

	"github.com/okian/aether/internal/domain/account"
)

// Result describes the outcome of applying a transaction.
type Result struct {
	// Account is the post-transaction snapshot.
	Account account.Account
	// Applied is true when balances changed (recognized type).
	Applied bool
	// Created is true when the transaction materialized the account.
	Created bool
	// Duplicate is true when the transaction id was already applied and tx
	// was skipped. Set by callers that track idempotency.
	Duplicate bool
}

// Store provides read/write access to the account state.
type Store interface {
	// GetAccount returns a snapshot for id. found is false for unknown ids;
	// reading never creates an account.
	GetAccount(ctx context.Context, id string) (acc account.Account, found bool)

	// ApplyTransaction creates the account if needed and applies tx.
	// Returns ErrInvalidTransaction when tx fails validation.
	ApplyTransaction(ctx context.Context, tx account.Transaction) (Result, error)

	// Seed installs an account snapshot, replacing any existing state.
	Seed(ctx context.Context, id string, acc account.Account)

	// Count returns the number of accounts.
	Count(ctx context.Context) int

	// IDs returns the account identifiers in ascending order.
	IDs(ctx context.Context) []string
}
