// Package ledger provides the state ledger service that implements the
// dependencies required by the ledger HTTP routes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/aether/internal/adapters/repository"
	"github.com/okian/aether/internal/domain/account"
	"github.com/okian/aether/internal/domain/dedupe"
	"github.com/okian/aether/pkg/logger"
	"github.com/okian/aether/pkg/metrics"
)

const defaultDedupeSize = 100_000

// Service owns the account store and the transaction id deduper.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper

	dedupeSize     int
	allowNegative  bool
	genesisFile    string
	genesis        *repository.Genesis
	genesisSeeded  int
	duplicateCount atomic.Int64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDedupeSize bounds the number of remembered transaction ids.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithAllowNegativeRewards lets negative rewards through validation.
func WithAllowNegativeRewards(allow bool) Option {
	return func(s *Service) { s.allowNegative = allow }
}

// WithGenesisFile seeds the store from a .yaml, .yml or .toml file at Start.
func WithGenesisFile(path string) Option {
	return func(s *Service) { s.genesisFile = path }
}

// WithGenesis seeds the store from an already parsed genesis at Start.
func WithGenesis(g *repository.Genesis) Option {
	return func(s *Service) { s.genesis = g }
}

// WithStore replaces the default in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Components are created on Start.
func New(opts ...Option) *Service {
	s := &Service{dedupeSize: defaultDedupeSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the store and deduper and applies the genesis, if any.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("ledger")
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithAllowNegativeRewards(s.allowNegative))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	if s.genesis == nil && s.genesisFile != "" {
		g, err := repository.LoadGenesis(s.genesisFile)
		if err != nil {
			return fmt.Errorf("load genesis %s: %w", s.genesisFile, err)
		}
		s.genesis = g
	}
	if s.genesis != nil {
		s.genesisSeeded = s.genesis.Seed(ctx, s.store)
		s.logger.Info(ctx, "genesis applied", logger.Int("accounts", s.genesisSeeded))
	}

	s.started = true
	s.logger.Info(ctx, "ledger service started",
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("allowNegativeRewards", s.allowNegative),
	)
	return nil
}

// Stop marks the service stopped. State stays in memory.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "ledger service stopped")
}

// GetAccount returns a snapshot for id without creating it.
func (s *Service) GetAccount(ctx context.Context, id string) (account.Account, bool) {
	return s.store.GetAccount(ctx, id)
}

// ApplyTransaction validates tx, then applies it once per tx_id. A repeated
// tx_id returns the current snapshot with Duplicate set. Invalid transactions
// never claim their tx_id. Transactions without a tx_id are always applied.
func (s *Service) ApplyTransaction(ctx context.Context, tx account.Transaction) (repository.Result, error) {
	if err := tx.Validate(s.allowNegative); err != nil {
		reason := "invalid_reward"
		if errors.Is(err, account.ErrMissingAccountID) {
			reason = "missing_account"
		}
		metrics.RecordTransactionRejected(reason)
		s.logger.Warn(ctx, "transaction rejected",
			logger.String("accountId", tx.AccountID),
			logger.String("type", tx.Type),
			logger.Error(err),
		)
		return repository.Result{}, fmt.Errorf("%w: %w", repository.ErrInvalidTransaction, err)
	}

	if tx.TxID != "" && s.deduper.SeenAndRecord(ctx, tx.TxID) {
		s.duplicateCount.Add(1)
		metrics.RecordTransactionDuplicate()
		s.logger.Debug(ctx, "duplicate transaction skipped",
			logger.String("txId", tx.TxID),
			logger.String("accountId", tx.AccountID),
		)
		acc, _ := s.store.GetAccount(ctx, tx.AccountID)
		return repository.Result{Account: acc, Duplicate: true}, nil
	}

	res, err := s.store.ApplyTransaction(ctx, tx)
	if err != nil {
		if tx.TxID != "" {
			s.deduper.Unrecord(ctx, tx.TxID)
		}
		s.logger.Warn(ctx, "transaction rejected",
			logger.String("accountId", tx.AccountID),
			logger.String("type", tx.Type),
			logger.Error(err),
		)
		return repository.Result{}, err
	}

	if res.Created {
		s.logger.Debug(ctx, "account created", logger.String("accountId", tx.AccountID))
	}
	if !res.Applied {
		s.logger.Debug(ctx, "transaction type ignored",
			logger.String("accountId", tx.AccountID),
			logger.String("type", tx.Type),
		)
	}
	return res, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":              s.started,
		"dedupeSize":           s.dedupeSize,
		"allowNegativeRewards": s.allowNegative,
		"genesisAccounts":      s.genesisSeeded,
		"duplicates":           s.duplicateCount.Load(),
	}
	if s.started {
		ctx := context.Background()
		accounts := s.store.Count(ctx)
		stats["accounts"] = accounts
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateAccountsTotal(accounts)
	}
	return stats
}
