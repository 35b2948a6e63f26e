// Package oracle provides the insight oracle service: it scores an insight,
// records the reward on the ledger and notifies the weaver.
package oracle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/aether/internal/adapters/client"
	"github.com/okian/aether/internal/domain/insight"
	"github.com/okian/aether/internal/platform/ratelimiter"
	"github.com/okian/aether/pkg/logger"
	"github.com/okian/aether/pkg/metrics"
)

// Analysis outcomes recorded in metrics.
const (
	outcomeSuccess     = "success"
	outcomeLedgerError = "ledger_error"
	outcomeWeaverError = "weaver_error"
	outcomeScoreError  = "score_error"
)

const (
	defaultLedgerURL = "http://localhost:10001"
	defaultWeaverURL = "http://localhost:10003"
	defaultTimeout   = 5 * time.Second
)

// Service implements the oracle's HTTP dependencies.
type Service struct {
	mu sync.RWMutex

	scorer  insight.Scorer
	ledger  client.Ledger
	weaver  client.Weaver
	limiter *ratelimiter.KeyLimiter
	newTxID func() string

	ledgerURL string
	weaverURL string
	timeout   time.Duration
	rateRPS   float64
	rateBurst int

	analyses    atomic.Int64
	failures    atomic.Int64
	rateLimited atomic.Int64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLedgerURL sets the ledger base URL used when no Ledger is injected.
func WithLedgerURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.ledgerURL = url
		}
	}
}

// WithWeaverURL sets the weaver base URL used when no Weaver is injected.
func WithWeaverURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.weaverURL = url
		}
	}
}

// WithTimeout bounds each downstream call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRateLimit allows rps analyses per account with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Service) {
		s.rateRPS = rps
		s.rateBurst = burst
	}
}

// WithScorer replaces the default VADER-backed scorer.
func WithScorer(sc insight.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithLedger injects the ledger client.
func WithLedger(l client.Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithWeaver injects the weaver client.
func WithWeaver(w client.Weaver) Option {
	return func(s *Service) {
		if w != nil {
			s.weaver = w
		}
	}
}

// WithTxIDGenerator replaces uuid transaction ids.
func WithTxIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newTxID = gen
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

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		ledgerURL: defaultLedgerURL,
		weaverURL: defaultWeaverURL,
		timeout:   defaultTimeout,
		newTxID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds whatever was not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("oracle")
	}
	if s.scorer == nil {
		s.scorer = insight.NewRuleScorer()
	}
	if s.ledger == nil {
		s.ledger = client.NewLedgerClient(s.ledgerURL, client.WithTimeout(s.timeout))
	}
	if s.weaver == nil {
		s.weaver = client.NewWeaverClient(s.weaverURL, client.WithTimeout(s.timeout))
	}
	s.limiter = ratelimiter.New(s.rateRPS, s.rateBurst, 0)

	s.started = true
	s.logger.Info(ctx, "oracle service started",
		logger.String("ledgerURL", s.ledgerURL),
		logger.String("weaverURL", s.weaverURL),
		logger.String("timeout", s.timeout.String()),
		logger.Float64("rateLimitRPS", s.rateRPS),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "oracle service stopped")
}

// Analyze scores text, posts the reward to the ledger, then tells the weaver.
// Downstream failures keep their client error kind.
func (s *Service) Analyze(ctx context.Context, accountID, text string) (string, error) {
	s.analyses.Add(1)

	if !s.limiter.Allow(accountID, time.Now()) {
		s.rateLimited.Add(1)
		metrics.RecordRateLimited()
		return "", fmt.Errorf("account %s: %w", accountID, ratelimiter.ErrRateLimited)
	}

	res, err := s.scorer.Score(ctx, text)
	if err != nil {
		return "", s.fail(ctx, "", outcomeScoreError, accountID, fmt.Errorf("score insight: %w", err))
	}
	metrics.RecordSentiment(res.Sentiment)

	tx := res.Transaction(s.newTxID(), accountID)
	if _, err := s.ledger.ApplyTransaction(ctx, tx); err != nil {
		return "", s.fail(ctx, res.Skill, outcomeLedgerError, accountID, fmt.Errorf("record reward: %w", err))
	}
	metrics.RecordReward(res.Fex)

	if err := s.weaver.Tune(ctx, accountID, client.EventPoccSuccess); err != nil {
		return "", s.fail(ctx, res.Skill, outcomeWeaverError, accountID, fmt.Errorf("notify weaver: %w", err))
	}

	metrics.RecordAnalysis(res.Skill, outcomeSuccess)
	s.logger.Debug(ctx, "insight analyzed",
		logger.String("accountId", accountID),
		logger.String("txId", tx.TxID),
		logger.String("skill", res.Skill),
		logger.Float64("fex", res.Fex),
		logger.Float64("su", res.SU),
		logger.Float64("sentiment", res.Sentiment),
	)
	return res.Guidance, nil
}

func (s *Service) fail(ctx context.Context, skill, outcome, accountID string, err error) error {
	s.failures.Add(1)
	metrics.RecordAnalysis(skill, outcome)
	metrics.RecordErrorByComponent("oracle", outcome)
	s.logger.Error(ctx, "analysis failed",
		logger.String("accountId", accountID),
		logger.String("kind", client.KindOf(err)),
		logger.Error(err),
	)
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":         s.started,
		"ledgerURL":       s.ledgerURL,
		"weaverURL":       s.weaverURL,
		"timeoutMs":       s.timeout.Milliseconds(),
		"analyses":        s.analyses.Load(),
		"failures":        s.failures.Load(),
		"rateLimited":     s.rateLimited.Load(),
		"rateLimitedKeys": s.limiter.Len(),
	}
}
