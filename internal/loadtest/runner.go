package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/aether/pkg/logger"
)

// ErrVerification is returned when the ledger disagrees with accepted work.
var ErrVerification = errors.New("ledger verification failed")

// Run executes a complete load run: health check, generation, concurrent
// submission and ledger verification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")

	log.Info(ctx, "starting aether load run",
		logger.String("oracleURL", cfg.OracleURL),
		logger.String("ledgerURL", cfg.LedgerURL),
		logger.Int("accounts", cfg.Accounts),
		logger.Int("insights", cfg.Insights),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
	)

	if err := checkHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	insights, ids := generateInsights(cfg.Accounts, cfg.Insights)
	stats.InsightsGenerated = len(insights)

	expected := submitInsights(ctx, cfg, insights, stats)

	mismatches, err := verifyAccounts(ctx, cfg, ids, expected, stats)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	if err != nil {
		return stats, fmt.Errorf("verification aborted: %w", err)
	}

	log.Info(ctx, "load run completed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
		logger.Int("accountsVerified", stats.AccountsVerified),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("insightsPerSecond", float64(stats.Submitted)/stats.Duration.Seconds()),
	)

	if len(mismatches) > 0 {
		return stats, fmt.Errorf("%w: %d mismatches, first: %s", ErrVerification, len(mismatches), mismatches[0])
	}
	return stats, nil
}

// checkHealth requires every configured service to answer GET /.
func checkHealth(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)
	for _, url := range []string{cfg.OracleURL, cfg.LedgerURL, cfg.WeaverURL} {
		if url == "" {
			continue
		}
		status, _, err := client.get(ctx, url+"/")
		if err != nil {
			return fmt.Errorf("%s: %w", url, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("%s: status %d", url, status)
		}
	}
	return nil
}
