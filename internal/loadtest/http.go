package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/aether/internal/domain/insight"
	"github.com/okian/aether/pkg/logger"
)

// Submission outcomes.
const (
	resultAccepted    = "accepted"
	resultRateLimited = "rate_limited"
	resultFailed      = "failed"
)

const progressInterval = time.Second

// httpClient wraps http.Client with a per-request timeout.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *httpClient) postJSON(ctx context.Context, url string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *httpClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// expectation counts what a verified account should contain.
type expectation struct {
	total  int
	skills map[string]int
}

// submitInsights posts insights to the oracle with a pool of workers and
// returns, per account, what the ledger should now hold.
func submitInsights(ctx context.Context, cfg *Config, insights []Insight, stats *Stats) map[string]*expectation {
	log := logger.Get().Named("loadtest")
	log.Info(ctx, "submitting insights", logger.Int("insights", len(insights)), logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.OracleURL + "/pocc/analyze"

	var (
		submitted, accepted, limited, failed atomic.Int64

		mu       sync.Mutex
		expected = make(map[string]*expectation)
	)

	work := make(chan Insight, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range work {
				outcome := submitOne(ctx, client, url, in)
				submitted.Add(1)
				switch outcome {
				case resultAccepted:
					accepted.Add(1)
					mu.Lock()
					e, ok := expected[in.AccountID]
					if !ok {
						e = &expectation{skills: make(map[string]int)}
						expected[in.AccountID] = e
					}
					e.total++
					e.skills[insight.Skill(in.Text)]++
					mu.Unlock()
				case resultRateLimited:
					limited.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "insight failed", logger.String("accountId", in.AccountID))
					}
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Printf("\rsubmitted: %d/%d (accepted: %d, rate limited: %d, failed: %d)",
					submitted.Load(), len(insights), accepted.Load(), limited.Load(), failed.Load())
			}
		}
	}()

feed:
	for _, in := range insights {
		select {
		case <-ctx.Done():
			break feed
		case work <- in:
		}
	}
	close(work)
	wg.Wait()
	close(done)

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.RateLimited = int(limited.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
	)
	return expected
}

func submitOne(ctx context.Context, client *httpClient, url string, in Insight) string {
	status, body, err := client.postJSON(ctx, url, in)
	if err != nil {
		return resultFailed
	}
	switch status {
	case http.StatusOK:
		var resp struct {
			Guidance string `json:"guidance"`
		}
		if err := json.Unmarshal(body, &resp); err != nil || resp.Guidance == "" {
			return resultFailed
		}
		return resultAccepted
	case http.StatusTooManyRequests:
		return resultRateLimited
	default:
		return resultFailed
	}
}
