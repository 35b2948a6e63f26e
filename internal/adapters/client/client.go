// Package client holds the oracle's HTTP clients for the ledger and the
// weaver.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/aether/pkg/metrics"
)

const maxErrorBody = 512

type base struct {
	target  string
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func newBase(target, baseURL string, opts ...Option) base {
	b := base{
		target:  target,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// postJSON posts in to path and decodes the 2xx response into out.
func (b base) postJSON(ctx context.Context, path string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDownstreamLatency(b.target, float64(time.Since(start).Microseconds())/1000)
		if err != nil {
			metrics.RecordDownstreamError(b.target, KindOf(err))
		}
	}()

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", b.target, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w: %w", b.target, ErrConnection, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return classify(b.target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Target: b.target, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return classify(b.target, ctx.Err())
		}
		return fmt.Errorf("%s: %w: %w", b.target, ErrDecode, err)
	}
	return nil
}
