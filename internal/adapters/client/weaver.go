package client

import "context"

// EventPoccSuccess is sent to the weaver after a reward is recorded.
const EventPoccSuccess = "pocc_success"

// TuneRequest is the body of POST /tune.
type TuneRequest struct {
	AccountID string `json:"accountId"`
	Event     string `json:"event"`
}

// TuneResponse is the weaver's acknowledgement.
type TuneResponse struct {
	Status string `json:"status"`
}

// Weaver notifies the weaver of account events.
type Weaver interface {
	Tune(ctx context.Context, accountID, event string) error
}

// WeaverClient implements Weaver over HTTP.
type WeaverClient struct {
	base
}

var _ Weaver = (*WeaverClient)(nil)

// NewWeaverClient targets the weaver at baseURL.
func NewWeaverClient(baseURL string, opts ...Option) *WeaverClient {
	return &WeaverClient{base: newBase("weaver", baseURL, opts...)}
}

// Tune posts the event to /tune.
func (c *WeaverClient) Tune(ctx context.Context, accountID, event string) error {
	var resp TuneResponse
	return c.postJSON(ctx, "/tune", TuneRequest{AccountID: accountID, Event: event}, &resp)
}
