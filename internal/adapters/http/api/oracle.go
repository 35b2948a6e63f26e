package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/aether/internal/adapters/client"
	"github.com/okian/aether/internal/platform/ratelimiter"
)

// OracleDependencies is what the oracle routes need.
type OracleDependencies interface {
	// Analyze scores text, records the reward for accountID and returns
	// the guidance message.
	Analyze(ctx context.Context, accountID, text string) (string, error)
}

// AnalyzeRequest is the body of POST /pocc/analyze.
type AnalyzeRequest struct {
	Text      string `json:"text"`
	AccountID string `json:"accountId"`
}

// AnalyzeResponse is returned on success.
type AnalyzeResponse struct {
	Guidance string `json:"guidance"`
}

// BackendUnavailable is the error message for any downstream failure.
const BackendUnavailable = "backend service unavailable"

type downstreamErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// OracleHandler handles insight analysis requests.
type OracleHandler struct {
	deps OracleDependencies
}

// NewOracleHandler creates a new oracle handler.
func NewOracleHandler(deps OracleDependencies) *OracleHandler {
	return &OracleHandler{deps: deps}
}

// NewOracleServer wires the oracle's routes.
func NewOracleServer(deps OracleDependencies, stats StatsProvider) *Server {
	h := NewOracleHandler(deps)
	return newServer(NameOracle, stats,
		route{pattern: "/pocc/analyze", endpoint: "analyze", handler: h.HandleAnalyze},
	)
}

// HandleAnalyze handles POST /pocc/analyze.
func (h *OracleHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.AccountID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing accountId")))
		return
	}

	guidance, err := h.deps.Analyze(r.Context(), req.AccountID, req.Text)
	if err != nil {
		if errors.Is(err, ratelimiter.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ratelimiter.ErrRateLimited))
			return
		}
		kind := client.KindOf(err)
		status := http.StatusBadGateway
		if kind == client.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, downstreamErrorResponse{Error: BackendUnavailable, Kind: kind})
		return
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{Guidance: guidance})
}
