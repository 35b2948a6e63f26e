// Package api declares HTTP contracts and route registration helpers for the
// ledger, oracle and weaver services.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// route is one registered path.
type route struct {
	pattern  string
	endpoint string
	handler  http.HandlerFunc
}

// Server wires HTTP routes for one service.
type Server struct {
	routes []route
}

func newServer(name string, stats StatsProvider, routes ...route) *Server {
	health := NewHealthHandler(name)
	base := []route{
		{pattern: "/", endpoint: "root", handler: health.HandleRoot},
		{pattern: "/metrics", endpoint: "metrics", handler: health.HandleMetrics},
		{pattern: "/stats", endpoint: "stats", handler: NewStatsHandler(stats).HandleStats},
	}
	return &Server{routes: append(base, routes...)}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	for _, r := range s.routes {
		mux.HandleFunc(r.pattern, MetricsMiddleware(r.handler, r.endpoint))
	}
}

// Handler returns a mux with every route registered, wrapped in CORS.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	s.Register(ctx, mux)
	return CORSMiddleware(mux)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// writeJSON encodes v before committing status, so an unencodable value
// becomes a 500 instead of a success with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "encode_error", Message: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON value from r into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return fmt.Errorf("malformed json: %w", err)
	}
	return nil
}
