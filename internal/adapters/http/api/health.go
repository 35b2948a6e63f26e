package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/aether/pkg/metrics"
)

// Service display names reported by GET /.
const (
	NameLedger = "State Ledger"
	NameOracle = "Oracle AI"
	NameWeaver = "Aether Weaver"
)

// HealthHandler answers liveness and metrics requests.
type HealthHandler struct {
	status  string
	metrics http.Handler
}

// NewHealthHandler creates a health handler for the named service.
func NewHealthHandler(name string) *HealthHandler {
	return &HealthHandler{
		status:  "online - " + name,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleRoot handles GET /. Any other path under / is a 404.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: h.status})
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
