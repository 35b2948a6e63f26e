package api

import (
	"context"
	"net/http"

	"github.com/okian/aether/internal/domain/model"
)

// WeaverDependencies is what the weaver routes need.
type WeaverDependencies interface {
	// Tune accepts an event. Dropped events are not an error to the caller.
	Tune(ctx context.Context, e model.TuneEvent)
}

// StatusTuned is the only successful /tune reply.
const StatusTuned = "tuned"

// WeaverHandler handles tune requests.
type WeaverHandler struct {
	deps WeaverDependencies
}

// NewWeaverHandler creates a new weaver handler.
func NewWeaverHandler(deps WeaverDependencies) *WeaverHandler {
	return &WeaverHandler{deps: deps}
}

// NewWeaverServer wires the weaver's routes.
func NewWeaverServer(deps WeaverDependencies, stats StatsProvider) *Server {
	h := NewWeaverHandler(deps)
	return newServer(NameWeaver, stats,
		route{pattern: "/tune", endpoint: "tune", handler: h.HandleTune},
	)
}

// HandleTune handles POST /tune. Any decodable body is acknowledged.
func (h *WeaverHandler) HandleTune(w http.ResponseWriter, r *http.Request) {
	const op = "api.tune"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var e model.TuneEvent
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.deps.Tune(r.Context(), e)
	writeJSON(w, http.StatusOK, statusResponse{Status: StatusTuned})
}
