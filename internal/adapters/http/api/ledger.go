package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/aether/internal/adapters/repository"
	"github.com/okian/aether/internal/domain/account"
)

// LedgerDependencies is what the ledger routes need.
type LedgerDependencies interface {
	GetAccount(ctx context.Context, id string) (account.Account, bool)
	ApplyTransaction(ctx context.Context, tx account.Transaction) (repository.Result, error)
}

// HeaderDuplicate marks a transaction response whose tx_id was already applied.
const HeaderDuplicate = "X-Aether-Duplicate"

// LedgerHandler handles account and transaction requests.
type LedgerHandler struct {
	deps LedgerDependencies
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(deps LedgerDependencies) *LedgerHandler {
	return &LedgerHandler{deps: deps}
}

// NewLedgerServer wires the ledger's routes.
func NewLedgerServer(deps LedgerDependencies, stats StatsProvider) *Server {
	h := NewLedgerHandler(deps)
	return newServer(NameLedger, stats,
		route{pattern: "/account/", endpoint: "account", handler: h.HandleGetAccount},
		route{pattern: "/transaction", endpoint: "transaction", handler: h.HandlePostTransaction},
	)
}

// HandleGetAccount handles GET /account/{id}. Unknown ids yield {}.
func (h *LedgerHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_account"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/account/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing account id")))
		return
	}

	acc, found := h.deps.GetAccount(r.Context(), id)
	if !found {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// HandlePostTransaction handles POST /transaction.
func (h *LedgerHandler) HandlePostTransaction(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_transaction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var tx account.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.ApplyTransaction(r.Context(), tx)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransaction) {
			writeError(w, http.StatusBadRequest, "invalid_transaction", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	if res.Duplicate {
		w.Header().Set(HeaderDuplicate, "true")
	}
	writeJSON(w, http.StatusOK, res.Account)
}
