package banking

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/platform/httpx"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Handler exposes the banking RPC methods.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the banking methods on an /rpc router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/CreateBankAccount", h.createAccount)
	r.Post("/GetBankAccount", h.getAccount)
	r.Post("/CreateBankTransaction", h.createTransaction)
	r.Post("/DeleteBankTransaction", h.deleteTransaction)
	r.Post("/ListBankTransactions", h.listTransactions)
	r.Post("/CreateCheque", h.createCheque)
	r.Post("/GetCheque", h.getCheque)
	r.Post("/DepositCheque", h.depositCheque)
	r.Post("/ClearCheque", h.clearCheque)
	r.Post("/DeleteCheque", h.deleteCheque)
	r.Post("/CreateBankReconciliation", h.createReconciliation)
	r.Post("/GetBankReconciliation", h.getReconciliation)
	r.Post("/GetUnmatchedTransactions", h.unmatched)
	r.Post("/MatchTransactions", h.match)
	r.Post("/CompleteReconciliation", h.complete)
	r.Post("/DeleteBankReconciliation", h.deleteReconciliation)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	acc, err := h.service.CreateBankAccount(r.Context(), in)
	if err != nil {
		h.fail(w, "create bank account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	acc, err := h.service.GetBankAccount(r.Context(), id)
	if err != nil {
		h.fail(w, "get bank account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput(r.Header.Get("Idempotency-Key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	txn, err := h.service.CreateBankTransaction(r.Context(), in)
	if err != nil {
		h.fail(w, "create bank transaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionResponse(txn))
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteBankTransaction(r.Context(), id); err != nil {
		h.fail(w, "delete bank transaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	var req accountIDRequest
	if !h.decode(w, r, &req) {
		return
	}
	accountID, err := shared.ParseID("bank_account_id", req.BankAccountID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.ListBankTransactions(r.Context(), accountID)
	if err != nil {
		h.fail(w, "list bank transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": toTransactionList(list)})
}

func (h *Handler) createCheque(w http.ResponseWriter, r *http.Request) {
	var req createChequeRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.CreateCheque(r.Context(), in)
	if err != nil {
		h.fail(w, "create cheque", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toChequeResponse(c))
}

func (h *Handler) getCheque(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	c, err := h.service.GetCheque(r.Context(), id)
	if err != nil {
		h.fail(w, "get cheque", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toChequeResponse(c))
}

func (h *Handler) depositCheque(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	c, err := h.service.DepositCheque(r.Context(), id)
	if err != nil {
		h.fail(w, "deposit cheque", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toChequeResponse(c))
}

func (h *Handler) clearCheque(w http.ResponseWriter, r *http.Request) {
	var req clearChequeRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := shared.ParseID("id", req.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var date time.Time
	if req.ClearedDate != "" {
		if date, err = shared.ParseDate(req.ClearedDate); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	c, err := h.service.ClearCheque(r.Context(), id, date)
	if err != nil {
		h.fail(w, "clear cheque", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toChequeResponse(c))
}

func (h *Handler) deleteCheque(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCheque(r.Context(), id); err != nil {
		h.fail(w, "delete cheque", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) createReconciliation(w http.ResponseWriter, r *http.Request) {
	var req createReconciliationRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.CreateBankReconciliation(r.Context(), in)
	if err != nil {
		h.fail(w, "create bank reconciliation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toReconciliationResponse(rec))
}

func (h *Handler) getReconciliation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.GetBankReconciliation(r.Context(), id)
	if err != nil {
		h.fail(w, "get bank reconciliation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReconciliationResponse(rec))
}

func (h *Handler) unmatched(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	list, err := h.service.GetUnmatchedTransactions(r.Context(), id)
	if err != nil {
		h.fail(w, "get unmatched transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": toTransactionList(list)})
}

func (h *Handler) match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := shared.ParseID("reconciliation_id", req.ReconciliationID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	matches, err := req.toMatches()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.MatchTransactions(r.Context(), id, matches)
	if err != nil {
		h.fail(w, "match transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMatchResponse(res))
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := shared.ParseID("id", req.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.CompleteReconciliation(r.Context(), id, req.Notes)
	if err != nil {
		h.fail(w, "complete reconciliation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReconciliationResponse(rec))
}

func (h *Handler) deleteReconciliation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteBankReconciliation(r.Context(), id); err != nil {
		h.fail(w, "delete bank reconciliation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	return true
}

func (h *Handler) decodeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req idRequest
	if !h.decode(w, r, &req) {
		return uuid.Nil, false
	}
	id, err := shared.ParseID("id", req.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
