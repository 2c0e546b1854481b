package tax

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/fincore/internal/platform/httpx"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Handler exposes the tax RPC methods.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the tax methods on an /rpc router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/CreateTaxConfiguration", h.createConfiguration)
	r.Post("/GetTaxConfiguration", h.getConfiguration)
	r.Post("/CalculateTax", h.calculateTax)
	r.Post("/CreateTaxPayable", h.createPayable)
	r.Post("/GetTaxPayable", h.getPayable)
	r.Post("/ListTaxPayables", h.listPayables)
	r.Post("/PayTaxPayable", h.pay)
	r.Post("/CalculateTaxPayable", h.calculatePayable)
}

func (h *Handler) createConfiguration(w http.ResponseWriter, r *http.Request) {
	var req createConfigurationRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	cfg, err := h.service.CreateTaxConfiguration(r.Context(), in)
	if err != nil {
		h.fail(w, "create tax configuration", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toConfigurationResponse(cfg))
}

func (h *Handler) getConfiguration(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := shared.ParseID("id", req.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	cfg, err := h.service.GetTaxConfiguration(r.Context(), id)
	if err != nil {
		h.fail(w, "get tax configuration", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toConfigurationResponse(cfg))
}

func (h *Handler) calculateTax(w http.ResponseWriter, r *http.Request) {
	var req calculateTaxRequest
	if !h.decode(w, r, &req) {
		return
	}
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	amount, err := shared.ParseMoney("amount", req.Amount)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		if date, err = shared.ParseDate(req.Date); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	calc, err := h.service.CalculateTax(r.Context(), orgID, amount, req.TaxCode, date)
	if err != nil {
		h.fail(w, "calculate tax", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCalculationResponse(calc))
}

func (h *Handler) createPayable(w http.ResponseWriter, r *http.Request) {
	var req createPayableRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.CreateTaxPayable(r.Context(), in)
	if err != nil {
		h.fail(w, "create tax payable", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPayableResponse(p))
}

func (h *Handler) getPayable(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := shared.ParseID("id", req.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.GetTaxPayable(r.Context(), id)
	if err != nil {
		h.fail(w, "get tax payable", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayableResponse(p))
}

func (h *Handler) listPayables(w http.ResponseWriter, r *http.Request) {
	var req listPayablesRequest
	if !h.decode(w, r, &req) {
		return
	}
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.ListTaxPayables(r.Context(), orgID, Type(req.Type))
	if err != nil {
		h.fail(w, "list tax payables", err)
		return
	}
	out := make([]payableResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPayableResponse(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tax_payables": out})
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput(r.Header.Get("Idempotency-Key"), shared.ActorFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.PayTaxPayable(r.Context(), in)
	if err != nil {
		h.fail(w, "pay tax payable", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payResponse{
		Payable:   toPayableResponse(res.Payable),
		PaymentID: res.Payment.ID.String(),
		Warning:   res.Warning,
	})
}

func (h *Handler) calculatePayable(w http.ResponseWriter, r *http.Request) {
	var req calculatePayableRequest
	if !h.decode(w, r, &req) {
		return
	}
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	calc, err := h.service.CalculateTaxPayable(r.Context(), orgID, Type(req.Type), req.Period)
	if err != nil {
		h.fail(w, "calculate tax payable", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayableCalculationResponse(calc))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
