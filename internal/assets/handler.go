package assets

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/platform/httpx"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Handler exposes the fixed-asset RPC methods.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the asset methods on an /rpc router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/CreateAsset", h.createAsset)
	r.Post("/GetAsset", h.getAsset)
	r.Post("/ListAssets", h.listAssets)
	r.Post("/CalculateDepreciation", h.calculate)
	r.Post("/CreateDepreciation", h.createDepreciation)
	r.Post("/CreateDepreciationSchedule", h.createSchedule)
	r.Post("/GetDepreciationSchedule", h.getSchedule)
	r.Post("/PostDepreciation", h.postDepreciation)
	r.Post("/CreateAssetDisposal", h.createDisposal)
	r.Post("/ApproveAssetDisposal", h.approveDisposal)
	r.Post("/DisposeAsset", h.disposeAsset)
	r.Post("/PostAssetDisposal", h.postDisposal)
	r.Post("/GetAssetDisposal", h.getDisposal)
	r.Post("/CreateAssetRevaluation", h.createRevaluation)
	r.Post("/PostAssetRevaluation", h.postRevaluation)
	r.Post("/GetAssetRevaluation", h.getRevaluation)
}

func (h *Handler) createAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	asset, err := h.service.CreateAsset(r.Context(), in)
	if err != nil {
		h.fail(w, "create asset", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAssetResponse(asset))
}

func (h *Handler) getAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		h.fail(w, "get asset", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssetResponse(asset))
}

func (h *Handler) listAssets(w http.ResponseWriter, r *http.Request) {
	var req listAssetsRequest
	if !h.decode(w, r, &req) {
		return
	}
	orgID, err := shared.ParseID("organization_id", req.OrganizationID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.ListAssets(r.Context(), orgID, AssetStatus(req.Status))
	if err != nil {
		h.fail(w, "list assets", err)
		return
	}
	out := make([]assetResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAssetResponse(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assets": out})
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !h.decode(w, r, &req) {
		return
	}
	assetID, err := shared.ParseID("asset_id", req.AssetID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	start, err := shared.ParseDate(req.PeriodStart)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	end, err := shared.ParseDate(req.PeriodEnd)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.CalculateDepreciation(r.Context(), assetID, start, end)
	if err != nil {
		h.fail(w, "calculate depreciation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"schedule": toScheduleResponse(rows)})
}

func (h *Handler) createDepreciation(w http.ResponseWriter, r *http.Request) {
	var req createDepreciationRequest
	if !h.decode(w, r, &req) {
		return
	}
	assetID, err := shared.ParseID("asset_id", req.AssetID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	dep, err := h.service.CreateDepreciation(r.Context(), assetID, req.Period)
	if err != nil {
		h.fail(w, "create depreciation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDepreciationResponse(dep))
}

func (h *Handler) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if !h.decode(w, r, &req) {
		return
	}
	assetID, err := shared.ParseID("asset_id", req.AssetID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.CreateSchedule(r.Context(), assetID, req.From, req.To)
	if err != nil {
		h.fail(w, "create depreciation schedule", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"depreciations": toDepreciationList(created)})
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	var req assetIDRequest
	if !h.decode(w, r, &req) {
		return
	}
	assetID, err := shared.ParseID("asset_id", req.AssetID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.GetDepreciationSchedule(r.Context(), assetID)
	if err != nil {
		h.fail(w, "get depreciation schedule", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"depreciations": toDepreciationList(list)})
}

func (h *Handler) postDepreciation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	dep, err := h.service.PostDepreciation(r.Context(), id, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, "post depreciation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDepreciationResponse(dep))
}

func (h *Handler) createDisposal(w http.ResponseWriter, r *http.Request) {
	var req createDisposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput(shared.ActorFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	d, err := h.service.CreateAssetDisposal(r.Context(), in)
	if err != nil {
		h.fail(w, "create asset disposal", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDisposalResponse(d))
}

func (h *Handler) approveDisposal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	d, err := h.service.ApproveAssetDisposal(r.Context(), id)
	if err != nil {
		h.fail(w, "approve asset disposal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDisposalResponse(d))
}

func (h *Handler) disposeAsset(w http.ResponseWriter, r *http.Request) {
	var req createDisposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput(shared.ActorFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	d, err := h.service.DisposeAsset(r.Context(), in)
	if err != nil {
		h.fail(w, "dispose asset", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDisposalResponse(d))
}

func (h *Handler) postDisposal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	d, err := h.service.PostAssetDisposal(r.Context(), id, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, "post asset disposal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDisposalResponse(d))
}

func (h *Handler) getDisposal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	d, err := h.service.GetDisposal(r.Context(), id)
	if err != nil {
		h.fail(w, "get asset disposal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDisposalResponse(d))
}

func (h *Handler) createRevaluation(w http.ResponseWriter, r *http.Request) {
	var req createRevaluationRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toInput(shared.ActorFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rv, err := h.service.CreateAssetRevaluation(r.Context(), in)
	if err != nil {
		h.fail(w, "create asset revaluation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRevaluationResponse(rv))
}

func (h *Handler) postRevaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	rv, err := h.service.PostAssetRevaluation(r.Context(), id, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, "post asset revaluation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRevaluationResponse(rv))
}

func (h *Handler) getRevaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	rv, err := h.service.GetRevaluation(r.Context(), id)
	if err != nil {
		h.fail(w, "get asset revaluation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRevaluationResponse(rv))
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
