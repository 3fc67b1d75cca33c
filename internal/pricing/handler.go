package pricing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Handler wires HTTP endpoints for metal rates.
type Handler struct {
	logger    *slog.Logger
	rates     *RateService
	validator *validator.Validate
	mw        auth.Middleware
}

// NewHandler constructs the pricing handler.
func NewHandler(logger *slog.Logger, rates *RateService, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, rates: rates, validator: validator.New(), mw: mw}
}

// MountRoutes registers metal rate routes. Reading rates needs only an
// authenticated session (managers price stock against them); writing is
// gated on UPDATE_METAL_RATES.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/metal-rates", h.handleGetRates)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermUpdateMetalRates))
		r.Patch("/metal-rates", h.handleUpdateRates)
	})
}

func (h *Handler) handleGetRates(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rate, err := h.rates.Get(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

type updateRatesRequest struct {
	GoldRate   float64 `json:"goldRate" validate:"gte=0"`
	SilverRate float64 `json:"silverRate" validate:"gte=0"`
}

func (h *Handler) handleUpdateRates(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateRatesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rate, err := h.rates.Update(r.Context(), UpdateInput{
		ShopID:     shopID,
		GoldRate:   req.GoldRate,
		SilverRate: req.SilverRate,
		ActorID:    principal.UserID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("metal rates updated", "shop_id", shopID, "actor_id", principal.UserID)
	httpx.JSON(w, http.StatusOK, rate)
}
