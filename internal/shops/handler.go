package shops

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Handler wires HTTP endpoints for tenant management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	mw        auth.Middleware
}

// NewHandler constructs the shops handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), mw: mw}
}

// MountRoutes registers shop routes. Provisioning and listing are super
// admin only; settings are per-shop.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(auth.RoleSuperAdmin))
		r.Post("/shops", h.handleProvision)
		r.Get("/shops", h.handleList)
		r.Get("/shops/{id}", h.handleGet)
		r.Patch("/shops/{id}/active", h.handleSetActive)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermManageSettings))
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handleUpdateSettings)
	})
}

type provisionRequest struct {
	Name          string `json:"name" validate:"required"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	GSTIN         string `json:"gstin"`
	OwnerEmail    string `json:"ownerEmail" validate:"required,email"`
	OwnerName     string `json:"ownerName" validate:"required"`
	OwnerPassword string `json:"ownerPassword" validate:"required,min=8"`
}

func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	shop, owner, err := h.service.Provision(r.Context(), ProvisionInput{
		Name:          req.Name,
		Address:       req.Address,
		Phone:         req.Phone,
		GSTIN:         req.GSTIN,
		OwnerEmail:    req.OwnerEmail,
		OwnerName:     req.OwnerName,
		OwnerPassword: req.OwnerPassword,
		ActorID:       principal.UserID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("shop provisioned", "shop_id", shop.ID, "actor_id", principal.UserID)
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"shop": shop,
		"owner": map[string]any{
			"id":    owner.ID,
			"email": owner.Email,
			"name":  owner.Name,
			"role":  owner.Role,
		},
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shops)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	shop, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shop)
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active, principal.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	settings, err := h.service.GetSettings(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

type updateSettingsRequest struct {
	ShopName      string  `json:"shopName"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	InvoicePrefix string  `json:"invoicePrefix" validate:"required"`
	GSTPercent    float64 `json:"gstPercent" validate:"gte=0"`
	LowStockLevel float64 `json:"lowStockLevel" validate:"gte=0"`
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), Settings{
		ShopID:        shopID,
		ShopName:      req.ShopName,
		Currency:      req.Currency,
		InvoicePrefix: req.InvoicePrefix,
		GSTPercent:    req.GSTPercent,
		LowStockLevel: req.LowStockLevel,
	}, principal.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}
