package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Handler wires HTTP endpoints for the catalog module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	mw        auth.Middleware
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), mw: mw}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermViewInventory))
		r.Get("/categories", h.handleListCategories)
		r.Get("/subcategories", h.handleListSubCategories)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermManageSettings))
		r.Post("/categories", h.handleCreateCategory)
		r.Delete("/categories/{id}", h.handleDeleteCategory)
		r.Post("/subcategories", h.handleCreateSubCategory)
		r.Delete("/subcategories/{id}", h.handleDeleteSubCategory)
	})
}

func (h *Handler) shopScope(r *http.Request) (string, error) {
	principal := shared.PrincipalFromContext(r.Context())
	return shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	categories, err := h.service.ListCategories(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) handleListSubCategories(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	subs, err := h.service.ListSubCategories(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, subs)
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=Gold Silver"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	category, err := h.service.ResolveCategory(r.Context(), shopID, req.Name, MetalType(req.Type))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), shopID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createSubCategoryRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
	Name       string `json:"name" validate:"required"`
}

func (h *Handler) handleCreateSubCategory(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createSubCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sub, err := h.service.ResolveSubCategory(r.Context(), shopID, req.CategoryID, req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleDeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteSubCategory(r.Context(), shopID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
