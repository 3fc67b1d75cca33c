package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/catalog"
	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Handler wires HTTP endpoints for products.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	mw        auth.Middleware
}

// NewHandler constructs the products handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), mw: mw}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermViewInventory))
		r.Get("/products", h.handleList)
		r.Get("/products/{id}", h.handleGet)
		r.Get("/products/{id}/price", h.handleQuote)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermAddProduct))
		r.Post("/products", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermEditProduct))
		r.Put("/products/{id}", h.handleUpdate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermDeleteProduct))
		r.Delete("/products/{id}", h.handleDelete)
	})
}

func (h *Handler) shopScope(r *http.Request) (string, error) {
	principal := shared.PrincipalFromContext(r.Context())
	return shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	items, pagination, err := h.service.List(r.Context(), ListFilter{
		ShopID:  shopID,
		Search:  q.Get("search"),
		Status:  Status(q.Get("status")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Get(r.Context(), shopID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type createProductRequest struct {
	Name             string  `json:"name" validate:"required"`
	Category         string  `json:"category" validate:"required"`
	Metal            string  `json:"metal" validate:"required,oneof=Gold Silver"`
	SubCategory      string  `json:"subCategory"`
	SKU              string  `json:"sku"`
	Barcode          string  `json:"barcode"`
	HSNCode          string  `json:"hsnCode"`
	ItemType         string  `json:"itemType" validate:"required,oneof=Individual Group"`
	UnitWeight       float64 `json:"unitWeight" validate:"gte=0"`
	InitialQuantity  float64 `json:"initialQuantity" validate:"gte=0"`
	MakingCharge     float64 `json:"makingCharge" validate:"gte=0"`
	MakingChargeType string  `json:"makingChargeType" validate:"required,oneof=per_gram per_piece"`
	ProfitPercent    float64 `json:"profitPercent" validate:"gte=0"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	p, err := h.service.Create(r.Context(), CreateInput{
		ShopID:           shopID,
		Name:             req.Name,
		CategoryName:     req.Category,
		Metal:            catalog.MetalType(req.Metal),
		SubCategoryName:  req.SubCategory,
		SKU:              req.SKU,
		Barcode:          req.Barcode,
		HSNCode:          req.HSNCode,
		ItemType:         ItemType(req.ItemType),
		UnitWeight:       req.UnitWeight,
		InitialQuantity:  req.InitialQuantity,
		MakingCharge:     req.MakingCharge,
		MakingChargeType: pricing.MakingChargeType(req.MakingChargeType),
		ProfitPercent:    req.ProfitPercent,
		ActorID:          principal.UserID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("product created", "shop_id", shopID, "product_id", p.ID)
	httpx.JSON(w, http.StatusCreated, p)
}

type updateProductRequest struct {
	Name             string  `json:"name" validate:"required"`
	Category         string  `json:"category"`
	Metal            string  `json:"metal" validate:"omitempty,oneof=Gold Silver"`
	SubCategory      string  `json:"subCategory"`
	SKU              string  `json:"sku"`
	Barcode          string  `json:"barcode"`
	HSNCode          string  `json:"hsnCode"`
	ItemType         string  `json:"itemType" validate:"required,oneof=Individual Group"`
	Status           string  `json:"status" validate:"required,oneof=Active Inactive"`
	UnitWeight       float64 `json:"unitWeight" validate:"gte=0"`
	MakingCharge     float64 `json:"makingCharge" validate:"gte=0"`
	MakingChargeType string  `json:"makingChargeType" validate:"required,oneof=per_gram per_piece"`
	ProfitPercent    float64 `json:"profitPercent" validate:"gte=0"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	p, err := h.service.Update(r.Context(), UpdateInput{
		ShopID:           shopID,
		ProductID:        chi.URLParam(r, "id"),
		Name:             req.Name,
		CategoryName:     req.Category,
		Metal:            catalog.MetalType(req.Metal),
		SubCategoryName:  req.SubCategory,
		SKU:              req.SKU,
		Barcode:          req.Barcode,
		HSNCode:          req.HSNCode,
		ItemType:         ItemType(req.ItemType),
		Status:           Status(req.Status),
		UnitWeight:       req.UnitWeight,
		MakingCharge:     req.MakingCharge,
		MakingChargeType: pricing.MakingChargeType(req.MakingChargeType),
		ProfitPercent:    req.ProfitPercent,
		ActorID:          principal.UserID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), shopID, chi.URLParam(r, "id"), principal.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, quote, err := h.service.Quote(r.Context(), shopID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"product": p,
		"quote":   quote,
	})
}
