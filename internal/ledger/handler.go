package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// IdempotencyPort guards against duplicate movement submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validator   *validator.Validate
	mw          auth.Middleware
	idempotency IdempotencyPort
}

// NewHandler constructs the ledger handler. idempotency may be nil, which
// disables duplicate-request detection.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware, idempotency IdempotencyPort) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), mw: mw, idempotency: idempotency}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermViewInventory))
		r.Get("/transactions", h.handleList)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermManageStock))
		r.Post("/transactions", h.handleRecord)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermViewReports))
		r.Get("/audit", h.handleAudit)
	})
}

type recordRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Type      string  `json:"type" validate:"required,oneof=STOCK_IN STOCK_OUT"`
	Quantity  float64 `json:"quantity" validate:"gte=0"`
	Weight    float64 `json:"weight" validate:"gte=0"`
	Reason    string  `json:"reason" validate:"required,oneof=Purchase Return Adjustment Sale Damage Transfer Other"`
}

type recordResponse struct {
	Transaction Transaction `json:"transaction"`
	Quantity    float64     `json:"quantity"`
	Weight      float64     `json:"weight"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	idemKey := r.Header.Get("Idempotency-Key")
	if h.idempotency != nil && idemKey != "" {
		if err := h.idempotency.CheckAndInsert(r.Context(), idemKey, "ledger"); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	txn, totals, err := h.service.RecordTransaction(r.Context(), MovementInput{
		ShopID:    shopID,
		ProductID: req.ProductID,
		Type:      TransactionType(req.Type),
		Quantity:  req.Quantity,
		Weight:    req.Weight,
		Reason:    Reason(req.Reason),
		ActorID:   principal.UserID,
	})
	if err != nil {
		// A failed movement should not burn the key; the client retries
		// with the same one after fixing the request.
		if h.idempotency != nil && idemKey != "" {
			if delErr := h.idempotency.Delete(r.Context(), idemKey); delErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, recordResponse{Transaction: txn, Quantity: totals.Quantity, Weight: totals.Weight})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txns, err := h.service.ListTransactions(r.Context(), ListFilter{
		ShopID:    shopID,
		ProductID: r.URL.Query().Get("product_id"),
		Limit:     limit,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txns)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	drifts, err := h.service.Audit(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("ledger audit", slog.String("shop_id", shopID), slog.Int("drifted", len(drifts)))
	httpx.JSON(w, http.StatusOK, map[string]any{"drifted": drifts, "clean": len(drifts) == 0})
}
