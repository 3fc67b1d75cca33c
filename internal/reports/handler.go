package reports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Handler wires HTTP endpoints for reporting.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      auth.Middleware
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequirePermission(auth.PermViewReports))
		r.Get("/reports/stock", h.handleStockReport)
		r.Get("/reports/low-stock", h.handleLowStock)
		r.Get("/reports/transactions", h.handleTransactions)
	})
}

func (h *Handler) shopScope(r *http.Request) (string, error) {
	principal := shared.PrincipalFromContext(r.Context())
	return shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
}

func (h *Handler) handleStockReport(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.StockReport(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="stock-report.csv"`)
		if err := WriteStockReportCSV(w, report); err != nil {
			h.logger.Error("stock report csv write failed", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="stock-report.xlsx"`)
		if err := WriteStockReportXLSX(w, report); err != nil {
			h.logger.Error("stock report xlsx write failed", "error", err)
		}
	default:
		httpx.JSON(w, http.StatusOK, report)
	}
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.LowStock(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopScope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txns, err := h.service.Transactions(r.Context(), shopID, r.URL.Query().Get("product_id"), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="stock-transactions.csv"`)
		if err := WriteTransactionsCSV(w, txns); err != nil {
			h.logger.Error("transactions csv write failed", "error", err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, txns)
}
