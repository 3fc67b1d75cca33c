package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Handler wires HTTP endpoints for authentication.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	mw        Middleware
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), mw: mw}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
		r.Group(func(r chi.Router) {
			r.Use(h.mw.RequirePermission(PermCreateShopManager))
			r.Post("/managers", h.handleCreateManager)
			r.Get("/users", h.handleListUsers)
		})
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	ShopID      string   `json:"shopId,omitempty"`
	Permissions []string `json:"permissions"`
}

func toUserResponse(u User) userResponse {
	perms := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		perms = append(perms, string(p))
	}
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		ShopID:      u.ShopID,
		Permissions: perms,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.logger.Error("logout", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, principal)
}

type createManagerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleCreateManager(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createManagerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.service.CreateManager(r.Context(), CreateManagerInput{
		ShopID:   shopID,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	shopID, err := shared.ShopScope(principal, r.URL.Query().Get("shop_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	users, err := h.service.ListShopUsers(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}
