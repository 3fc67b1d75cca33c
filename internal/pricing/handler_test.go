package pricing

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/shared"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	repo := newMemoryRateRepo()
	repo.rates["shop-1"] = MetalRate{ShopID: "shop-1", GoldRate: 6000, SilverRate: 80, UpdatedAt: time.Now().UTC()}
	svc := NewRateService(repo, nil, time.Minute, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	NewHandler(logger, svc, auth.Middleware{}).MountRoutes(r)
	return r
}

func requestAs(t *testing.T, router chi.Router, principal *shared.Principal, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func shopManager() *shared.Principal {
	return &shared.Principal{
		UserID:      "user-1",
		ShopID:      "shop-1",
		Role:        string(auth.RoleShopManager),
		Permissions: []string{string(auth.PermViewInventory), string(auth.PermManageStock)},
	}
}

func TestGetRatesReadableByShopManager(t *testing.T) {
	// Managers price stock against the current rates, so reading them needs
	// only an authenticated session.
	router := newTestRouter(t)
	rec := requestAs(t, router, shopManager(), http.MethodGet, "/metal-rates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"goldRate":6000`)
}

func TestUpdateRatesForbiddenWithoutPermission(t *testing.T) {
	router := newTestRouter(t)
	rec := requestAs(t, router, shopManager(), http.MethodPatch, "/metal-rates", `{"goldRate":6500,"silverRate":85}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateRatesWithPermission(t *testing.T) {
	router := newTestRouter(t)
	owner := &shared.Principal{
		UserID:      "owner-1",
		ShopID:      "shop-1",
		Role:        string(auth.RoleShopOwner),
		Permissions: []string{string(auth.PermUpdateMetalRates)},
	}
	rec := requestAs(t, router, owner, http.MethodPatch, "/metal-rates", `{"goldRate":6500,"silverRate":85}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"goldRate":6500`)
}
