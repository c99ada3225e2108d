package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipertani/sipertani/internal/admin"
	"github.com/sipertani/sipertani/internal/auth"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/observability"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/rbac"
	"github.com/sipertani/sipertani/internal/shared"
	"github.com/sipertani/sipertani/internal/view"
	_ "github.com/sipertani/sipertani/testing"
)

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	}))
	t.Cleanup(api.Close)

	templates, err := view.NewEngine()
	require.NoError(t, err)
	csrf := shared.NewCSRFManager("router-test")
	kit := &pages.Kit{Templates: templates, CSRF: csrf, Backend: backend.NewClient(api.URL, time.Second)}
	cfg := &Config{AppEnv: "development", AppRequestTimeout: 5 * time.Second}

	return NewRouter(RouterParams{
		Config:         cfg,
		SessionManager: shared.NewSessionManager(client, "sipertani_session", time.Hour, false),
		CSRFManager:    csrf,
		AuthHandler:    auth.NewHandler(nil, auth.NewService(kit.Backend), kit),
		AdminHandler:   admin.NewHandler(kit, rbac.Middleware{}),
		Metrics:        observability.NewMetrics(),
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRootRedirectsVisitorsToLogin(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, rbac.LoginPath, rec.Header().Get("Location"))
}

func TestConsoleRequiresSignIn(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, admin.Base+"/tanaman", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, rbac.LoginPath, rec.Header().Get("Location"))
}

func TestUnsafeRequestsNeedCSRFToken(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/tema", strings.NewReader(url.Values{"kembali": {"/auth/login"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionCarriesCSRFTokenAcrossRequests(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "sipertani_session", cookies[0].Name)
	match := csrfField.FindStringSubmatch(rec.Body.String())
	require.Len(t, match, 2)

	form := url.Values{"kembali": {"/auth/login"}, shared.CSRFFormField: {match[1]}}
	req := httptest.NewRequest(http.MethodPost, "/auth/tema", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sipertani_http_requests_total")
}

func TestStaticAssetsAreCached(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}
