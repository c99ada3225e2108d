package report

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPostsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "<p>struk</p>", string(data))
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL+"/", time.Second).RenderHTML(context.Background(), "<p>struk</p>")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf))
}

func TestRenderHTMLFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).RenderHTML(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chromium down")
}

func TestDisabledClient(t *testing.T) {
	client := NewClient("", 0)
	assert.False(t, client.Enabled())
	_, err := client.RenderHTML(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestPingRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
	}))
	defer srv.Close()

	cases := map[string]struct {
		url  string
		code int
		body string
	}{
		"ok":       {srv.URL, http.StatusOK, `{"status":"ok"}`},
		"disabled": {"", http.StatusOK, `{"status":"disabled"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			router := chi.NewRouter()
			NewHandler(NewClient(tc.url, time.Second), slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes(router)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}
