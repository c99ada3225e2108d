// Package pagestest runs console handlers against a scripted farm API.
package pagestest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/shared"
	"github.com/sipertani/sipertani/internal/view"
)

// Now is the fixed clock of every Console.
var Now = time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)

// Call is one request received by the API.
type Call struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

// Decode unmarshals the request body into v.
func (c Call) Decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(c.Body, v))
}

// API is a scripted backend. Unscripted requests fail the test.
type API struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
	server *httptest.Server
}

// NewAPI starts an API closed with the test.
func NewAPI(t *testing.T) *API {
	a := &API{t: t, routes: map[string]http.HandlerFunc{}}
	a.server = httptest.NewServer(http.HandlerFunc(a.serve))
	t.Cleanup(a.server.Close)
	return a
}

// URL is the base URL of the API.
func (a *API) URL() string { return a.server.URL }

// Handle scripts method and path.
func (a *API) Handle(method, path string, fn http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[method+" "+path] = fn
}

// Data answers method and path with {"data": body}.
func (a *API) Data(method, path string, body any) {
	a.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": body})
	})
}

// Status answers method and path with status and a message.
func (a *API) Status(method, path string, status int, message string) {
	a.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	})
}

// Calls returns the requests received for method and path.
func (a *API) Calls(method, path string) []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Call
	for _, c := range a.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (a *API) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	a.mu.Lock()
	a.calls = append(a.calls, Call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body})
	fn, ok := a.routes[r.Method+" "+r.URL.Path]
	a.mu.Unlock()
	if !ok {
		a.t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
		return
	}
	fn(w, r)
}

// Console wires a Kit to an API.
type Console struct {
	Kit      *pages.Kit
	API      *API
	sessions *shared.SessionManager
}

// New builds a Console with a fixed clock and fallback samples disabled.
func New(t *testing.T) *Console {
	t.Helper()
	api := NewAPI(t)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	return &Console{
		API: api,
		Kit: &pages.Kit{
			Templates: templates,
			CSRF:      shared.NewCSRFManager("pagestest"),
			Backend:   backend.NewClient(api.URL(), 5*time.Second),
			Now:       func() time.Time { return Now },
		},
		sessions: shared.NewSessionManager(nil, "pagestest", time.Hour, false),
	}
}

// Result is what a handler left behind.
type Result struct {
	*httptest.ResponseRecorder
	State   *shared.SessionContext
	Session *shared.Session
}

// Flash pops the flash queued by the handler.
func (r Result) Flash() *shared.FlashMessage {
	return r.Session.PopFlash()
}

// Do serves req through h as user, nil for a visitor.
func (c *Console) Do(t *testing.T, h http.Handler, req *http.Request, user *farm.User) Result {
	t.Helper()
	sess, err := c.sessions.Load(req.Context(), req)
	require.NoError(t, err)
	state := shared.LoadSessionContext(sess)
	if user != nil {
		state.Token = "token-" + user.ID.String()
		state.User = user
		state.Save()
	}
	ctx := shared.ContextWithState(shared.ContextWithSession(req.Context(), sess), state)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return Result{ResponseRecorder: rec, State: state, Session: sess}
}

// Get builds a GET request.
func Get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

// Post builds a form POST request.
func Post(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Admin, Manager and Buyer return signed-in profiles.
func Admin() *farm.User {
	return &farm.User{ID: 1, Name: "Admin", Username: "admin", Role: farm.RoleAdmin}
}

func Manager(id farm.ID) *farm.User {
	return &farm.User{ID: id, Name: "Manajer " + id.String(), Username: "manajer" + id.String(), Role: farm.RoleManager}
}

func Buyer(id farm.ID) *farm.User {
	return &farm.User{ID: id, Name: "Pembeli " + id.String(), Username: "pembeli" + id.String(), Role: farm.RoleBuyer}
}
