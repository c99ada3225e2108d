// Package pages renders the console's resource pages: a table of scoped rows,
// stat cards, a chart and one modal form used for both create and edit.
package pages

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/rbac"
	"github.com/sipertani/sipertani/internal/resource"
	"github.com/sipertani/sipertani/internal/shared"
	"github.com/sipertani/sipertani/internal/view"
)

// Flash kinds understood by the layout.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "danger"
)

// Kit bundles what every console handler needs.
type Kit struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Backend   *backend.Client
	Policy    resource.Policy
	Recorder  resource.TransferRecorder
	Fallback  bool
	Now       func() time.Time
}

func (k *Kit) now() time.Time {
	if k.Now != nil {
		return k.Now()
	}
	return time.Now()
}

func (k *Kit) logger() *slog.Logger {
	if k.Logger != nil {
		return k.Logger
	}
	return slog.Default()
}

// Env is the per-request view of the signed-in user: the state from the
// session and a backend client bound to its token.
type Env struct {
	State  *shared.SessionContext
	Client *backend.Client

	expired atomic.Bool
}

// Env builds the request environment.
func (k *Kit) Env(r *http.Request) *Env {
	state := shared.StateFromContext(r.Context())
	if state == nil {
		state = shared.LoadSessionContext(nil)
	}
	return &Env{State: state, Client: k.Backend.WithToken(state.Token)}
}

// User returns the cached profile, nil when unknown.
func (e *Env) User() *farm.User {
	return e.State.User
}

// Expire marks the credential as rejected. Safe to call from concurrent
// loads.
func (e *Env) Expire() {
	e.expired.Store(true)
}

// Expired reports whether a call saw the credential rejected.
func (e *Env) Expired() bool {
	return e.expired.Load()
}

// Render writes a full page with the shared layout data.
func (k *Kit) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	state := shared.StateFromContext(r.Context())
	td := view.TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Theme:       shared.ThemeLight,
		Data:        data,
	}
	if sess != nil {
		token, err := k.CSRF.EnsureToken(sess)
		if err != nil {
			k.logger().Warn("csrf token", slog.Any("error", err))
		}
		td.CSRFToken = token
		td.Flash = sess.PopFlash()
	}
	if state != nil {
		td.User = state.User
		td.Theme = state.Theme
	}
	if err := k.Templates.RenderStatus(w, status, name, td); err != nil {
		k.logger().Error("render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Redirect flashes message and sends the browser to target.
func (k *Kit) Redirect(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && message != "" {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Expire clears the credential and redirects to the login page.
func (k *Kit) Expire(w http.ResponseWriter, r *http.Request) {
	rbac.Expire(w, r)
}
