// Package rbac guards console routes by the role of the signed-in user.
package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/shared"
)

// LoginPath is where signed-out visitors are sent.
const LoginPath = "/auth/login"

// ExpiredMessage is flashed after the credential is discarded.
const ExpiredMessage = "Sesi berakhir, silakan masuk kembali"

// Home returns the landing page of role.
func Home(role farm.Role) string {
	switch role {
	case farm.RoleAdmin:
		return "/admin"
	case farm.RoleManager:
		return "/manajer"
	case farm.RoleBuyer:
		return "/pembeli"
	default:
		return LoginPath
	}
}

// Expire drops the credential and profile and sends the browser to the login
// page with a notice.
func Expire(w http.ResponseWriter, r *http.Request) {
	if state := shared.StateFromContext(r.Context()); state != nil {
		state.Clear()
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "warning", Message: ExpiredMessage})
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// ProfileFunc fetches the profile bound to token.
type ProfileFunc func(ctx context.Context, token string) (farm.User, error)

// Middleware wires role checks for HTTP handlers.
type Middleware struct {
	Logger  *slog.Logger
	Profile ProfileFunc
	Now     func() time.Time
}

// RequireRole admits signed-in users holding one of roles. Visitors without
// a credential are redirected to the login page; users of another role get
// 403. A missing cached profile is fetched once and kept in the session.
func (m Middleware) RequireRole(roles ...farm.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := shared.StateFromContext(r.Context())
			if !state.Authenticated() {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			if backend.TokenExpired(state.Token, m.now()) {
				Expire(w, r)
				return
			}
			if state.User == nil {
				if !m.resolve(w, r, state) {
					return
				}
			}
			if !slices.Contains(roles, state.User.Role) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) resolve(w http.ResponseWriter, r *http.Request, state *shared.SessionContext) bool {
	if m.Profile == nil {
		Expire(w, r)
		return false
	}
	user, err := m.Profile(r.Context(), state.Token)
	if err != nil {
		if backend.IsExpired(err) {
			Expire(w, r)
			return false
		}
		m.logger().Warn("rbac resolve profile", slog.Any("error", err))
		http.Error(w, backend.Message(err), http.StatusBadGateway)
		return false
	}
	state.User = &user
	return true
}

func (m Middleware) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
