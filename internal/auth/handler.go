package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/rbac"
	"github.com/sipertani/sipertani/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	kit       *pages.Kit
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, kit *pages.Kit) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		kit:       kit,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/daftar", h.showRegister)
	r.Post("/daftar", h.handleRegister)
	r.Post("/keluar", h.handleLogout)
	r.Post("/tema", h.handleTheme)
}

func state(r *http.Request) *shared.SessionContext {
	if s := shared.StateFromContext(r.Context()); s != nil {
		return s
	}
	return shared.LoadSessionContext(nil)
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if s := state(r); s.Authenticated() && s.User != nil {
		http.Redirect(w, r, rbac.Home(s.Role()), http.StatusSeeOther)
		return
	}
	h.kit.Render(w, r, http.StatusOK, "pages/login.html", "Masuk", loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue(FieldUsername)),
		Password: r.PostFormValue(FieldPassword),
	}
	data := loginPageData{Username: form.Username}
	if err := h.validator.Struct(form); err != nil {
		data.Errors = fieldErrors(err)
		h.kit.Render(w, r, http.StatusBadRequest, "pages/login.html", "Masuk", data)
		return
	}

	token, user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			data.Error = "Username atau kata sandi salah"
		} else {
			h.logger.Warn("login failed", slog.String("username", form.Username), slog.Any("error", err))
			data.Error = "Gagal masuk: " + backend.Message(err)
		}
		h.kit.Render(w, r, http.StatusBadRequest, "pages/login.html", "Masuk", data)
		return
	}
	if !user.Role.Valid() {
		h.logger.Warn("login with unknown role", slog.String("username", form.Username), slog.String("role", string(user.Role)))
		h.kit.Render(w, r, http.StatusForbidden, "pages/login.html", "Masuk", loginPageData{
			Username: form.Username,
			Error:    "Peran akun tidak dikenali",
		})
		return
	}

	s := state(r)
	s.Token = token
	s.User = &user
	s.Save()
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if _, err := h.kit.CSRF.Rotate(sess); err != nil {
			h.logger.Warn("rotate csrf token", slog.Any("error", err))
		}
	}
	h.logger.Info("user signed in", slog.String("user_id", user.ID.String()), slog.String("role", string(user.Role)))
	h.kit.Redirect(w, r, rbac.Home(user.Role), pages.FlashSuccess, "Selamat datang, "+user.Name)
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.kit.Render(w, r, http.StatusOK, "pages/register.html", "Daftar", registerPageData{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		Name:     strings.TrimSpace(r.PostFormValue(FieldName)),
		Username: strings.TrimSpace(r.PostFormValue(FieldUsername)),
		Password: r.PostFormValue(FieldPassword),
	}
	data := registerPageData{Name: form.Name, Username: form.Username}
	if err := h.validator.Struct(form); err != nil {
		data.Errors = fieldErrors(err)
		h.kit.Render(w, r, http.StatusUnprocessableEntity, "pages/register.html", "Daftar", data)
		return
	}

	err := h.service.Register(r.Context(), form.Name, form.Username, form.Password)
	switch {
	case err == nil:
		h.kit.Redirect(w, r, rbac.LoginPath, pages.FlashSuccess, "Pendaftaran berhasil, silakan masuk")
		return
	case errors.Is(err, ErrUsernameTaken):
		data.Errors = map[string]string{FieldUsername: backend.Message(err)}
	default:
		h.logger.Warn("register failed", slog.String("username", form.Username), slog.Any("error", err))
		data.Error = "Pendaftaran gagal: " + backend.Message(err)
	}
	h.kit.Render(w, r, http.StatusUnprocessableEntity, "pages/register.html", "Daftar", data)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	state(r).Clear()
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if _, err := h.kit.CSRF.Rotate(sess); err != nil {
			h.logger.Warn("rotate csrf token", slog.Any("error", err))
		}
	}
	h.kit.Redirect(w, r, rbac.LoginPath, pages.FlashSuccess, "Anda telah keluar")
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	s := state(r)
	s.ToggleTheme()
	s.Save()
	http.Redirect(w, r, returnPath(r.PostFormValue("kembali"), rbac.Home(s.Role())), http.StatusSeeOther)
}

// returnPath accepts local absolute paths only.
func returnPath(raw, fallback string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	return raw
}
