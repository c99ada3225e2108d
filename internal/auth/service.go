package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
)

var (
	// ErrInvalidCredentials is returned when the API rejects a login.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUsernameTaken is returned when registration hits an existing account.
	ErrUsernameTaken = errors.New("auth: username already registered")
)

// Service signs users in and up against the farm API.
type Service struct {
	backend *backend.Client
}

// NewService constructs a new Service.
func NewService(client *backend.Client) *Service {
	return &Service{backend: client}
}

// Authenticate exchanges credentials for a token and resolves the profile.
// The profile comes from the login response when present, otherwise from the
// current-user endpoint.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, farm.User, error) {
	res, err := s.backend.Login(ctx, backend.Credentials{Username: username, Password: password})
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized ||
			apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusBadRequest ||
			apiErr.Status == http.StatusNotFound) {
			return "", farm.User{}, ErrInvalidCredentials
		}
		return "", farm.User{}, err
	}
	if res.User != nil && res.User.ID != 0 && res.User.Role.Valid() {
		return res.Token, *res.User, nil
	}
	user, err := s.Profile(ctx, res.Token)
	if err != nil {
		return "", farm.User{}, err
	}
	return res.Token, user, nil
}

// Profile fetches the user bound to token.
func (s *Service) Profile(ctx context.Context, token string) (farm.User, error) {
	return s.backend.WithToken(token).CurrentUser(ctx)
}

// Register creates a buyer account.
func (s *Service) Register(ctx context.Context, name, username, password string) error {
	err := s.backend.Register(ctx, backend.Registration{
		Username: username,
		Name:     name,
		Password: password,
		Role:     farm.RoleBuyer,
	})
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusConflict || apiErr.Contains("username")) {
		return errors.Join(ErrUsernameTaken, err)
	}
	return err
}
