package backend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sipertani/sipertani/internal/farm"
)

// ErrNoTokenIssued is returned when a login response carries no token.
var ErrNoTokenIssued = errors.New("backend: login response without token")

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the self-service sign-up payload.
type Registration struct {
	Username string    `json:"username"`
	Name     string    `json:"nama"`
	Password string    `json:"password"`
	Role     farm.Role `json:"role"`
}

// LoginResult carries the issued token and, when the API includes it, the
// profile of the signed-in user.
type LoginResult struct {
	Token string
	User  *farm.User
}

type loginPayload struct {
	Token       string     `json:"token"`
	AccessToken string     `json:"access_token"`
	User        *farm.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	body, err := c.PostAnonymous(ctx, PathLogin, creds)
	if err != nil {
		return LoginResult{}, err
	}
	var top loginPayload
	_ = json.Unmarshal(body, &top)
	result := LoginResult{Token: firstNonEmpty(top.Token, top.AccessToken), User: top.User}

	env := normalize(body)
	if len(env.Data) > 0 && env.Data[0] == '{' {
		var inner loginPayload
		if err := json.Unmarshal(env.Data, &inner); err == nil {
			if result.Token == "" {
				result.Token = firstNonEmpty(inner.Token, inner.AccessToken)
			}
			if result.User == nil {
				result.User = inner.User
			}
		}
	}
	if result.Token == "" {
		return LoginResult{}, ErrNoTokenIssued
	}
	return result, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	_, err := c.PostAnonymous(ctx, PathRegister, reg)
	return err
}

// CurrentUser fetches the profile bound to the client's token.
func (c *Client) CurrentUser(ctx context.Context) (farm.User, error) {
	user, err := Fetch[farm.User](ctx, c, PathCurrentUser)
	if err != nil {
		return farm.User{}, err
	}
	if user.ID == 0 {
		return farm.User{}, errors.New("backend: current user without id")
	}
	return user, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
