package shared

import (
	"encoding/json"

	"github.com/sipertani/sipertani/internal/farm"
)

// Session keys holding the signed-in state.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyTheme = "theme"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// SessionContext is the signed-in state of one browser: the bearer token,
// the cached profile and the theme preference.
type SessionContext struct {
	Token string
	User  *farm.User
	Theme string

	sess *Session
}

// LoadSessionContext reads the signed-in state from sess. A missing or
// unreadable profile leaves User nil.
func LoadSessionContext(sess *Session) *SessionContext {
	c := &SessionContext{Theme: ThemeLight, sess: sess}
	if sess == nil {
		return c
	}
	c.Token = sess.Get(KeyToken)
	if raw := sess.Get(KeyUser); raw != "" {
		var user farm.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil && user.ID != 0 {
			c.User = &user
		}
	}
	if sess.Get(KeyTheme) == ThemeDark {
		c.Theme = ThemeDark
	}
	return c
}

// Save writes the state back into the session.
func (c *SessionContext) Save() {
	if c.sess == nil {
		return
	}
	if c.Token == "" {
		c.sess.Delete(KeyToken)
	} else {
		c.sess.Set(KeyToken, c.Token)
	}
	if c.User == nil {
		c.sess.Delete(KeyUser)
	} else {
		profile := *c.User
		profile.Password = ""
		data, _ := json.Marshal(profile)
		c.sess.Set(KeyUser, string(data))
	}
	c.sess.Set(KeyTheme, c.Theme)
}

// Clear drops the credential and profile. The theme survives sign-out.
func (c *SessionContext) Clear() {
	c.Token = ""
	c.User = nil
	c.Save()
}

// Authenticated reports whether a credential is present.
func (c *SessionContext) Authenticated() bool {
	return c != nil && c.Token != ""
}

// Role returns the role of the cached profile.
func (c *SessionContext) Role() farm.Role {
	if c == nil || c.User == nil {
		return ""
	}
	return c.User.Role
}

// ToggleTheme switches between light and dark.
func (c *SessionContext) ToggleTheme() string {
	if c.Theme == ThemeDark {
		c.Theme = ThemeLight
	} else {
		c.Theme = ThemeDark
	}
	return c.Theme
}
