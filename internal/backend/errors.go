package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired is returned for 401/403 responses and for bearer
	// tokens whose exp claim has passed.
	ErrSessionExpired = errors.New("backend: session expired")
	// ErrNoToken is returned when an authenticated call has no credential.
	ErrNoToken = errors.New("backend: missing token")
)

// APIError is a non-2xx response other than 401/403.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Contains reports whether the server message mentions needle, ignoring case.
func (e *APIError) Contains(needle string) bool {
	if e == nil {
		return false
	}
	return strings.Contains(strings.ToLower(e.Message), strings.ToLower(needle))
}

// Message returns the text a user should see for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNoToken) {
		return "Sesi berakhir, silakan masuk kembali"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Status == http.StatusNotFound {
			return "Data tidak ditemukan"
		}
		return "Permintaan ditolak server (" + http.StatusText(apiErr.Status) + ")"
	}
	return "Server tidak dapat dihubungi"
}

// IsExpired reports whether err means the credential must be discarded.
func IsExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNoToken)
}
