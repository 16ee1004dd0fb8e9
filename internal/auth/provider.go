package auth

import (
	"context"
	"net/http"
	"strings"
)

// Session is a verified caller session. AccessToken is forwarded to the
// captioning service as the caller's bearer credential.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
}

// Provider verifies a caller's bearer token and returns the session.
type Provider interface {
	Verify(ctx context.Context, token string) (*Session, error)
}

// BearerToken extracts the bearer token from a request, or "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
