package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// GoTrueProvider verifies tokens against a GoTrue-style auth service by
// fetching the user record with the presented bearer token.
type GoTrueProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGoTrueProvider(baseURL string, logger *slog.Logger) *GoTrueProvider {
	return &GoTrueProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (p *GoTrueProvider) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("Unauthorized")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user", nil)
	if err != nil {
		return nil, errors.WrapInternalError(err, "failed to build auth request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnauthorized, "Unauthorized")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Debug("Auth verification rejected", "status", resp.StatusCode)
		return nil, errors.NewUnauthorizedError("Unauthorized")
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnauthorized, "Unauthorized")
	}

	return &Session{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
	}, nil
}

var _ Provider = (*GoTrueProvider)(nil)
