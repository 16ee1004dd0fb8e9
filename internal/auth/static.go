package auth

import (
	"context"

	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// StaticProvider accepts a single configured token. Intended for LOCAL
// development and tests; an empty configured token accepts any bearer.
type StaticProvider struct {
	token string
}

func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

func (p *StaticProvider) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("Unauthorized")
	}
	if p.token != "" && token != p.token {
		return nil, errors.NewUnauthorizedError("Unauthorized")
	}
	return &Session{
		UserID:      "local-user",
		Email:       "local@dev",
		AccessToken: token,
	}, nil
}

var _ Provider = (*StaticProvider)(nil)
