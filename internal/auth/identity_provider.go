package auth

import (
	"context"
	"fmt"

	"github.com/etendy/backend/internal/models"
	"github.com/etendy/backend/internal/services"
)

// identityProvider reads the identity AuthMiddleware verified for the current request
type identityProvider struct {
	denylist Denylist
}

// NewIdentityProvider creates an identity provider backed by request contexts
func NewIdentityProvider(denylist Denylist) *identityProvider {
	return &identityProvider{denylist: denylist}
}

// CurrentUser returns the signed in user, or nil when the request carries no identity
func (p *identityProvider) CurrentUser(ctx context.Context) (*models.Identity, error) {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return nil, nil
	}
	return identity, nil
}

// SignOut denylists the token of the current request until it expires
func (p *identityProvider) SignOut(ctx context.Context) error {
	s, ok := ctx.Value(sessionKey).(*session)
	if !ok {
		return services.ErrUnauthenticated
	}

	if err := p.denylist.Revoke(ctx, s.tokenID, s.expiresAt); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}
