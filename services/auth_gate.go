package services

import (
	"context"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/models"
	"github.com/cppla/commentbox/utils"
)

// AuthGate resolves the current user from a session token.
type AuthGate struct {
	tokens      *utils.TokenService
	credentials *CredentialStore
	revoked     *utils.TokenBlacklist // nil when logout revocation is off
	logger      *zap.Logger
}

func NewAuthGate(tokens *utils.TokenService, credentials *CredentialStore, revoked *utils.TokenBlacklist, logger *zap.Logger) *AuthGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthGate{
		tokens:      tokens,
		credentials: credentials,
		revoked:     revoked,
		logger:      logger.Named("auth_gate"),
	}
}

// ResolveCurrentUser verifies token and loads the user it names.
// A missing, malformed, tampered, expired or revoked token, or a token naming a
// user that no longer exists, yields CodeUnauthenticated. Only store failures
// while loading the user surface as CodeStoreFailure.
func (g *AuthGate) ResolveCurrentUser(ctx context.Context, token string) (*models.User, *utils.Claims, error) {
	if token == "" {
		return nil, nil, oops.Code(CodeUnauthenticated).Errorf("session token missing")
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("session token rejected", zap.Error(err))
		return nil, nil, oops.Code(CodeUnauthenticated).Wrap(err)
	}

	if g.revoked != nil && g.revoked.IsRevoked(ctx, token) {
		return nil, nil, oops.Code(CodeUnauthenticated).Errorf("session token revoked")
	}

	user, err := g.credentials.FindByID(ctx, claims.UserID)
	if err != nil {
		if HasCode(err, CodeUserNotFound) {
			return nil, nil, oops.Code(CodeUnauthenticated).With("user_id", claims.UserID).Errorf("session user no longer exists")
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Revoke puts token on the revocation list until its expiry. It is a no-op when
// revocation is disabled or the token does not verify.
func (g *AuthGate) Revoke(ctx context.Context, token string) error {
	if g.revoked == nil || token == "" {
		return nil
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil
	}
	if err := g.revoked.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return oops.Code(CodeStoreFailure).With("operation", "revoke token").Wrap(err)
	}
	return nil
}
