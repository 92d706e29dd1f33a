package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/config"
	"github.com/cppla/commentbox/models"
	"github.com/cppla/commentbox/services"
	"github.com/cppla/commentbox/utils"
)

// ContextUserKey is the gin context key holding the authenticated *models.User.
const ContextUserKey = "current_user"

// SessionCookie reads and writes the session-token cookie.
type SessionCookie struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// NewSessionCookie derives cookie attributes from the auth config.
func NewSessionCookie(cfg config.AuthSection) SessionCookie {
	return SessionCookie{
		Name:     cfg.CookieName,
		Domain:   cfg.CookieDomain,
		Secure:   cfg.CookieSecure,
		SameSite: parseSameSite(cfg.CookieSameSite),
	}
}

// Token returns the session token presented by the client, if any.
func (c SessionCookie) Token(ctx *gin.Context) string {
	token, err := ctx.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return token
}

// Set writes token with the given lifetime in seconds.
func (c SessionCookie) Set(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(c.SameSite)
	ctx.SetCookie(c.Name, token, maxAge, "/", c.Domain, c.Secure, true)
}

// Clear overwrites the cookie with an empty, already-expired value.
func (c SessionCookie) Clear(ctx *gin.Context) {
	c.Set(ctx, "", -1)
}

// AuthRequired rejects requests without a valid session with 401 before the
// handler runs, and stores the resolved user in the context. Sessions close to
// expiry get a fresh cookie.
func AuthRequired(gate *services.AuthGate, tokens *utils.TokenService, cookie SessionCookie, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx *gin.Context) {
		token := cookie.Token(ctx)
		if token == "" {
			utils.AbortWithError(ctx, http.StatusUnauthorized, 40101, "session token missing")
			return
		}

		user, claims, err := gate.ResolveCurrentUser(ctx.Request.Context(), token)
		if err != nil {
			if services.HasCode(err, services.CodeUnauthenticated) {
				utils.AbortWithError(ctx, http.StatusUnauthorized, 40102, "invalid session")
				return
			}
			logger.Error("resolve current user failed", zap.Error(err))
			utils.AbortWithError(ctx, http.StatusInternalServerError, 50001, "failed to resolve session")
			return
		}

		if tokens.ShouldReissue(claims) {
			if fresh, _, err := tokens.Issue(user.ID); err == nil {
				cookie.Set(ctx, fresh, int(tokens.TTL().Seconds()))
			} else {
				logger.Warn("session reissue failed", zap.String("user_id", user.ID), zap.Error(err))
			}
		}

		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
