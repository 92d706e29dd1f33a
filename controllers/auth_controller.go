package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/middleware"
	"github.com/cppla/commentbox/services"
	"github.com/cppla/commentbox/utils"
)

// AuthController handles registration, login, logout and the current-user lookup.
type AuthController struct {
	credentials *services.CredentialStore
	gate        *services.AuthGate
	tokens      *utils.TokenService
	cookie      middleware.SessionCookie
	logger      *zap.Logger
}

// NewAuthController creates an AuthController.
func NewAuthController(credentials *services.CredentialStore, gate *services.AuthGate, tokens *utils.TokenService, cookie middleware.SessionCookie, logger *zap.Logger) *AuthController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthController{
		credentials: credentials,
		gate:        gate,
		tokens:      tokens,
		cookie:      cookie,
		logger:      logger.Named("auth"),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and starts a session: 201 with the session cookie.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	user, err := a.credentials.Register(ctx.Request.Context(), req.Email, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		a.logger.Error("register failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	if !a.startSession(ctx, user.ID) {
		return
	}
	ctx.Status(http.StatusCreated)
}

// Login verifies credentials and starts a session. Unknown users and wrong
// passwords get the same 422 body.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.credentials.Verify(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if services.HasCode(err, services.CodeInvalidCredentials) {
			ctx.JSON(http.StatusUnprocessableEntity, services.InvalidCredentialsMessage)
			return
		}
		a.logger.Error("login failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to verify credentials")
		return
	}

	if !a.startSession(ctx, user.ID) {
		return
	}
	ctx.Status(http.StatusOK)
}

// Logout clears the session cookie. With revocation enabled the presented token
// also stops verifying server-side.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token := a.cookie.Token(ctx); token != "" {
		if err := a.gate.Revoke(ctx.Request.Context(), token); err != nil {
			a.logger.Warn("token revocation failed", zap.Error(err))
		}
	}
	a.cookie.Clear(ctx)
	ctx.Status(http.StatusOK)
}

// Me returns the username of the session holder. Runs behind AuthRequired.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"username": user.Username})
}

func (a *AuthController) startSession(ctx *gin.Context, userID string) bool {
	token, _, err := a.tokens.Issue(userID)
	if err != nil {
		a.logger.Error("issue token failed", zap.String("user_id", userID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return false
	}
	a.cookie.Set(ctx, token, int(a.tokens.TTL().Seconds()))
	return true
}
