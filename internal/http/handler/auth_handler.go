// Package handler translates gateway HTTP requests into auth facade
// and upstream client calls.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/auth"
	"github.com/Vikas210-dev/cyber-new/internal/domain"
	"github.com/Vikas210-dev/cyber-new/internal/http/middleware"
)

// AuthHandler serves the session lifecycle endpoints.
type AuthHandler struct {
	Auth   *auth.Service
	Logger *zap.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(authService *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: authService, Logger: logger}
}

// Init prepares the session for the login form: already-authenticated
// sessions are reported as such, otherwise a client token is acquired.
// Failure maps to 502 so the shell can show an inline banner; it never
// blocks navigation to the login view.
func (h *AuthHandler) Init(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}

	result, err := h.Auth.Initialize(c.Request.Context(), sess)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "initialization_failed", "error_description": "Failed to authenticate with server."})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Login exchanges user credentials for an authenticated session.
func (h *AuthHandler) Login(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}

	var req struct {
		UserName string `json:"userName" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "userName and password are required."})
		return
	}

	user, err := h.Auth.Login(c.Request.Context(), sess, req.UserName, req.Password)
	if err != nil {
		h.respondLoginError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Refresh exchanges the stored refresh token for a fresh user token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}

	user, err := h.Auth.Refresh(c.Request.Context(), sess)
	if err != nil {
		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": upErr.Code, "error_description": upErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "refresh_failed", "error_description": "Failed to refresh session."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session. Always 204: local invalidation does not
// depend on the upstream acknowledging anything.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess, ok := middleware.GetSession(c); ok {
		h.Auth.Logout(c.Request.Context(), sess)
	}
	c.Status(http.StatusNoContent)
}

// Me returns the display identity of the authenticated session.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}

	user, ok := h.Auth.CurrentUser(c.Request.Context(), sess)
	if !ok {
		// Authenticated but undecodable token: degrade to the generic
		// display identity rather than failing the page.
		user = domain.User{Subject: "unknown", Username: "user"}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrClientTokenInvalid) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "client_token_invalid", "error_description": "Client token is invalid or expired. Reload and try again."})
		return
	}
	if errors.Is(err, domain.ErrInvalidTokenResponse) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid_token_response", "error_description": "Login response format is invalid."})
		return
	}
	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) {
		// HTTP-level and application-level rejections read the same to
		// the user; the server message travels verbatim.
		c.JSON(http.StatusUnauthorized, gin.H{"error": upErr.Code, "error_description": upErr.Message})
		return
	}
	if h.Logger != nil {
		h.Logger.Error("login failed", zap.Error(err))
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "login_failed", "error_description": "Failed to reach the login service."})
}
