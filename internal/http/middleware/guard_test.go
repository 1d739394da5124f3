package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/audit"
	"github.com/Vikas210-dev/cyber-new/internal/auth"
	"github.com/Vikas210-dev/cyber-new/internal/config"
	"github.com/Vikas210-dev/cyber-new/internal/domain"
	"github.com/Vikas210-dev/cyber-new/internal/session"
	"github.com/Vikas210-dev/cyber-new/internal/upstream"
)

func signToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	signer, err := gojose.NewSigner(gojose.SigningKey{
		Algorithm: gojose.HS256,
		Key:       []byte("0123456789abcdef0123456789abcdef"),
	}, nil)
	require.NoError(t, err)

	token, err := gojwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)
	return token
}

func newGuard() *Guard {
	cfg := config.Config{
		UpstreamBaseURL: "http://127.0.0.1:1",
		ClientID:        "console-client",
		ClientSecret:    "console-secret",
	}
	svc := auth.NewService(upstream.New(cfg, zap.NewNop()), audit.NewLogRecorder(nil), zap.NewNop())
	return &Guard{Auth: svc}
}

func guardRequest(t *testing.T, mgr *session.Manager, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	if mgr != nil {
		r.Use(func(c *gin.Context) {
			c.Set(sessionContextKey, mgr)
			c.Next()
		})
	}
	chain := append(handlers, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/protected", chain...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireUserWithoutSessionMiddleware(t *testing.T) {
	guard := newGuard()
	w := guardRequest(t, nil, guard.RequireUser)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireUserUnauthenticated(t *testing.T) {
	guard := newGuard()
	mgr := session.NewManager(session.NewMemoryStore(0), "sid-test")

	w := guardRequest(t, mgr, guard.RequireUser)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "authentication_required")
}

func TestRequireUserAuthenticated(t *testing.T) {
	guard := newGuard()
	mgr := session.NewManager(session.NewMemoryStore(0), "sid-test")
	require.NoError(t, mgr.StoreUserTokens(context.Background(), domain.TokenGrant{
		Token: "opaque", TokenType: "Bearer", ExpiresIn: 300,
	}, 0))

	w := guardRequest(t, mgr, guard.RequireUser)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	guard := newGuard()
	token := signToken(t, map[string]any{
		"sub":                "user-42",
		"preferred_username": "agent1",
		"realm_access":       map[string]any{"roles": []string{"ADMIN"}},
	})
	mgr := session.NewManager(session.NewMemoryStore(0), "sid-test")
	require.NoError(t, mgr.StoreUserTokens(context.Background(), domain.TokenGrant{
		Token: token, TokenType: "Bearer", ExpiresIn: 300,
	}, 0))

	var seen domain.User
	w := guardRequest(t, mgr, guard.RequireRoles("ADMIN", "SUPER_ADMIN"), func(c *gin.Context) {
		seen, _ = GetUser(c)
		c.Next()
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-42", seen.Subject)
}

func TestRequireRolesRejectsMissingRole(t *testing.T) {
	guard := newGuard()
	token := signToken(t, map[string]any{
		"sub":          "user-42",
		"realm_access": map[string]any{"roles": []string{"AGENT"}},
	})
	mgr := session.NewManager(session.NewMemoryStore(0), "sid-test")
	require.NoError(t, mgr.StoreUserTokens(context.Background(), domain.TokenGrant{
		Token: token, TokenType: "Bearer", ExpiresIn: 300,
	}, 0))

	w := guardRequest(t, mgr, guard.RequireRoles("ADMIN"))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "insufficient_role")
}

func TestRequireRolesRejectsUnauthenticated(t *testing.T) {
	guard := newGuard()
	mgr := session.NewManager(session.NewMemoryStore(0), "sid-test")

	w := guardRequest(t, mgr, guard.RequireRoles("ADMIN"))
	require.Equal(t, http.StatusForbidden, w.Code)
}
