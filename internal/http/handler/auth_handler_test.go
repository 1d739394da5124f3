package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/audit"
	"github.com/Vikas210-dev/cyber-new/internal/auth"
	"github.com/Vikas210-dev/cyber-new/internal/config"
	"github.com/Vikas210-dev/cyber-new/internal/domain"
	"github.com/Vikas210-dev/cyber-new/internal/http/middleware"
	"github.com/Vikas210-dev/cyber-new/internal/session"
	"github.com/Vikas210-dev/cyber-new/internal/upstream"
)

type authFixture struct {
	engine *gin.Engine
	store  session.Store
}

func newAuthFixture(t *testing.T, upstreamHandler http.Handler) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstreamHandler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		UpstreamBaseURL: srv.URL,
		ClientID:        "console-client",
		ClientSecret:    "console-secret",
		ChannelID:       "WEB",
		ProjectID:       "HPCYBER",
	}
	store := session.NewMemoryStore(0)
	svc := auth.NewService(upstream.New(cfg, zap.NewNop()), audit.NewLogRecorder(nil), zap.NewNop())
	h := NewAuthHandler(svc, zap.NewNop())

	r := gin.New()
	r.Use(middleware.NewSessions(store, time.Hour, false).Handler())
	r.POST("/session/init", h.Init)
	r.POST("/session/login", h.Login)
	r.POST("/session/logout", h.Logout)
	r.GET("/session/me", h.Me)

	return &authFixture{engine: r, store: store}
}

func (f *authFixture) do(method, path, body, sid string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	}
	f.engine.ServeHTTP(w, req)
	return w
}

func successEnvelope(response any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"statusCode": "ESS-000",
			"message":    "Success",
			"response":   response,
		})
	})
}

func TestInitIssuesSessionCookie(t *testing.T) {
	f := newAuthFixture(t, successEnvelope(map[string]any{
		"token": "ct-123", "tokenType": "Bearer", "expiresIn": 3600,
	}))

	w := f.do(http.MethodPost, "/session/init", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sid string
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			sid = cookie.Value
			require.True(t, cookie.HttpOnly)
		}
	}
	require.NotEmpty(t, sid)

	mgr := session.NewManager(f.store, sid)
	require.True(t, mgr.IsClientTokenValid(context.Background()))
}

func TestInitUpstreamFailure(t *testing.T) {
	f := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	w := f.do(http.MethodPost, "/session/init", "", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "initialization_failed")
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := newAuthFixture(t, successEnvelope(nil))

	w := f.do(http.MethodPost, "/session/login", `{"userName":"agent1"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid_request")
}

func TestLoginWithoutClientToken(t *testing.T) {
	f := newAuthFixture(t, successEnvelope(nil))

	w := f.do(http.MethodPost, "/session/login", `{"userName":"agent1","password":"secret"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "client_token_invalid")
	require.Contains(t, w.Body.String(), "Reload and try again")
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t, successEnvelope(map[string]any{
		"token": "opaque-token", "tokenType": "Bearer", "expiresIn": 300,
	}))

	sid := "sid-login-test"
	mgr := session.NewManager(f.store, sid)
	require.NoError(t, mgr.StoreClientToken(context.Background(), domain.TokenGrant{
		Token: "ct-123", TokenType: "Bearer", ExpiresIn: 3600,
	}, 0))

	w := f.do(http.MethodPost, "/session/login", `{"userName":"agent1","password":"secret"}`, sid)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "agent1", payload.User.Username)
	require.True(t, mgr.IsAuthenticated(context.Background()))
}

func TestLoginRejectionSurfacesMessage(t *testing.T) {
	f := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"statusCode": "EUS-004",
			"message":    "Invalid credentials",
		})
	}))

	sid := "sid-reject-test"
	mgr := session.NewManager(f.store, sid)
	require.NoError(t, mgr.StoreClientToken(context.Background(), domain.TokenGrant{
		Token: "ct-123", TokenType: "Bearer", ExpiresIn: 3600,
	}, 0))

	w := f.do(http.MethodPost, "/session/login", `{"userName":"agent1","password":"wrong"}`, sid)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid credentials")
	require.False(t, mgr.IsAuthenticated(context.Background()))
}

func TestLogoutAlwaysNoContent(t *testing.T) {
	f := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	sid := "sid-logout-test"
	mgr := session.NewManager(f.store, sid)
	ctx := context.Background()
	require.NoError(t, mgr.StoreUserTokens(ctx, domain.TokenGrant{
		Token: "ut-456", TokenType: "Bearer", ExpiresIn: 300,
	}, 0))

	w := f.do(http.MethodPost, "/session/logout", "", sid)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.False(t, mgr.IsAuthenticated(ctx))

	// Logging out an already-empty session is still a 204.
	w = f.do(http.MethodPost, "/session/logout", "", sid)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestMeDegradesForOpaqueToken(t *testing.T) {
	f := newAuthFixture(t, successEnvelope(nil))

	sid := "sid-me-test"
	mgr := session.NewManager(f.store, sid)
	require.NoError(t, mgr.StoreUserTokens(context.Background(), domain.TokenGrant{
		Token: "opaque-token", TokenType: "Bearer", ExpiresIn: 300,
	}, 0))

	w := f.do(http.MethodGet, "/session/me", "", sid)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "unknown", payload.User.Subject)
	require.Equal(t, "user", payload.User.Username)
}
