package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/audit"
	"github.com/Vikas210-dev/cyber-new/internal/domain"
	"github.com/Vikas210-dev/cyber-new/internal/session"
	"github.com/Vikas210-dev/cyber-new/internal/upstream"
)

// Service is the auth facade: Initialize, Login, Logout, CurrentUser
// over one browser session. It owns the dual-token lifecycle rules;
// the transport layer only translates its results into HTTP.
type Service struct {
	upstream *upstream.Client
	audit    audit.Recorder
	logger   *zap.Logger
	tracer   trace.Tracer
}

// InitResult is the outcome of session initialization.
type InitResult struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// NewService wires dependencies.
func NewService(client *upstream.Client, recorder audit.Recorder, logger *zap.Logger) *Service {
	return &Service{
		upstream: client,
		audit:    recorder,
		logger:   logger,
		tracer:   otel.Tracer("github.com/Vikas210-dev/cyber-new/internal/auth"),
	}
}

// Initialize prepares a session for use: an already-authenticated
// session is reported as such, otherwise a client token is acquired so
// the login form can call the login endpoint. Acquisition failure is
// an error the caller surfaces inline; it never blocks navigation.
func (s *Service) Initialize(ctx context.Context, sess *session.Manager) (InitResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Initialize")
	defer span.End()

	if sess.IsAuthenticated(ctx) {
		user := s.displayUser(ctx, sess)
		return InitResult{Authenticated: true, User: &user}, nil
	}

	if err := s.upstream.AcquireClientToken(ctx, sess); err != nil {
		if errors.Is(err, domain.ErrSessionCleared) {
			// A logout raced the acquisition; the cleared state wins.
			return InitResult{}, nil
		}
		span.RecordError(err)
		s.audit.Record(ctx, audit.Event{
			Action:    "token.acquire",
			SessionID: sess.SID(),
			Detail:    err.Error(),
		})
		return InitResult{}, fmt.Errorf("initialize auth: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Action:    "token.acquire",
		SessionID: sess.SID(),
		Success:   true,
	})
	return InitResult{}, nil
}

// Login runs the full user login flow. A missing or expired client
// token fails before any network call. On the application-level
// success marker the user token set is stored and the display identity
// returned; on any other outcome nothing is stored and the server's
// message is surfaced verbatim when present.
func (s *Service) Login(ctx context.Context, sess *session.Manager, userName, password string) (domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	if !sess.IsClientTokenValid(ctx) {
		s.recordLogin(ctx, sess, userName, false, "client token invalid")
		return domain.User{}, domain.ErrClientTokenInvalid
	}

	// Snapshot before the round trip so a logout fired while the login
	// is in flight invalidates the pending write.
	gen, err := sess.Generation(ctx)
	if err != nil {
		return domain.User{}, err
	}

	result, err := s.upstream.Login(ctx, sess, userName, password)
	if err != nil {
		span.RecordError(err)
		s.recordLogin(ctx, sess, userName, false, err.Error())
		return domain.User{}, err
	}

	env := result.Envelope
	if result.Status < 200 || result.Status >= 300 {
		s.recordLogin(ctx, sess, userName, false, env.Message)
		return domain.User{}, domain.NewUpstreamError(result.Status, "login_failed", env.Message)
	}
	if !env.OK() {
		message := env.Message
		if message == "" {
			message = "login response format is invalid"
		}
		s.recordLogin(ctx, sess, userName, false, message)
		return domain.User{}, domain.NewUpstreamError(http.StatusUnauthorized, "login_rejected", message)
	}

	var grant domain.TokenGrant
	if err := json.Unmarshal(env.Response, &grant); err != nil {
		return domain.User{}, fmt.Errorf("decode login response: %w", err)
	}
	if grant.Token == "" || grant.TokenType == "" || grant.ExpiresIn <= 0 {
		return domain.User{}, domain.ErrInvalidTokenResponse
	}

	if err := sess.StoreUserTokens(ctx, grant, gen); err != nil {
		span.RecordError(err)
		return domain.User{}, err
	}

	s.recordLogin(ctx, sess, userName, true, "")

	user, ok := DecodeUser(grant.Token)
	if !ok {
		// Opaque tokens still authenticate; only the display identity
		// degrades.
		user = domain.User{Subject: "unknown", Username: userName}
	}
	return user, nil
}

// Refresh exchanges the stored refresh token for a fresh user token
// set. The stored grant follows the same all-or-nothing rule as login.
func (s *Service) Refresh(ctx context.Context, sess *session.Manager) (domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Refresh")
	defer span.End()

	userSession, ok := sess.UserSession(ctx)
	if !ok || userSession.RefreshToken == "" {
		return domain.User{}, domain.NewUpstreamError(http.StatusUnauthorized, "refresh_unavailable", "no refresh token stored")
	}

	gen, err := sess.Generation(ctx)
	if err != nil {
		return domain.User{}, err
	}

	status, env, err := s.upstream.RefreshToken(ctx, sess)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, err
	}
	if status < 200 || status >= 300 || !env.OK() {
		return domain.User{}, domain.NewUpstreamError(status, "refresh_rejected", env.Message)
	}

	var grant domain.TokenGrant
	if err := json.Unmarshal(env.Response, &grant); err != nil {
		return domain.User{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if grant.Token == "" || grant.TokenType == "" || grant.ExpiresIn <= 0 {
		return domain.User{}, domain.ErrInvalidTokenResponse
	}

	if err := sess.StoreUserTokens(ctx, grant, gen); err != nil {
		return domain.User{}, err
	}

	user, ok := DecodeUser(grant.Token)
	if !ok {
		user = domain.User{Subject: "unknown", Username: "user"}
	}
	return user, nil
}

// Logout invalidates the session. Local state is cleared
// unconditionally and first; the upstream logout is best-effort and
// its failure never blocks or reverses the local invalidation.
func (s *Service) Logout(ctx context.Context, sess *session.Manager) {
	userSession, hadUser := sess.UserSession(ctx)

	if err := sess.ClearAuth(ctx); err != nil {
		s.log().Warn("clear auth state", zap.Error(err))
	}

	if hadUser {
		if err := s.upstream.Logout(ctx, userSession.TokenType, userSession.Token); err != nil {
			s.log().Warn("upstream logout failed", zap.Error(err))
		}
	}

	s.audit.Record(ctx, audit.Event{
		Action:    "logout",
		SessionID: sess.SID(),
		Success:   true,
	})
}

// CurrentUser returns the display identity for an authenticated
// session. The second result is false when the session is not
// authenticated or the token payload cannot be decoded.
func (s *Service) CurrentUser(ctx context.Context, sess *session.Manager) (domain.User, bool) {
	if !sess.IsAuthenticated(ctx) {
		return domain.User{}, false
	}
	userSession, ok := sess.UserSession(ctx)
	if !ok {
		return domain.User{}, false
	}
	return DecodeUser(userSession.Token)
}

func (s *Service) displayUser(ctx context.Context, sess *session.Manager) domain.User {
	if user, ok := s.CurrentUser(ctx, sess); ok {
		return user
	}
	return domain.User{Subject: "unknown", Username: "user"}
}

func (s *Service) recordLogin(ctx context.Context, sess *session.Manager, userName string, success bool, detail string) {
	s.audit.Record(ctx, audit.Event{
		Action:    "login",
		SessionID: sess.SID(),
		Username:  userName,
		Success:   success,
		Detail:    detail,
	})
}

func (s *Service) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.NewNop()
}
