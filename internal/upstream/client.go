package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/config"
	"github.com/Vikas210-dev/cyber-new/internal/domain"
	"github.com/Vikas210-dev/cyber-new/internal/session"
)

// Client calls the upstream helpline API. Every request carries an
// explicit timeout, so a hung upstream can never wedge a login flow.
type Client struct {
	httpClient   *http.Client
	endpoints    Endpoints
	headers      *HeaderBuilder
	clientID     string
	clientSecret string
	logger       *zap.Logger
	tracer       trace.Tracer
}

// LoginResult is the raw outcome of the login call: transport status
// plus the decoded envelope. The caller branches on HTTP status versus
// application-level status code; the client does not throw on non-2xx.
type LoginResult struct {
	Status   int
	Envelope domain.Envelope
}

// New constructs the upstream client from configuration.
func New(cfg config.Config, logger *zap.Logger) *Client {
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		endpoints:    NewEndpoints(cfg.UpstreamBaseURL),
		headers:      NewHeaderBuilder(cfg.ChannelID, cfg.ProjectID),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		logger:       logger,
		tracer:       otel.Tracer("github.com/Vikas210-dev/cyber-new/internal/upstream"),
	}
}

// AcquireClientToken runs the client-credentials exchange and stores
// the resulting token triple in the session. The write is
// all-or-nothing: a response missing any of token, tokenType, or
// expiresIn stores nothing and fails with ErrInvalidTokenResponse.
func (c *Client) AcquireClientToken(ctx context.Context, sess *session.Manager) error {
	ctx, span := c.tracer.Start(ctx, "upstream.AcquireClientToken")
	defer span.End()

	gen, err := sess.Generation(ctx)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"clientId":          c.clientID,
		"clientSecret":      c.clientSecret,
		"currentTimeMillis": time.Now().UnixMilli(),
	}

	status, env, err := c.do(ctx, http.MethodPost, c.endpoints.Token(), payload, c.headers.Client())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("fetch client token: %w", err)
	}
	if status < 200 || status >= 300 {
		span.RecordError(fmt.Errorf("token endpoint status %d", status))
		return domain.NewUpstreamError(status, "token_request_failed", env.Message)
	}

	var grant domain.TokenGrant
	if len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, &grant); err != nil {
			return fmt.Errorf("decode token response: %w", err)
		}
	}
	if grant.Token == "" || grant.TokenType == "" || grant.ExpiresIn <= 0 {
		return domain.ErrInvalidTokenResponse
	}

	if err := sess.StoreClientToken(ctx, grant, gen); err != nil {
		return err
	}

	c.log().Debug("client token stored",
		zap.String("session_id", sess.SID()),
		zap.Int64("expires_in", grant.ExpiresIn),
	)
	return nil
}

// Login exchanges user credentials for the user token set. The result
// is returned raw; storing the tokens on success is the caller's
// decision, made against the application-level status code.
func (c *Client) Login(ctx context.Context, sess *session.Manager, userName, password string) (LoginResult, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.Login")
	defer span.End()

	payload := map[string]any{
		"userName":          userName,
		"password":          password,
		"currentTimeMillis": time.Now().UnixMilli(),
	}

	status, env, err := c.do(ctx, http.MethodPost, c.endpoints.Login(), payload, c.headers.Login(ctx, sess))
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, fmt.Errorf("login request: %w", err)
	}
	return LoginResult{Status: status, Envelope: env}, nil
}

// Logout notifies the upstream that the user session ended. It takes
// the credential explicitly because local state is cleared before this
// call fires; the identity travels in the Authorization header only.
func (c *Client) Logout(ctx context.Context, tokenType, token string) error {
	header := c.headers.Client()
	header.Set("Authorization", authorizationValue(tokenType, token))

	status, env, err := c.do(ctx, http.MethodPost, c.endpoints.Logout(), map[string]any{}, header)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	if status < 200 || status >= 300 {
		return domain.NewUpstreamError(status, "logout_failed", env.Message)
	}
	return nil
}

// RefreshToken proxies the refresh call. Storage of a refreshed grant
// follows the same path as login.
func (c *Client) RefreshToken(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	userSession, _ := sess.UserSession(ctx)
	payload := map[string]any{
		"refreshToken":      userSession.RefreshToken,
		"currentTimeMillis": time.Now().UnixMilli(),
	}
	return c.do(ctx, http.MethodPost, c.endpoints.RefreshToken(), payload, c.headers.Authenticated(ctx, sess))
}

// ForgotPassword starts a password reset; it runs on the client token
// because no user is authenticated yet.
func (c *Client) ForgotPassword(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.do(ctx, http.MethodPost, c.endpoints.ForgotPassword(), payload, c.headers.Login(ctx, sess))
}

// ResetPassword completes a password reset.
func (c *Client) ResetPassword(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.do(ctx, http.MethodPost, c.endpoints.ResetPassword(), payload, c.headers.Login(ctx, sess))
}

// Register creates a helpline contact/agent account.
func (c *Client) Register(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.post(ctx, sess, c.endpoints.Register(), payload)
}

// UserProfile fetches the signed-in user's profile page.
func (c *Client) UserProfile(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.UserProfile())
}

// UpdateProfile updates the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.post(ctx, sess, c.endpoints.UpdateProfile(), payload)
}

// Users lists console users/agents.
func (c *Client) Users(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.Users())
}

// DeleteUser removes a console user.
func (c *Client) DeleteUser(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error) {
	return c.delete(ctx, sess, c.endpoints.DeleteUser(id))
}

func (c *Client) Contacts(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.Contacts())
}

func (c *Client) CreateContact(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.post(ctx, sess, c.endpoints.CreateContact(), payload)
}

func (c *Client) UpdateContact(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.put(ctx, sess, c.endpoints.UpdateContact(), payload)
}

func (c *Client) DeleteContact(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error) {
	return c.delete(ctx, sess, c.endpoints.DeleteContact(id))
}

func (c *Client) ContactDetails(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.ContactDetails(id))
}

func (c *Client) Incidents(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.Incidents())
}

func (c *Client) CreateIncident(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.post(ctx, sess, c.endpoints.CreateIncident(), payload)
}

func (c *Client) UpdateIncident(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.put(ctx, sess, c.endpoints.UpdateIncident(), payload)
}

func (c *Client) DeleteIncident(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error) {
	return c.delete(ctx, sess, c.endpoints.DeleteIncident(id))
}

func (c *Client) IncidentDetails(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.IncidentDetails(id))
}

func (c *Client) Threats(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.Threats())
}

func (c *Client) CreateThreat(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.post(ctx, sess, c.endpoints.CreateThreat(), payload)
}

func (c *Client) UpdateThreat(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.put(ctx, sess, c.endpoints.UpdateThreat(), payload)
}

func (c *Client) DeleteThreat(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error) {
	return c.delete(ctx, sess, c.endpoints.DeleteThreat(id))
}

func (c *Client) Reports(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.Reports())
}

func (c *Client) GenerateReport(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error) {
	return c.post(ctx, sess, c.endpoints.GenerateReport(), payload)
}

func (c *Client) ReportDetails(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.ReportDetails(id))
}

func (c *Client) States(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.States())
}

func (c *Client) Districts(ctx context.Context, sess *session.Manager, stateID string) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.Districts(stateID))
}

func (c *Client) Roles(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error) {
	return c.get(ctx, sess, c.endpoints.Roles())
}

func (c *Client) get(ctx context.Context, sess *session.Manager, url string) (int, domain.Envelope, error) {
	return c.do(ctx, http.MethodGet, url, nil, c.headers.Authenticated(ctx, sess))
}

func (c *Client) post(ctx context.Context, sess *session.Manager, url string, payload any) (int, domain.Envelope, error) {
	return c.do(ctx, http.MethodPost, url, payload, c.headers.Authenticated(ctx, sess))
}

func (c *Client) put(ctx context.Context, sess *session.Manager, url string, payload any) (int, domain.Envelope, error) {
	return c.do(ctx, http.MethodPut, url, payload, c.headers.Authenticated(ctx, sess))
}

func (c *Client) delete(ctx context.Context, sess *session.Manager, url string) (int, domain.Envelope, error) {
	return c.do(ctx, http.MethodDelete, url, nil, c.headers.Authenticated(ctx, sess))
}

// do issues the request and decodes the response envelope. It returns
// an error only for transport, build, or read failures; HTTP-level and
// application-level rejections come back as status plus envelope so
// callers can branch on them.
func (c *Client) do(ctx context.Context, method, url string, payload any, header http.Header) (int, domain.Envelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, domain.Envelope{}, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, domain.Envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header = header

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domain.Envelope{}, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, domain.Envelope{}, fmt.Errorf("read response: %w", err)
	}

	var env domain.Envelope
	if len(raw) > 0 {
		// A non-JSON error body is tolerated; the caller falls back to
		// a templated message built from the status code.
		_ = json.Unmarshal(raw, &env)
	}

	c.log().Debug("upstream call",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.String("status_code", env.StatusCode),
	)
	return resp.StatusCode, env, nil
}

func (c *Client) log() *zap.Logger {
	if c != nil && c.logger != nil {
		return c.logger
	}
	return zap.NewNop()
}
