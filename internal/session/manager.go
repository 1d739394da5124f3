package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Vikas210-dev/cyber-new/internal/domain"
)

// Session key layout. Only this file knows the raw strings; everything
// else goes through the typed accessors to prevent key drift.
const (
	keyToken       = "token"
	keyTokenType   = "tokenType"
	keyTokenExpiry = "tokenExpiry"

	keyUserToken              = "userToken"
	keyUserTokenType          = "userTokenType"
	keyUserTokenExpiry        = "userTokenExpiry"
	keyUserRefreshToken       = "userRefreshToken"
	keyUserRefreshTokenExpiry = "userRefreshTokenExpiry"

	keyGeneration = "authGeneration"
)

var authKeys = [...]string{
	keyToken, keyTokenType, keyTokenExpiry,
	keyUserToken, keyUserTokenType, keyUserTokenExpiry,
	keyUserRefreshToken, keyUserRefreshTokenExpiry,
}

// Manager binds a Store to a single browser session and exposes the
// token lifecycle as typed operations. Token writes carry the session
// generation observed before the network round trip; ClearAuth bumps
// the generation, so a write racing a logout is discarded and logout
// always ends with an empty bag.
type Manager struct {
	store Store
	sid   string
	now   func() time.Time
}

// NewManager wires a manager for the given session id.
func NewManager(store Store, sid string) *Manager {
	return &Manager{store: store, sid: sid, now: time.Now}
}

// WithClock overrides the time source. Tests use it to pin expiry
// arithmetic; production code never calls it.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// SID returns the bound session id.
func (m *Manager) SID() string {
	return m.sid
}

// Generation returns the current session generation. Callers snapshot
// it before a token round trip and pass it back to the store methods.
func (m *Manager) Generation(ctx context.Context) (int64, error) {
	raw, err := m.store.Get(ctx, m.sid, keyGeneration)
	if err != nil {
		return 0, fmt.Errorf("read session generation: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session generation: %w", err)
	}
	return gen, nil
}

// StoreClientToken persists the client token triple. The expiry is
// computed once here, as an absolute instant; validity checks compare
// against it, they never recompute.
func (m *Manager) StoreClientToken(ctx context.Context, grant domain.TokenGrant, gen int64) error {
	if err := m.checkGeneration(ctx, gen); err != nil {
		return err
	}
	expiresAt := m.now().UnixMilli() + grant.ExpiresIn*1000
	if err := m.store.Set(ctx, m.sid, keyToken, grant.Token); err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.sid, keyTokenType, grant.TokenType); err != nil {
		return err
	}
	return m.store.Set(ctx, m.sid, keyTokenExpiry, strconv.FormatInt(expiresAt, 10))
}

// StoreUserTokens persists the user token set from a successful login.
// The refresh pair is written only when both fields are present.
func (m *Manager) StoreUserTokens(ctx context.Context, grant domain.TokenGrant, gen int64) error {
	if err := m.checkGeneration(ctx, gen); err != nil {
		return err
	}
	now := m.now().UnixMilli()
	if err := m.store.Set(ctx, m.sid, keyUserToken, grant.Token); err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.sid, keyUserTokenType, grant.TokenType); err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.sid, keyUserTokenExpiry, strconv.FormatInt(now+grant.ExpiresIn*1000, 10)); err != nil {
		return err
	}
	if grant.RefreshToken != "" && grant.RefreshExpiresIn > 0 {
		if err := m.store.Set(ctx, m.sid, keyUserRefreshToken, grant.RefreshToken); err != nil {
			return err
		}
		return m.store.Set(ctx, m.sid, keyUserRefreshTokenExpiry, strconv.FormatInt(now+grant.RefreshExpiresIn*1000, 10))
	}
	return nil
}

// ClientToken reads the stored client token triple. The second result
// is false when no token is stored.
func (m *Manager) ClientToken(ctx context.Context) (domain.ClientToken, bool) {
	value, _ := m.store.Get(ctx, m.sid, keyToken)
	if value == "" {
		return domain.ClientToken{}, false
	}
	tokenType, _ := m.store.Get(ctx, m.sid, keyTokenType)
	expiry, _ := m.store.Get(ctx, m.sid, keyTokenExpiry)
	expiresAt, _ := strconv.ParseInt(expiry, 10, 64)
	return domain.ClientToken{Value: value, TokenType: tokenType, ExpiresAt: expiresAt}, true
}

// UserSession reads the stored user token set.
func (m *Manager) UserSession(ctx context.Context) (domain.UserSession, bool) {
	token, _ := m.store.Get(ctx, m.sid, keyUserToken)
	if token == "" {
		return domain.UserSession{}, false
	}
	tokenType, _ := m.store.Get(ctx, m.sid, keyUserTokenType)
	expiry, _ := m.store.Get(ctx, m.sid, keyUserTokenExpiry)
	refresh, _ := m.store.Get(ctx, m.sid, keyUserRefreshToken)
	refreshExpiry, _ := m.store.Get(ctx, m.sid, keyUserRefreshTokenExpiry)

	expiresAt, _ := strconv.ParseInt(expiry, 10, 64)
	refreshExpiresAt, _ := strconv.ParseInt(refreshExpiry, 10, 64)
	return domain.UserSession{
		Token:            token,
		TokenType:        tokenType,
		ExpiresAt:        expiresAt,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiresAt,
	}, true
}

// IsClientTokenValid reports whether a client token is stored and not
// yet expired. Expiry at the exact current instant counts as expired.
func (m *Manager) IsClientTokenValid(ctx context.Context) bool {
	return m.validPair(ctx, keyToken, keyTokenExpiry)
}

// IsUserTokenValid reports whether a user token is stored and not yet
// expired.
func (m *Manager) IsUserTokenValid(ctx context.Context) bool {
	return m.validPair(ctx, keyUserToken, keyUserTokenExpiry)
}

// IsAuthenticated is the route-guard predicate; it is the user token
// validity check under its caller-facing name.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.IsUserTokenValid(ctx)
}

// ClearAuth removes every auth key for the session. The generation is
// bumped first so that any token write still in flight loses the race
// and the bag stays empty.
func (m *Manager) ClearAuth(ctx context.Context) error {
	gen, err := m.Generation(ctx)
	if err != nil {
		gen = 0
	}
	if err := m.store.Set(ctx, m.sid, keyGeneration, strconv.FormatInt(gen+1, 10)); err != nil {
		return fmt.Errorf("bump session generation: %w", err)
	}
	for _, key := range authKeys {
		if err := m.store.Remove(ctx, m.sid, key); err != nil {
			return fmt.Errorf("clear auth key: %w", err)
		}
	}
	return nil
}

func (m *Manager) validPair(ctx context.Context, tokenKey, expiryKey string) bool {
	token, err := m.store.Get(ctx, m.sid, tokenKey)
	if err != nil || token == "" {
		return false
	}
	raw, err := m.store.Get(ctx, m.sid, expiryKey)
	if err != nil || raw == "" {
		return false
	}
	expiresAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return m.now().UnixMilli() < expiresAt
}

func (m *Manager) checkGeneration(ctx context.Context, gen int64) error {
	current, err := m.Generation(ctx)
	if err != nil {
		return err
	}
	if current != gen {
		return domain.ErrSessionCleared
	}
	return nil
}
