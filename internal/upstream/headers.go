package upstream

import (
	"context"
	"crypto/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/Vikas210-dev/cyber-new/internal/session"
)

const (
	headerChannelID     = "X-Channel-Id"
	headerProject       = "Project"
	headerCorrelationID = "X-Correlation-Id"
	headerTransactionID = "X-Transaction-Id"

	defaultTokenType = "Bearer"
)

// RequestTrace carries the per-request trace identifiers. A fresh pair
// is generated for every outbound call and never stored: the ids exist
// only for server-side request tracing.
type RequestTrace struct {
	CorrelationID string
	TransactionID string
}

// NewRequestTrace derives both ids from the current timestamp and a
// random base36 suffix; the transaction id uses the reversed suffix.
func NewRequestTrace() RequestTrace {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	suffix := randomBase36(9)
	return RequestTrace{
		CorrelationID: timestamp + suffix,
		TransactionID: timestamp + reverse(suffix),
	}
}

// HeaderBuilder assembles the outbound header profiles. It is a pure
// read-and-construct component: tokens are read fresh from the session
// at call time, never cached, and no validation happens here. When the
// relevant token is absent the Authorization header is still emitted
// with an empty value; rejecting it is the server's job.
type HeaderBuilder struct {
	channelID string
	project   string
}

// NewHeaderBuilder wires the fixed channel and project identifiers.
func NewHeaderBuilder(channelID, project string) *HeaderBuilder {
	return &HeaderBuilder{channelID: channelID, project: project}
}

// Client is the profile for unauthenticated calls such as token
// acquisition: trace and content headers, no Authorization.
func (b *HeaderBuilder) Client() http.Header {
	trace := NewRequestTrace()
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set(headerChannelID, b.channelID)
	header.Set(headerProject, b.project)
	header.Set(headerCorrelationID, trace.CorrelationID)
	header.Set(headerTransactionID, trace.TransactionID)
	return header
}

// Login is the profile for the login call: client profile plus the
// client token as Authorization.
func (b *HeaderBuilder) Login(ctx context.Context, sess *session.Manager) http.Header {
	header := b.Client()
	token, _ := sess.ClientToken(ctx)
	header.Set("Authorization", authorizationValue(token.TokenType, token.Value))
	return header
}

// Authenticated is the profile for user-scoped calls: client profile
// plus the user token as Authorization.
func (b *HeaderBuilder) Authenticated(ctx context.Context, sess *session.Manager) http.Header {
	header := b.Client()
	userSession, _ := sess.UserSession(ctx)
	header.Set("Authorization", authorizationValue(userSession.TokenType, userSession.Token))
	return header
}

func authorizationValue(tokenType, token string) string {
	if tokenType == "" {
		tokenType = defaultTokenType
	}
	return tokenType + " " + token
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in a bad way; fall
		// back to a constant suffix rather than aborting a trace id.
		return "000000000"[:n]
	}
	for i, b := range buf {
		buf[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return string(buf)
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
