package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Vikas210-dev/cyber-new/internal/session"
)

// SessionCookie names the browser session id cookie.
const SessionCookie = "console_sid"

const sessionContextKey = "sessionManager"

// Sessions binds every request to its browser session: the cookie is
// issued on first contact and the request carries a session.Manager
// from then on. The cookie identifies the session bag only; no
// credential material ever travels in it.
type Sessions struct {
	store  session.Store
	ttl    time.Duration
	secure bool
}

// NewSessions builds the session middleware.
func NewSessions(store session.Store, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{store: store, ttl: ttl, secure: secure}
}

// Handler attaches the session manager to the gin context.
func (s *Sessions) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, int(s.ttl.Seconds()), "/", "", s.secure, true)
		}
		c.Set(sessionContextKey, session.NewManager(s.store, sid))
		c.Next()
	}
}

// GetSession extracts the request's session manager.
func GetSession(c *gin.Context) (*session.Manager, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	manager, ok := value.(*session.Manager)
	return manager, ok
}
