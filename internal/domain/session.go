package domain

// ClientToken is the application-level credential obtained via the
// client-credentials flow. It authorizes calls made before a human user
// has authenticated, notably the login call itself.
type ClientToken struct {
	Value     string
	TokenType string
	// ExpiresAt is absolute epoch milliseconds, computed once at
	// acquisition time as now + expiresIn*1000 and never recomputed.
	ExpiresAt int64
}

// UserSession is the credential set issued after a successful login.
// The refresh pair is optional; both fields are populated together or
// not at all.
type UserSession struct {
	Token            string
	TokenType        string
	ExpiresAt        int64
	RefreshToken     string
	RefreshExpiresAt int64
}

// TokenGrant is the token payload shape shared by the client token and
// login endpoints of the upstream identity API.
type TokenGrant struct {
	Token            string `json:"token"`
	TokenType        string `json:"tokenType"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn,omitempty"`
}

// User is the display identity derived from the user token payload. It
// is reconstructed on demand and never persisted: invalidating the
// session invalidates it. The payload is decoded without signature
// verification, so it must never drive an authorization decision on its
// own; the upstream API remains the authority.
type User struct {
	Subject  string   `json:"subject"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HasAnyRole reports whether the user holds at least one of the given
// roles. An empty required set matches everyone.
func (u User) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
