// Package auth composes the login flow, the session predicates, and
// logout into the facade the transport layer consumes.
package auth

import (
	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/Vikas210-dev/cyber-new/internal/domain"
)

// Algorithms the upstream identity provider is known to emit. The list
// only gates parsing; no signature is checked here.
var decodeAlgorithms = []gojose.SignatureAlgorithm{
	gojose.RS256, gojose.RS384, gojose.RS512,
	gojose.ES256, gojose.ES384, gojose.ES512,
	gojose.PS256, gojose.PS512,
	gojose.HS256, gojose.HS384, gojose.HS512,
	gojose.EdDSA,
}

type tokenClaims struct {
	Subject           string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// DecodeUser derives the display identity from a user token payload
// WITHOUT verifying the signature. The result is best-effort display
// data only and must never drive an authorization decision by itself;
// the upstream API remains the authority. A malformed token yields an
// absent user, never an error.
func DecodeUser(token string) (domain.User, bool) {
	parsed, err := gojwt.ParseSigned(token, decodeAlgorithms)
	if err != nil {
		return domain.User{}, false
	}

	var claims tokenClaims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return domain.User{}, false
	}

	user := domain.User{
		Subject:  claims.Subject,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
		Roles:    claims.RealmAccess.Roles,
	}
	if user.Subject == "" {
		user.Subject = "unknown"
	}
	if user.Username == "" {
		user.Username = "user"
	}
	return user, true
}
