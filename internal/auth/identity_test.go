package auth

import (
	"testing"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"
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

func TestDecodeUserExtractsClaims(t *testing.T) {
	token := signToken(t, map[string]any{
		"sub":                "user-42",
		"preferred_username": "agent1",
		"email":              "agent1@example.com",
		"realm_access": map[string]any{
			"roles": []string{"ADMIN", "AGENT"},
		},
	})

	user, ok := DecodeUser(token)
	require.True(t, ok)
	require.Equal(t, "user-42", user.Subject)
	require.Equal(t, "agent1", user.Username)
	require.Equal(t, "agent1@example.com", user.Email)
	require.Equal(t, []string{"ADMIN", "AGENT"}, user.Roles)
}

func TestDecodeUserDefaultsMissingIdentity(t *testing.T) {
	token := signToken(t, map[string]any{
		"email": "someone@example.com",
	})

	user, ok := DecodeUser(token)
	require.True(t, ok)
	require.Equal(t, "unknown", user.Subject)
	require.Equal(t, "user", user.Username)
	require.Empty(t, user.Roles)
}

func TestDecodeUserMalformedToken(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b", "a.b.c"} {
		_, ok := DecodeUser(token)
		require.False(t, ok, "token %q should not decode", token)
	}
}
