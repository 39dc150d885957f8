package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestInspectTokenReadsClaimsWithoutSecret(t *testing.T) {
	token := signedToken(t, Claims{
		Username: "ann",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := InspectToken(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Username != "ann" {
		t.Fatalf("expected subject ann, got %q", claims.Username)
	}
}

func TestTokenExpired(t *testing.T) {
	cases := []struct {
		name    string
		token   string
		expired bool
	}{
		{
			name: "future exp",
			token: signedToken(t, jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}),
			expired: false,
		},
		{
			name: "past exp",
			token: signedToken(t, jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			}),
			expired: true,
		},
		{
			name:    "opaque token is the server's call",
			token:   "not-a-jwt",
			expired: false,
		},
		{
			name:    "no exp claim is the server's call",
			token:   signedToken(t, jwt.RegisteredClaims{}),
			expired: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TokenExpired(tc.token); got != tc.expired {
				t.Fatalf("expected expired=%v, got %v", tc.expired, got)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleWaiter.Valid() {
		t.Fatalf("known roles must be valid")
	}
	if Role("chef").Valid() {
		t.Fatalf("unknown role must be invalid")
	}
}
