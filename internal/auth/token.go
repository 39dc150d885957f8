package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWaiter Role = "waiter"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleWaiter
}

type Claims struct {
	Username string `json:"sub"`
	jwt.RegisteredClaims
}

// InspectToken decodes an access token's claims without verifying the
// signature. The client holds no signing secret; verification is the
// server's job. This is only used to read expiry and subject locally.
func InspectToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpired reports whether the token demonstrably expired: it parses
// as a JWT and carries an exp claim in the past. Opaque or exp-less tokens
// are left for the server to judge.
func TokenExpired(tokenString string) bool {
	claims, err := InspectToken(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(time.Now())
}
