package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the auth-claim payload attached to every signed token.
// Role mirrors the claims store; a stale token keeps its old role until
// the client forces a refresh.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	Secret string
	Issuer string
}
