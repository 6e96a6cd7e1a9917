// Package auth issues and checks the bearer tokens and password hashes used
// by the API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Tokens signs and verifies HS256 tokens with a single shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a signer for secret. A ttl of zero issues tokens that
// never expire.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("auth: no secret configured")
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign creates a token for the given user.
func (t *Tokens) Sign(username string, isAdmin bool) (string, error) {
	now := t.now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: username,
		IsAdmin:  isAdmin,
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses token and checks its signature and expiry.
func (t *Tokens) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Username == "" {
		return nil, errors.New("token has no username")
	}
	return claims, nil
}
