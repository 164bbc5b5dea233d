// ABOUTME: Best-effort inspection of bearer tokens for display
// ABOUTME: Reads JWT claims without verifying; never used to authorize

package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when the token is not a readable JWT
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenClaims are the fields shown by whoami
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past.
// Tokens without an expiry never report expired.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type peekClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// PeekClaims decodes the token payload without checking its signature.
// The server remains the only authority on validity.
func PeekClaims(token string) (TokenClaims, error) {
	var claims peekClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, ErrOpaqueToken
	}

	out := TokenClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
