package session

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the unverified view of the access token payload. The client
// never checks signatures; claims are decoded for UX decisions only and the
// backend re-validates on every API call.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Expires returns the expiry claim, zero when absent.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// UserID prefers the uid claim over the subject.
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// IsWellFormed performs the structural shape check: three dot-separated
// segments, each valid base64url. It never parses the payload.
func IsWellFormed(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}

	for _, part := range parts {
		if part == "" {
			continue
		}
		if _, err := base64.RawURLEncoding.DecodeString(part); err != nil {
			return false
		}
	}
	return true
}

// DecodeUnverified decodes the token payload without verifying the
// signature. Structurally invalid tokens yield ErrTokenMalformed.
func DecodeUnverified(token string) (*TokenClaims, error) {
	if !IsWellFormed(token) {
		return nil, ErrTokenMalformed
	}

	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// Expired reports whether the token's unverified expiry claim is at or
// before now. Tokens that cannot be decoded, or that carry no expiry claim,
// count as expired.
func Expired(token string, now time.Time) bool {
	claims, err := DecodeUnverified(token)
	if err != nil {
		return true
	}

	exp := claims.Expires()
	if exp.IsZero() {
		return true
	}
	return !exp.After(now)
}

// TimeToExpiry returns the remaining lifetime of the token. Negative values
// mean the token is already expired.
func TimeToExpiry(token string, now time.Time) (time.Duration, error) {
	claims, err := DecodeUnverified(token)
	if err != nil {
		return 0, err
	}

	exp := claims.Expires()
	if exp.IsZero() {
		return 0, ErrTokenExpired
	}
	return exp.Sub(now), nil
}
