package apiclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenUsable reports whether token is worth sending. Tokens that are JWTs
// and already expired are skipped; opaque tokens are left for the server to judge.
func tokenUsable(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return false
	}
	return true
}
