package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by interview session tokens. The
// token is scoped to a single session; there are no user accounts on the
// recording side.
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// ValidateSessionToken validates a session token using HMAC signing
func ValidateSessionToken(tokenString, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// GenerateSessionToken creates a session token for the invite link
func GenerateSessionToken(sessionID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storyvouch-api",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
