package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/storyvouch/api/internal/auth"
	"github.com/storyvouch/api/pkg/response"
)

// AuthMiddleware validates session tokens minted into invite links. A token
// authorizes exactly one interview session.
type AuthMiddleware struct {
	jwtSecret string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate validates the session token from the Authorization header
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		claims, err := auth.ValidateSessionToken(parts[1], m.jwtSecret)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		c.Locals("sessionId", claims.SessionID)
		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireSession rejects requests whose token is scoped to a different
// session than the one addressed in the path.
func RequireSession(c *fiber.Ctx) error {
	if GetSessionID(c) != c.Params("id") {
		return response.Forbidden(c, "Token not valid for this session")
	}
	return c.Next()
}

// GetSessionID extracts the session ID from context
func GetSessionID(c *fiber.Ctx) string {
	if sessionID, ok := c.Locals("sessionId").(string); ok {
		return sessionID
	}
	return ""
}
