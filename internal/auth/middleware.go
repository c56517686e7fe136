package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/maintsys/mro-stock-service/internal/model"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxFullNameKey = "full_name"
	CtxRoleKey     = "user_role"
)

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed token claims")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxFullNameKey, claims.FullName)
		c.Locals(CtxRoleKey, claims.Role)

		return c.Next()
	}
}

func RequireRole(allowed ...model.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxRoleKey).(model.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "missing role")
		}
		for _, r := range allowed {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
	}
}

// CurrentActor returns the attribution string for the authenticated user,
// preferring the display name over the login.
func CurrentActor(c *fiber.Ctx) string {
	if name, ok := c.Locals(CtxFullNameKey).(string); ok && name != "" {
		return name
	}
	if username, ok := c.Locals(CtxUsernameKey).(string); ok {
		return username
	}
	return ""
}

func CurrentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(CtxUserIDKey).(string); ok {
		return id
	}
	return ""
}
