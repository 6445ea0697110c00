package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/config"
	"github.com/myaimediamgr/backend/internal/dto"

	jwtware "github.com/gofiber/contrib/jwt"
)

// Identity resolves the caller exactly once per request into the tagged
// auth.Identity union: a valid mam_jwt cookie wins, then a decodable
// pending_oauth cookie, then anonymous. It never rejects; route guards do.
func Identity(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		TokenLookup: "cookie:" + auth.SessionCookie,
		SuccessHandler: func(c *fiber.Ctx) error {
			if token, ok := c.Locals("user").(*jwt.Token); ok && token != nil {
				c.Locals(auth.IdentityKey, auth.IdentityFromToken(token))
			} else {
				c.Locals(auth.IdentityKey, auth.Identity{Kind: auth.Anonymous})
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			if raw := c.Cookies(auth.PendingCookie); raw != "" {
				if rec, err := auth.DecodePending(cfg.JWTSecret, raw); err == nil {
					c.Locals(auth.IdentityKey, auth.Identity{
						Kind:    auth.PendingOAuth,
						Email:   rec.Email,
						Pending: rec,
					})
					return c.Next()
				}
			}
			c.Locals(auth.IdentityKey, auth.Identity{Kind: auth.Anonymous})
			return c.Next()
		},
	})
}

// RequireAuth rejects anything but a fully authenticated identity.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.IdentityFrom(c).Kind != auth.Authenticated {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: dto.CodeAuthRequired,
			})
		}
		return c.Next()
	}
}
