package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityKey is the fiber locals key under which the resolved identity is
// stored, exactly once per request.
const IdentityKey = "identity"

type Kind int

const (
	Anonymous Kind = iota
	Authenticated
	PendingOAuth
)

// Identity is the tagged union every handler consumes instead of poking at
// cookies or token claims itself.
type Identity struct {
	Kind    Kind
	UserID  uuid.UUID
	Email   string
	Role    string
	Pending *PendingRecord
}

// IdentityFromToken builds an authenticated identity from a verified session
// token. A token without a parseable sub claim degrades to anonymous.
func IdentityFromToken(token *jwt.Token) Identity {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{Kind: Anonymous}
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{Kind: Anonymous}
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return Identity{Kind: Authenticated, UserID: userID, Email: email, Role: role}
}

// IdentityFrom returns the identity resolved by the identity middleware.
func IdentityFrom(c *fiber.Ctx) Identity {
	if id, ok := c.Locals(IdentityKey).(Identity); ok {
		return id
	}
	return Identity{Kind: Anonymous}
}
