// Package auth owns session tokens, the pending-OAuth bridge record, and the
// per-request identity union.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/myaimediamgr/backend/internal/models"
)

// Cookie names shared with the browser client.
const (
	SessionCookie  = "mam_jwt"
	PendingCookie  = "pending_oauth"
	StateCookie    = "oauth_state"
	ReturnToCookie = "oauth_return_to"
)

// SignSession mints the bearer token carried by the mam_jwt cookie.
func SignSession(secret string, expiry time.Duration, user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(expiry).Unix(),
	}
	if user.FullName != nil {
		claims["name"] = *user.FullName
	}
	if user.GoogleAvatar != nil {
		claims["picture"] = *user.GoogleAvatar
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSession validates a session token and returns its claims.
func ParseSession(secret, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
