package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrPendingInvalid covers malformed, tampered, expired, or email-less
	// pending cookies. The bridge record is client-held only, so there is
	// nothing to look up server-side; an unreadable cookie is simply gone.
	ErrPendingInvalid = errors.New("pending oauth record invalid or expired")
)

// PendingRecord is the ephemeral identity issued when Google confirms an email
// we have no account for. It lives only in the pending_oauth cookie until
// trial selection promotes it to a durable User.
type PendingRecord struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	BaseUsername string `json:"baseUsername,omitempty"`
}

// EncodePending signs a pending record into a short-lived cookie value.
func EncodePending(secret string, ttl time.Duration, rec *PendingRecord) (string, error) {
	claims := jwt.MapClaims{
		"email":         rec.Email,
		"first_name":    rec.FirstName,
		"last_name":     rec.LastName,
		"full_name":     rec.FullName,
		"avatar":        rec.Avatar,
		"base_username": rec.BaseUsername,
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// DecodePending verifies and unpacks a pending cookie value.
func DecodePending(secret, tokenString string) (*PendingRecord, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrPendingInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrPendingInvalid
	}

	rec := &PendingRecord{
		Email:        stringClaim(claims, "email"),
		FirstName:    stringClaim(claims, "first_name"),
		LastName:     stringClaim(claims, "last_name"),
		FullName:     stringClaim(claims, "full_name"),
		Avatar:       stringClaim(claims, "avatar"),
		BaseUsername: stringClaim(claims, "base_username"),
	}
	if rec.Email == "" {
		return nil, ErrPendingInvalid
	}
	return rec, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
