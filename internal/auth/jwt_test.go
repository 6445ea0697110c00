package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/models"
)

func TestSessionRoundTrip(t *testing.T) {
	name := "Jane Doe"
	user := &models.User{
		ID:       uuid.New(),
		Email:    "jane@example.com",
		Role:     "user",
		FullName: &name,
	}

	token, err := SignSession(testSecret, time.Hour, user)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseSession(testSecret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims["sub"] != user.ID.String() {
		t.Fatalf("expected sub %s, got %v", user.ID, claims["sub"])
	}
	if claims["email"] != user.Email {
		t.Fatalf("expected email %s, got %v", user.Email, claims["email"])
	}
	if claims["name"] != name {
		t.Fatalf("expected name %s, got %v", name, claims["name"])
	}
}

func TestSessionExpired(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "jane@example.com", Role: "user"}
	token, err := SignSession(testSecret, -time.Minute, user)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSession(testSecret, token); err == nil {
		t.Fatal("expected expired token to fail parsing")
	}
}

func TestIdentityFromToken(t *testing.T) {
	id := uuid.New()
	token := &jwt.Token{Claims: jwt.MapClaims{
		"sub":   id.String(),
		"email": "jane@example.com",
		"role":  "admin",
	}}

	ident := IdentityFromToken(token)
	if ident.Kind != Authenticated {
		t.Fatalf("expected authenticated identity, got kind %d", ident.Kind)
	}
	if ident.UserID != id || ident.Email != "jane@example.com" || ident.Role != "admin" {
		t.Fatalf("identity mismatch: %+v", ident)
	}
}

func TestIdentityFromTokenBadSub(t *testing.T) {
	token := &jwt.Token{Claims: jwt.MapClaims{"sub": "not-a-uuid"}}
	if ident := IdentityFromToken(token); ident.Kind != Anonymous {
		t.Fatalf("expected anonymous for bad sub, got kind %d", ident.Kind)
	}
}
