package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestPendingRoundTrip(t *testing.T) {
	rec := &PendingRecord{
		Email:        "jane@example.com",
		FirstName:    "Jane",
		LastName:     "Doe",
		FullName:     "Jane Doe",
		Avatar:       "https://example.com/a.png",
		BaseUsername: "jane",
	}
	value, err := EncodePending(testSecret, 10*time.Minute, rec)
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodePending(testSecret, value)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *rec {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, rec)
	}
}

func TestPendingExpired(t *testing.T) {
	value, err := EncodePending(testSecret, -time.Minute, &PendingRecord{Email: "jane@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodePending(testSecret, value); !errors.Is(err, ErrPendingInvalid) {
		t.Fatalf("expected ErrPendingInvalid, got %v", err)
	}
}

func TestPendingWrongSecret(t *testing.T) {
	value, err := EncodePending(testSecret, 10*time.Minute, &PendingRecord{Email: "jane@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodePending("other-secret", value); !errors.Is(err, ErrPendingInvalid) {
		t.Fatalf("expected ErrPendingInvalid, got %v", err)
	}
}

func TestPendingGarbage(t *testing.T) {
	if _, err := DecodePending(testSecret, "not.a.jwt"); !errors.Is(err, ErrPendingInvalid) {
		t.Fatalf("expected ErrPendingInvalid, got %v", err)
	}
}

func TestPendingMissingEmail(t *testing.T) {
	value, err := EncodePending(testSecret, 10*time.Minute, &PendingRecord{FullName: "No Email"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodePending(testSecret, value); !errors.Is(err, ErrPendingInvalid) {
		t.Fatalf("expected ErrPendingInvalid for email-less record, got %v", err)
	}
}
