package auth

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

type fakeChecker map[string]bool

func (f fakeChecker) UsernameExists(_ context.Context, username string) (bool, error) {
	return f[username], nil
}

func TestSanitizeUsername(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jane.Doe", "jane.doe"},
		{"user+tag", "usertag"},
		{"UPPER_case-99", "upper_case-99"},
		{"averyverylongusernamethatkeepsgoing", "averyverylongusernam"},
	}
	for _, tc := range cases {
		if got := SanitizeUsername(tc.in); got != tc.want {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeUsernameEmptyFallback(t *testing.T) {
	got := SanitizeUsername("@#$%")
	if !strings.HasPrefix(got, "user") || len(got) <= 4 {
		t.Fatalf("expected timestamped fallback, got %q", got)
	}
}

func TestGenerateUniqueUsernameFree(t *testing.T) {
	got, err := GenerateUniqueUsername(context.Background(), fakeChecker{}, "jane")
	if err != nil {
		t.Fatal(err)
	}
	if got != "jane" {
		t.Fatalf("expected jane, got %q", got)
	}
}

func TestGenerateUniqueUsernameProbes(t *testing.T) {
	checker := fakeChecker{"jane": true, "jane1": true, "jane2": true}
	got, err := GenerateUniqueUsername(context.Background(), checker, "jane")
	if err != nil {
		t.Fatal(err)
	}
	if got != "jane3" {
		t.Fatalf("expected jane3, got %q", got)
	}
}

func TestGenerateUniqueUsernameExhaustedFallsBack(t *testing.T) {
	checker := fakeChecker{"jane": true}
	for i := 1; i <= 100; i++ {
		checker["jane"+strconv.Itoa(i)] = true
	}
	got, err := GenerateUniqueUsername(context.Background(), checker, "jane")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "jane-") {
		t.Fatalf("expected timestamp fallback, got %q", got)
	}
}
