package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	maxUsernameLen = 20
	maxProbes      = 100
)

// UsernameChecker is the slice of the storage layer username generation needs.
type UsernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// SanitizeUsername lowercases, strips everything outside [a-z0-9._-], and
// truncates to 20 characters. An empty result falls back to a timestamped
// placeholder.
func SanitizeUsername(base string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > maxUsernameLen {
		s = s[:maxUsernameLen]
	}
	if s == "" {
		s = fmt.Sprintf("user%d", time.Now().Unix())
	}
	return s
}

// GenerateUniqueUsername probes the candidate, then candidate1, candidate2, …
// up to 100 suffixes, and finally falls back to a timestamped name so it always
// terminates. The probe loop is sequential; two simultaneous signups can still
// pick the same candidate and one of them will hit the unique index on insert.
func GenerateUniqueUsername(ctx context.Context, checker UsernameChecker, base string) (string, error) {
	candidate := SanitizeUsername(base)

	taken, err := checker.UsernameExists(ctx, candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	for i := 1; i <= maxProbes; i++ {
		next := fmt.Sprintf("%s%d", candidate, i)
		taken, err := checker.UsernameExists(ctx, next)
		if err != nil {
			return "", err
		}
		if !taken {
			return next, nil
		}
	}

	return fmt.Sprintf("%s-%d", candidate, time.Now().Unix()), nil
}
