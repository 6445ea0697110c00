package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/models"
	"github.com/myaimediamgr/backend/internal/plans"
	"github.com/myaimediamgr/backend/internal/storage"
)

func newTrialFixture(t *testing.T) (*TrialService, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	return NewTrialService(store), store
}

func seedAuthedUser(t *testing.T, store *storage.Memory) (*models.User, auth.Identity) {
	t.Helper()
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "jane@example.com",
		Username:            "jane",
		Role:                "user",
		Tier:                plans.Starter,
		NeedsTrialSelection: true,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user, auth.Identity{Kind: auth.Authenticated, UserID: user.ID, Email: user.Email}
}

func TestSelectAuthenticatedCommitsTrial(t *testing.T) {
	svc, store := newTrialFixture(t)
	user, ident := seedAuthedUser(t, store)

	before := time.Now()
	sel, err := svc.Select(context.Background(), ident, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Created {
		t.Fatal("authenticated selection must not create a user")
	}
	if sel.Variant.Key != plans.VariantCard14 {
		t.Fatalf("expected default card14, got %s", sel.Variant.Key)
	}

	got, _ := store.GetUser(context.Background(), user.ID)
	if got.SubscriptionStatus != "trial" || got.NeedsTrialSelection {
		t.Fatalf("trial fields not committed: %+v", got)
	}
	if got.Credits != sel.Variant.Credits {
		t.Fatalf("expected %d credits, got %d", sel.Variant.Credits, got.Credits)
	}
	if got.TrialEndsAt == nil || got.TrialStartedAt == nil {
		t.Fatal("trial window not set")
	}
	wantEnd := got.TrialStartedAt.Add(time.Duration(sel.Variant.Days) * 24 * time.Hour)
	if !got.TrialEndsAt.Equal(wantEnd) {
		t.Fatalf("endsAt %v is not startedAt+%dd", got.TrialEndsAt, sel.Variant.Days)
	}
	if got.TrialStartedAt.Before(before.Add(-time.Second)) {
		t.Fatal("startedAt should be now-ish")
	}
}

func TestSelectBadVariantNoMutation(t *testing.T) {
	svc, store := newTrialFixture(t)
	user, ident := seedAuthedUser(t, store)

	_, err := svc.Select(context.Background(), ident, "", "gold30")
	if !errors.Is(err, ErrBadVariant) {
		t.Fatalf("expected ErrBadVariant, got %v", err)
	}

	got, _ := store.GetUser(context.Background(), user.ID)
	if got.TrialVariant != nil || !got.NeedsTrialSelection {
		t.Fatalf("bad variant must not mutate user: %+v", got)
	}
}

func TestSelectAnonymousRejected(t *testing.T) {
	svc, _ := newTrialFixture(t)
	_, err := svc.Select(context.Background(), auth.Identity{Kind: auth.Anonymous}, "", "")
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestSelectPromotesPendingOnce(t *testing.T) {
	svc, store := newTrialFixture(t)
	ident := auth.Identity{
		Kind:  auth.PendingOAuth,
		Email: "new@example.com",
		Pending: &auth.PendingRecord{
			Email:        "new@example.com",
			FullName:     "New User",
			BaseUsername: "new",
		},
	}

	sel, err := svc.Select(context.Background(), ident, "lite", "")
	if err != nil {
		t.Fatal(err)
	}
	if !sel.Created {
		t.Fatal("promotion must report a created user")
	}
	if sel.Variant.Key != plans.VariantNoCard7 {
		t.Fatalf("lite plan should map to nocard7, got %s", sel.Variant.Key)
	}

	got, err := store.GetUserByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "new" {
		t.Fatalf("expected username new, got %q", got.Username)
	}
	if !got.EmailVerified || got.Tier != plans.Starter || got.SubscriptionStatus != "trial" {
		t.Fatalf("promoted user shape wrong: %+v", got)
	}
	if got.Credits != 50 {
		t.Fatalf("expected 50 credits, got %d", got.Credits)
	}

	// Replaying the same pending record must not mint a second account.
	_, err = svc.Select(context.Background(), ident, "lite", "")
	if !errors.Is(err, ErrInvalidPending) {
		t.Fatalf("expected ErrInvalidPending on replay, got %v", err)
	}
}

func TestSelectPendingUsernameCollision(t *testing.T) {
	svc, store := newTrialFixture(t)
	if err := store.CreateUser(context.Background(), &models.User{
		ID: uuid.New(), Email: "taken@example.com", Username: "new",
	}); err != nil {
		t.Fatal(err)
	}

	ident := auth.Identity{
		Kind:    auth.PendingOAuth,
		Email:   "new@example.com",
		Pending: &auth.PendingRecord{Email: "new@example.com", BaseUsername: "new"},
	}
	sel, err := svc.Select(context.Background(), ident, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if sel.User.Username != "new1" {
		t.Fatalf("expected probed username new1, got %q", sel.User.Username)
	}
}

func TestSelectLite(t *testing.T) {
	svc, store := newTrialFixture(t)
	user, _ := seedAuthedUser(t, store)

	end, err := svc.SelectLite(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}

	got, _ := store.GetUser(context.Background(), user.ID)
	if got.SubscriptionStatus != "trial_lite" {
		t.Fatalf("expected trial_lite status, got %s", got.SubscriptionStatus)
	}
	if got.Credits != 50 {
		t.Fatalf("expected 50 granted credits, got %d", got.Credits)
	}
	if got.TrialEndsAt == nil || !got.TrialEndsAt.Equal(end) {
		t.Fatal("returned end time does not match stored window")
	}

	txns := store.Transactions()
	if len(txns) != 1 || txns[0].Type != models.TxnTrialGrant || txns[0].Amount != 50 {
		t.Fatalf("expected one 50-credit trial_grant, got %+v", txns)
	}
}

func TestStatusUnknownUser(t *testing.T) {
	svc, _ := newTrialFixture(t)
	if _, err := svc.Status(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
