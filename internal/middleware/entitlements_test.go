package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/dto"
	"github.com/myaimediamgr/backend/internal/models"
	"github.com/myaimediamgr/backend/internal/plans"
	"github.com/myaimediamgr/backend/internal/storage"
)

func seedGateUser(t *testing.T, store *storage.Memory, mutate func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{
		ID:      uuid.New(),
		Email:   uuid.NewString() + "@example.com",
		Role:    "user",
		Tier:    plans.Starter,
		Credits: 10,
	}
	if mutate != nil {
		mutate(user)
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}

// gateApp wires an identity-stubbing middleware ahead of the gate under test.
func gateApp(user *models.User, path string, gates ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(auth.IdentityKey, auth.Identity{
				Kind: auth.Authenticated, UserID: user.ID, Email: user.Email, Role: user.Role,
			})
		} else {
			c.Locals(auth.IdentityKey, auth.Identity{Kind: auth.Anonymous})
		}
		return c.Next()
	})
	handlers := append(gates, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.All(path, handlers...)
	return app
}

func TestRequireCreditsDebits(t *testing.T) {
	store := storage.NewMemory()
	user := seedGateUser(t, store, nil)
	app := gateApp(user, "/api/generate", RequireCredits(store, 4, "imageGeneration"))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/generate", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got, _ := store.GetUser(context.Background(), user.ID)
	if got.Credits != 6 {
		t.Fatalf("expected balance 6 after debit, got %d", got.Credits)
	}
}

func TestRequireCreditsInsufficient(t *testing.T) {
	store := storage.NewMemory()
	user := seedGateUser(t, store, func(u *models.User) { u.Credits = 2 })
	app := gateApp(user, "/api/generate", RequireCredits(store, 5, "videoGeneration"))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/generate", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}

	var body dto.CreditsErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != dto.CodeInsufficientCredits || body.FeatureKey != "videoGeneration" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Required != 5 || body.Balance != 2 {
		t.Fatalf("expected required=5 balance=2, got %+v", body)
	}

	got, _ := store.GetUser(context.Background(), user.ID)
	if got.Credits != 2 {
		t.Fatalf("rejected request must not debit, balance %d", got.Credits)
	}
}

func TestRequireCreditsAdminBypass(t *testing.T) {
	store := storage.NewMemory()
	user := seedGateUser(t, store, func(u *models.User) {
		u.Role = "admin"
		u.Credits = 0
	})
	app := gateApp(user, "/api/generate", RequireCredits(store, 5, "imageGeneration"))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/generate", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected admin bypass 200, got %d", resp.StatusCode)
	}
	got, _ := store.GetUser(context.Background(), user.ID)
	if got.Credits != 0 {
		t.Fatal("admin bypass must not debit")
	}
}

func TestRequireCreditsAnonymous(t *testing.T) {
	store := storage.NewMemory()
	app := gateApp(nil, "/api/generate", RequireCredits(store, 1, "imageGeneration"))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/generate", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireEntitlementDenied(t *testing.T) {
	store := storage.NewMemory()
	user := seedGateUser(t, store, nil)
	app := gateApp(user, "/api/developer/keys", RequireEntitlement(store, plans.APIAccess))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/developer/keys", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	var body dto.EntitlementErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != dto.CodeFeatureNotEntitled || body.Feature != plans.APIAccess || body.Plan != plans.Starter {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRequireEntitlementGranted(t *testing.T) {
	store := storage.NewMemory()
	user := seedGateUser(t, store, func(u *models.User) { u.Tier = plans.Pro })
	app := gateApp(user, "/api/developer/keys", RequireEntitlement(store, plans.APIAccess))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/developer/keys", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestTrialGatingExpiredBlocks(t *testing.T) {
	store := storage.NewMemory()
	past := time.Now().Add(-time.Hour)
	user := seedGateUser(t, store, func(u *models.User) { u.TrialEndsAt = &past })
	app := gateApp(user, "/api/posts", EnforceTrialGating(store))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}

	var body dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != dto.CodeTrialExpired {
		t.Fatalf("expected TRIAL_EXPIRED, got %s", body.Error)
	}
}

func TestTrialGatingExpiredAllowsBilling(t *testing.T) {
	store := storage.NewMemory()
	past := time.Now().Add(-time.Hour)
	user := seedGateUser(t, store, func(u *models.User) { u.TrialEndsAt = &past })
	app := gateApp(user, "/api/billing/micropack", EnforceTrialGating(store))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/billing/micropack", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("billing must stay reachable after expiry, got %d", resp.StatusCode)
	}
}

func TestTrialGatingPaidPlanNotBlocked(t *testing.T) {
	store := storage.NewMemory()
	past := time.Now().Add(-time.Hour)
	user := seedGateUser(t, store, func(u *models.User) {
		u.TrialEndsAt = &past
		u.SubscriptionPlan = "pro"
	})
	app := gateApp(user, "/api/posts", EnforceTrialGating(store))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("paid plan must not be gated, got %d", resp.StatusCode)
	}
}

func TestTrialGatingLiteBlocksCampaigns(t *testing.T) {
	store := storage.NewMemory()
	future := time.Now().Add(time.Hour)
	user := seedGateUser(t, store, func(u *models.User) {
		u.SubscriptionStatus = "trial_lite"
		u.TrialEndsAt = &future
	})

	for _, path := range []string{"/api/campaigns", "/api/video/render"} {
		app := gateApp(user, path, EnforceTrialGating(store))
		resp, err := app.Test(httptest.NewRequest("POST", path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Fatalf("expected 403 on %s during lite trial, got %d", path, resp.StatusCode)
		}
		var body dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Error != dto.CodeLiteTrialRestricted {
			t.Fatalf("expected LITE_TRIAL_RESTRICTED, got %s", body.Error)
		}
	}

	app := gateApp(user, "/api/posts", EnforceTrialGating(store))
	resp, err := app.Test(httptest.NewRequest("POST", "/api/posts", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("lite trial should still allow posts, got %d", resp.StatusCode)
	}
}
