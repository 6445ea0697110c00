package middleware

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/dto"
	"github.com/myaimediamgr/backend/internal/models"
	"github.com/myaimediamgr/backend/internal/plans"
	"github.com/myaimediamgr/backend/internal/storage"
)

// Paths a user with an expired trial may still reach.
var trialGateAllowedPrefixes = []string{
	"/api/billing",
	"/api/subscription",
	"/api/profile",
}

// RequireCredits gates a metered action on the authoritative credit balance.
// The debit is a single conditional update, so two concurrent requests can
// never drive the balance negative.
func RequireCredits(store storage.Store, amount int, featureKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := gateUser(c, store)
		if err != nil {
			return gateError(c, err)
		}
		if user.IsAdmin() || user.CreditsUnlimited {
			return c.Next()
		}

		if err := store.DebitCredits(c.UserContext(), user.ID, amount, featureKey); err != nil {
			if errors.Is(err, storage.ErrInsufficientCredits) {
				return c.Status(fiber.StatusPaymentRequired).JSON(dto.CreditsErrorResponse{
					Error:      dto.CodeInsufficientCredits,
					FeatureKey: featureKey,
					Required:   amount,
					Balance:    user.Credits,
				})
			}
			slog.Error("credit debit failed", "user_id", user.ID, "feature", featureKey, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: dto.CodeInternal, Message: "Credit check failed",
			})
		}
		return c.Next()
	}
}

// RequireEntitlement gates a feature on the caller's plan.
func RequireEntitlement(store storage.Store, feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := gateUser(c, store)
		if err != nil {
			return gateError(c, err)
		}
		if user.IsAdmin() || user.CreditsUnlimited {
			return c.Next()
		}

		plan := user.Tier
		if plan == "" {
			plan = plans.Starter
		}
		if !plans.HasEntitlement(plan, feature) {
			return c.Status(fiber.StatusForbidden).JSON(dto.EntitlementErrorResponse{
				Error:   dto.CodeFeatureNotEntitled,
				Feature: feature,
				Plan:    plan,
			})
		}
		return c.Next()
	}
}

// EnforceTrialGating blocks expired trials outside the billing/profile
// allow-list, and blocks campaign/video paths during the lite trial.
func EnforceTrialGating(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := gateUser(c, store)
		if err != nil {
			return gateError(c, err)
		}

		path := c.Path()
		noPaidPlan := user.SubscriptionPlan == "" || user.SubscriptionPlan == "none"
		if user.TrialEndsAt != nil && time.Now().After(*user.TrialEndsAt) && noPaidPlan {
			if !trialGateAllows(path) {
				return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
					Error:   dto.CodeTrialExpired,
					Message: "Trial ended. Please subscribe to continue.",
				})
			}
		}

		if user.SubscriptionStatus == "trial_lite" {
			if strings.Contains(path, "/campaign") || strings.Contains(path, "/video") {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error:   dto.CodeLiteTrialRestricted,
					Message: "This feature is unavailable during the Lite trial.",
				})
			}
		}

		return c.Next()
	}
}

func trialGateAllows(path string) bool {
	for _, prefix := range trialGateAllowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// gateUser loads the authenticated caller's durable record; gates never trust
// token claims for balances or trial state.
func gateUser(c *fiber.Ctx, store storage.Store) (*models.User, error) {
	ident := auth.IdentityFrom(c)
	if ident.Kind != auth.Authenticated {
		return nil, storage.ErrNotFound
	}
	return store.GetUser(c.UserContext(), ident.UserID)
}

func gateError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: dto.CodeAuthRequired,
		})
	}
	slog.Error("gate user lookup failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: dto.CodeInternal, Message: "Internal server error",
	})
}
