package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/config"
	"github.com/myaimediamgr/backend/internal/models"
	"github.com/myaimediamgr/backend/internal/plans"
	"github.com/myaimediamgr/backend/internal/storage"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

var ErrWebhookSignature = errors.New("webhook signature verification failed")

const (
	purposeProTrial = "pro_trial_1usd"

	proTrialDays    = 14
	proTrialCredits = 210

	micropackCredits    = 50
	micropackUnitAmount = 500
	proTrialUnitAmount  = 100
)

// BillingService creates Stripe checkout sessions and applies webhook events.
// Every credit grant goes through the ledger keyed by the checkout session id,
// so webhook redelivery never double-credits.
type BillingService struct {
	store storage.Store
	cfg   *config.Config
}

func NewBillingService(store storage.Store, cfg *config.Config) *BillingService {
	stripe.Key = cfg.StripeSecretKey
	return &BillingService{store: store, cfg: cfg}
}

// CreateMicropackSession starts a $5 checkout for a 50-credit pack.
func (s *BillingService) CreateMicropackSession(userID uuid.UUID) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(micropackUnitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("50 Credit Micro Pack"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.PublicURL + "/billing/success"),
		CancelURL:  stripe.String(s.cfg.PublicURL + "/billing/cancel"),
	}
	params.AddMetadata("userId", userID.String())
	params.AddMetadata("credits", strconv.Itoa(micropackCredits))

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreateProTrialSession starts the $1 pro-trial checkout. The grant itself is
// applied by the webhook once payment completes.
func (s *BillingService) CreateProTrialSession(userID uuid.UUID) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(proTrialUnitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Pro Trial (14 days)"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.PublicURL + "/billing/success"),
		CancelURL:  stripe.String(s.cfg.PublicURL + "/billing/cancel"),
	}
	params.AddMetadata("userId", userID.String())
	params.AddMetadata("purpose", purposeProTrial)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create pro trial session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies and applies one provider event. A returned non-nil
// error (other than ErrWebhookSignature) means the caller should answer 500 so
// Stripe redelivers; the ledger idempotency key makes redelivery safe.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		s.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return s.applyCheckoutCompleted(ctx, &cs)
	default:
		slog.Debug("unhandled stripe event", "type", event.Type)
		return nil
	}
}

func (s *BillingService) applyCheckoutCompleted(ctx context.Context, cs *stripe.CheckoutSession) error {
	if cs.Metadata["purpose"] == purposeProTrial {
		return s.applyProTrial(ctx, cs)
	}
	return s.applyCreditPurchase(ctx, cs)
}

func (s *BillingService) applyProTrial(ctx context.Context, cs *stripe.CheckoutSession) error {
	user, err := s.resolveUser(ctx, cs)
	if err != nil {
		return err
	}
	if user == nil {
		slog.Warn("pro trial checkout for unknown user", "session_id", cs.ID)
		return nil
	}

	// The ledger insert is the idempotency gate for the credits. On a
	// duplicate the grant is already in, but the window update below may have
	// failed on the previous delivery, so fall through and re-check rather
	// than acking blindly.
	err = s.store.AddCreditTransaction(ctx, &models.CreditTransaction{
		UserID:          user.ID,
		Amount:          proTrialCredits,
		Type:            models.TxnTrialGrant,
		Description:     "Pro Trial credits (14d, $1)",
		StripeSessionID: &cs.ID,
	})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrDuplicateTransaction):
		if user.TrialVariant != nil && *user.TrialVariant == plans.VariantProTrial14 &&
			user.TrialEndsAt != nil {
			slog.Info("pro trial already applied", "session_id", cs.ID, "user_id", user.ID)
			return nil
		}
		slog.Info("pro trial credits granted but window missing, reapplying",
			"session_id", cs.ID, "user_id", user.ID)
	default:
		return fmt.Errorf("failed to grant pro trial credits: %w", err)
	}

	now := time.Now()
	end := now.Add(proTrialDays * 24 * time.Hour)
	err = s.store.UpdateUser(ctx, user.ID, map[string]any{
		"subscription_status":   "trial",
		"trial_variant":         plans.VariantProTrial14,
		"trial_started_at":      now,
		"trial_ends_at":         end,
		"needs_trial_selection": false,
		"card_on_file":          true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply pro trial window: %w", err)
	}

	slog.Info("pro trial applied", "user_id", user.ID, "session_id", cs.ID)
	return nil
}

func (s *BillingService) applyCreditPurchase(ctx context.Context, cs *stripe.CheckoutSession) error {
	rawUserID := cs.Metadata["userId"]
	credits, _ := strconv.Atoi(cs.Metadata["credits"])
	if rawUserID == "" || credits <= 0 {
		slog.Warn("checkout completed without usable metadata", "session_id", cs.ID)
		return nil
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		slog.Warn("checkout metadata userId not parseable", "session_id", cs.ID)
		return nil
	}

	err = s.store.AddCreditTransaction(ctx, &models.CreditTransaction{
		UserID:          userID,
		Amount:          credits,
		Type:            models.TxnPurchase,
		Description:     "Credit pack purchase",
		StripeSessionID: &cs.ID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateTransaction) {
			slog.Info("credit purchase already applied", "session_id", cs.ID)
			return nil
		}
		// A vanished user is not retryable; acking stops the redelivery loop.
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("credit purchase for unknown user", "session_id", cs.ID, "user_id", userID)
			return nil
		}
		return fmt.Errorf("failed to apply credit purchase: %w", err)
	}

	slog.Info("credits granted", "user_id", userID, "credits", credits, "session_id", cs.ID)
	return nil
}

// resolveUser finds the purchase target by metadata userId, falling back to
// the checkout email.
func (s *BillingService) resolveUser(ctx context.Context, cs *stripe.CheckoutSession) (*models.User, error) {
	if raw := cs.Metadata["userId"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			user, err := s.store.GetUser(ctx, id)
			if err == nil {
				return user, nil
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
		}
	}
	if cs.CustomerEmail != "" {
		user, err := s.store.GetUserByEmail(ctx, cs.CustomerEmail)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
