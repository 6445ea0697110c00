package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/dto"
	"github.com/myaimediamgr/backend/internal/services"
)

type BillingHandler struct {
	svc *services.BillingService
}

func NewBillingHandler(svc *services.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

func (h *BillingHandler) Micropack(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	url, err := h.svc.CreateMicropackSession(ident.UserID)
	if err != nil {
		slog.Error("micropack session failed", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: dto.CodeInternal, Message: "Failed to create checkout session",
		})
	}
	return c.JSON(dto.CheckoutResponse{URL: url})
}

func (h *BillingHandler) ProTrial(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	url, err := h.svc.CreateProTrialSession(ident.UserID)
	if err != nil {
		slog.Error("pro trial session failed", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: dto.CodeInternal, Message: "Failed to create checkout session",
		})
	}
	return c.JSON(dto.CheckoutResponse{URL: url})
}

// Webhook consumes Stripe events. A 500 here is deliberate on storage errors:
// Stripe redelivers and the ledger idempotency key absorbs the replay.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	err := h.svc.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrWebhookSignature) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: dto.CodeWebhookSignature,
			})
		}
		slog.Error("webhook processing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.JSON(fiber.Map{"received": true})
}
