package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/dto"
	"github.com/myaimediamgr/backend/internal/storage"
)

type UserHandler struct {
	store storage.Store
}

func NewUserHandler(store storage.Store) *UserHandler {
	return &UserHandler{store: store}
}

// Current returns the caller's durable record. Served on both /api/user and
// /api/profile; the profile path stays reachable through trial gating.
func (h *UserHandler) Current(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	user, err := h.store.GetUser(c.UserContext(), ident.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeAuthRequired})
		}
		slog.Error("user lookup failed", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.JSON(user)
}
