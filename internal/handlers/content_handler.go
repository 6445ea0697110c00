package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/dto"
	"github.com/myaimediamgr/backend/internal/models"
	"github.com/myaimediamgr/backend/internal/storage"
)

// ContentHandler serves the scheduling resources sitting behind the credit,
// entitlement, and trial gates.
type ContentHandler struct {
	store storage.Store
}

func NewContentHandler(store storage.Store) *ContentHandler {
	return &ContentHandler{store: store}
}

func (h *ContentHandler) ListPosts(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	posts, err := h.store.ListPosts(c.UserContext(), ident.UserID)
	if err != nil {
		slog.Error("failed to list posts", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// CreatePost runs after the credit gate, so the debit has already happened.
func (h *ContentHandler) CreatePost(c *fiber.Ctx) error {
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: dto.CodeBadRequest, Message: "Post content is required",
		})
	}

	ident := auth.IdentityFrom(c)
	post := &models.Post{
		ID:           uuid.New(),
		UserID:       ident.UserID,
		Content:      req.Content,
		Platform:     req.Platform,
		Status:       "draft",
		ScheduledFor: req.ScheduledFor,
	}
	if post.ScheduledFor != nil {
		post.Status = "scheduled"
	}
	if err := h.store.CreatePost(c.UserContext(), post); err != nil {
		slog.Error("failed to create post", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *ContentHandler) ListCampaigns(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	campaigns, err := h.store.ListCampaigns(c.UserContext(), ident.UserID)
	if err != nil {
		slog.Error("failed to list campaigns", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.JSON(fiber.Map{"campaigns": campaigns})
}

func (h *ContentHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: dto.CodeBadRequest, Message: "Campaign name is required",
		})
	}

	ident := auth.IdentityFrom(c)
	campaign := &models.Campaign{
		ID:     uuid.New(),
		UserID: ident.UserID,
		Name:   req.Name,
		Status: "active",
	}
	if err := h.store.CreateCampaign(c.UserContext(), campaign); err != nil {
		slog.Error("failed to create campaign", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// DeveloperKeys sits behind the apiAccess entitlement. Keys are ephemeral
// until key persistence lands.
func (h *ContentHandler) DeveloperKeys(c *fiber.Ctx) error {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.JSON(fiber.Map{"key": "mam_sk_" + hex.EncodeToString(buf)})
}
