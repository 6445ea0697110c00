package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/myaimediamgr/backend/internal/database"
	"github.com/myaimediamgr/backend/internal/dto"
)

func Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "down"
	}
	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
