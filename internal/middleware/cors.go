package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/myaimediamgr/backend/internal/config"
)

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Authorization, Accept, X-Requested-With",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		// Cookies carry the session; credentialed CORS cannot use a wildcard.
		AllowCredentials: cfg.CORSOrigins != "*",
	})
}
