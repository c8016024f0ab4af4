package routes

import (
	"gotalk/server/internal/handlers"
	"gotalk/server/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Gotalk API is running",
		})
	})

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", middleware.StrictRateLimiter(), handlers.Register)
	auth.Post("/login", middleware.StrictRateLimiter(), handlers.Login)
	auth.Post("/refresh", middleware.StrictRateLimiter(), handlers.RefreshToken)
	auth.Post("/logout", middleware.AuthMiddleware, handlers.Logout)
	auth.Get("/me", middleware.AuthMiddleware, handlers.GetMe)

	// Profile routes (browse is public, editing requires auth)
	profiles := api.Group("/profiles")
	profiles.Get("/", middleware.RelaxedRateLimiter(), handlers.ListProfiles)
	profiles.Put("/me", middleware.AuthMiddleware, handlers.UpdateProfile)
	profiles.Put("/me/languages/:languageId", middleware.AuthMiddleware, handlers.SetLanguageLevel)
	profiles.Delete("/me/languages/:languageId", middleware.AuthMiddleware, handlers.RemoveLanguageLevel)
	profiles.Get("/:profileId", middleware.RelaxedRateLimiter(), handlers.GetProfile)

	// Partner routes (protected)
	partners := api.Group("/partners", middleware.AuthMiddleware)
	partners.Get("/", handlers.GetPartners)
	partners.Get("/requests", handlers.GetPartnerRequests)
	partners.Post("/:profileId/request", handlers.RequestPartner)
	partners.Post("/:profileId/accept", handlers.AcceptPartner)
	partners.Post("/:profileId/reject", handlers.RejectPartner)
	partners.Get("/:profileId/can-chat", handlers.CanChatPartner)

	// Lookup tables (read public)
	api.Get("/languages", handlers.ListLanguages)
	api.Get("/tags", handlers.ListTags)

	// Country REST resource (read public, write authenticated)
	countries := api.Group("/countries")
	countries.Get("/", handlers.ListCountries)
	countries.Get("/:countryId", handlers.GetCountry)
	countries.Post("/", middleware.AuthMiddleware, handlers.CreateCountry)
	countries.Put("/:countryId", middleware.AuthMiddleware, handlers.UpdateCountry)
	countries.Delete("/:countryId", middleware.AuthMiddleware, handlers.DeleteCountry)

	// Online-now (public; the list itself comes from the presence middleware)
	api.Get("/online", handlers.GetOnlineUsers)

	// Avatar upload (protected)
	api.Post("/upload/avatar", middleware.AuthMiddleware, middleware.UploadRateLimiter(), handlers.UploadAvatar)

	// Serve uploaded avatars (public)
	app.Get("/uploads/avatars/:filename", handlers.GetAvatar)
}
