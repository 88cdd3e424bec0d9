package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, h *Handler) {
	// Health check
	app.Get("/health", h.HealthCheck)

	// Pages
	app.Get("/login", h.LoginPage)
	app.Get("/expenses", RequirePageSession(h.AuthSvc), h.ExpensesPage)

	// API v1 routes
	api := app.Group("/api/v1")

	// Public: account entry points and stateless proxies
	api.Post("/auth/register", h.Register)
	api.Post("/auth/login", h.Login)
	api.Post("/auth/logout", h.Logout)
	api.Get("/geo/geocode", h.Geocode)
	api.Get("/weather/forecast", h.Forecast)

	// Everything registered below requires a session
	api.Use(RequireAuth(h.AuthSvc))

	api.Get("/auth/me", h.Me)

	api.Post("/farms", h.CreateFarm)
	api.Get("/farms", h.ListFarms)
	api.Get("/farms/:id", h.GetFarm)
	api.Get("/farms/:id/weather", h.GetFarmWeather)
	api.Get("/farms/:id/weather/history", h.GetFarmWeatherHistory)

	api.Post("/expenses", h.CreateExpense)
	api.Get("/expenses", h.ListExpenses)
	api.Get("/expenses/summary", h.ExpenseSummary)
	api.Get("/expenses/export", h.ExportExpenses)
	api.Put("/expenses/:id", h.UpdateExpense)
	api.Delete("/expenses/:id", h.DeleteExpense)
}
