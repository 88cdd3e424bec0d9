package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/farmsight/backend/internal/service"
)

var validate = validator.New()

// HandlerDeps bundles the services the HTTP layer depends on
type HandlerDeps struct {
	AuthSvc      *service.AuthService
	FarmSvc      *service.FarmService
	ExpenseSvc   *service.ExpenseService
	DashboardSvc *service.DashboardService
	GeocodeSvc   *service.GeocodeService
	WeatherSvc   *service.WeatherService
	ReportSvc    *service.ReportService
	Repo         service.DataRepository
	TokenTTL     time.Duration
}

// Handler contains all HTTP handlers
type Handler struct {
	HandlerDeps
}

// NewHandler creates a new handler
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{HandlerDeps: deps}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if err := h.Repo.Health(c.Context()); err != nil {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"service": "farmsight-backend",
		"version": "1.0.0",
	})
}
