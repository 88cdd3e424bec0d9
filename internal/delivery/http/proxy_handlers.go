package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/internal/service"
	"github.com/farmsight/backend/pkg/utils"
)

// Geocode resolves a free-form location string to coordinates
func (h *Handler) Geocode(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return fiber.NewError(fiber.StatusBadRequest, "location query parameter is required")
	}

	coords, err := h.GeocodeSvc.Resolve(c.Context(), location)
	if err != nil {
		if errors.Is(err, service.ErrNoResults) {
			return fiber.NewError(fiber.StatusNotFound, "No results for location")
		}
		return fiber.NewError(fiber.StatusBadGateway, "Geocoding service unavailable")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    coords,
	})
}

// Forecast returns current conditions plus a daily forecast for coordinates.
// Unlike the farm dashboard, upstream failure surfaces as an error here.
func (h *Handler) Forecast(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return fiber.NewError(fiber.StatusBadRequest, "lat must be a number between -90 and 90")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return fiber.NewError(fiber.StatusBadRequest, "lon must be a number between -180 and 180")
	}
	days := utils.ClampInt(c.QueryInt("days", 7), 1, 7)

	snapshot, err := h.WeatherSvc.Fetch(c.Context(), domain.Coordinates{Latitude: lat, Longitude: lon}, days)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "Weather service unavailable")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snapshot,
	})
}
