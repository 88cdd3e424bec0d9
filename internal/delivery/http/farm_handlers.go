package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/internal/service"
	"github.com/farmsight/backend/pkg/utils"
)

type createFarmRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=120"`
	District       string   `json:"district" validate:"required,min=2,max=120"`
	Village        string   `json:"village" validate:"omitempty,max=120"`
	LandSizeAcres  float64  `json:"land_size_acres" validate:"omitempty,gt=0"`
	SoilType       string   `json:"soil_type" validate:"omitempty,oneof=black red alluvial laterite sandy clay loamy"`
	IrrigationType string   `json:"irrigation_type" validate:"omitempty,oneof=drip sprinkler canal borewell rainfed"`
	Crops          []string `json:"crops" validate:"omitempty,dive,min=1,max=60"`
}

// CreateFarm registers a farm for the signed-in user
func (h *Handler) CreateFarm(c *fiber.Ctx) error {
	var req createFarmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	farm, err := h.FarmSvc.Create(c.Context(), currentUser(c).ID, service.FarmInput{
		Name:           req.Name,
		District:       req.District,
		Village:        req.Village,
		LandSizeAcres:  req.LandSizeAcres,
		SoilType:       req.SoilType,
		IrrigationType: req.IrrigationType,
		Crops:          req.Crops,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create farm")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    farm,
	})
}

// ListFarms returns the signed-in user's farms
func (h *Handler) ListFarms(c *fiber.Ctx) error {
	farms, err := h.FarmSvc.List(c.Context(), currentUser(c).ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list farms")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    farms,
		"count":   len(farms),
	})
}

// GetFarm returns one of the signed-in user's farms
func (h *Handler) GetFarm(c *fiber.Ctx) error {
	farm, err := h.loadOwnFarm(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    farm,
	})
}

// GetFarmWeather returns the weather dashboard for one farm: resolved
// location, current conditions, forecast, and advisories. The payload always
// renders; when live data is unavailable it carries demo data and a notice.
func (h *Handler) GetFarmWeather(c *fiber.Ctx) error {
	farm, err := h.loadOwnFarm(c)
	if err != nil {
		return err
	}

	result := h.DashboardSvc.GetFarmWeather(c.Context(), farm)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// GetFarmWeatherHistory returns persisted weather observations for one farm
func (h *Handler) GetFarmWeatherHistory(c *fiber.Ctx) error {
	farm, err := h.loadOwnFarm(c)
	if err != nil {
		return err
	}

	hours := utils.ClampInt(c.QueryInt("hours", 24), 1, 720) // max 30 days

	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	records, err := h.Repo.GetWeatherHistory(c.Context(), farm.ID, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
		"count":   len(records),
	})
}

// loadOwnFarm resolves the :id path parameter to a farm owned by the caller
func (h *Handler) loadOwnFarm(c *fiber.Ctx) (domain.Farm, error) {
	farm, err := h.FarmSvc.Get(c.Context(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domain.Farm{}, fiber.NewError(fiber.StatusNotFound, "Farm not found")
		case errors.Is(err, domain.ErrForbidden):
			return domain.Farm{}, fiber.NewError(fiber.StatusForbidden, "Access denied")
		default:
			return domain.Farm{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to load farm")
		}
	}
	return farm, nil
}
