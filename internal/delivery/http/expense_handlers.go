package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/internal/service"
	"github.com/farmsight/backend/pkg/utils"
)

type createExpenseRequest struct {
	FarmID      string  `json:"farm_id" validate:"required"`
	Category    string  `json:"category" validate:"required,oneof=seeds fertilizer pesticides labor equipment irrigation transport other"`
	Description string  `json:"description" validate:"required,min=2,max=300"`
	Quantity    float64 `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"omitempty,gte=0"`
	Amount      float64 `json:"amount" validate:"omitempty,gte=0"`
	IncurredOn  string  `json:"incurred_on" validate:"required,datetime=2006-01-02"`
	Notes       string  `json:"notes" validate:"omitempty,max=500"`
}

type updateExpenseRequest struct {
	Category    string  `json:"category" validate:"required,oneof=seeds fertilizer pesticides labor equipment irrigation transport other"`
	Description string  `json:"description" validate:"required,min=2,max=300"`
	Quantity    float64 `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"omitempty,gte=0"`
	Amount      float64 `json:"amount" validate:"omitempty,gte=0"`
	IncurredOn  string  `json:"incurred_on" validate:"required,datetime=2006-01-02"`
	Notes       string  `json:"notes" validate:"omitempty,max=500"`
}

// CreateExpense records a new expense against one of the caller's farms
func (h *Handler) CreateExpense(c *fiber.Ctx) error {
	var req createExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	incurredOn, err := time.Parse("2006-01-02", req.IncurredOn)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "incurred_on must be formatted as 2006-01-02")
	}

	expense, err := h.ExpenseSvc.Create(c.Context(), currentUser(c).ID, service.ExpenseInput{
		FarmID:      req.FarmID,
		Category:    req.Category,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Amount:      req.Amount,
		IncurredOn:  incurredOn,
		Notes:       req.Notes,
	})
	if err != nil {
		// not-found here means the farm the expense targets
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Farm not found")
		case errors.Is(err, domain.ErrForbidden):
			return fiber.NewError(fiber.StatusForbidden, "Access denied")
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to create expense")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    expense,
	})
}

// ListExpenses returns the caller's expenses, newest first
func (h *Handler) ListExpenses(c *fiber.Ctx) error {
	filter, err := expenseQueryFilter(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	filter.Limit = utils.ClampInt(c.QueryInt("limit", 50), 1, 200)
	if offset := c.QueryInt("offset", 0); offset > 0 {
		filter.Offset = offset
	}

	expenses, err := h.ExpenseSvc.List(c.Context(), currentUser(c).ID, filter)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list expenses")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    expenses,
		"count":   len(expenses),
	})
}

// UpdateExpense overwrites one of the caller's expense entries
func (h *Handler) UpdateExpense(c *fiber.Ctx) error {
	var req updateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	incurredOn, err := time.Parse("2006-01-02", req.IncurredOn)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "incurred_on must be formatted as 2006-01-02")
	}

	expense, err := h.ExpenseSvc.Update(c.Context(), currentUser(c).ID, c.Params("id"), service.ExpenseInput{
		Category:    req.Category,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Amount:      req.Amount,
		IncurredOn:  incurredOn,
		Notes:       req.Notes,
	})
	if err != nil {
		return expenseError(err, "Failed to update expense")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    expense,
	})
}

// DeleteExpense removes one of the caller's expense entries
func (h *Handler) DeleteExpense(c *fiber.Ctx) error {
	if err := h.ExpenseSvc.Delete(c.Context(), currentUser(c).ID, c.Params("id")); err != nil {
		return expenseError(err, "Failed to delete expense")
	}

	return c.JSON(fiber.Map{"success": true})
}

// ExpenseSummary returns per-category totals for the caller's expenses
func (h *Handler) ExpenseSummary(c *fiber.Ctx) error {
	filter, err := expenseQueryFilter(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.ExpenseSvc.Summarize(c.Context(), currentUser(c).ID, filter)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to summarize expenses")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// ExportExpenses streams the caller's expenses as an XLSX workbook
func (h *Handler) ExportExpenses(c *fiber.Ctx) error {
	filter, err := expenseQueryFilter(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	filter.UserID = currentUser(c).ID

	buf, err := h.ReportSvc.ExpenseWorkbook(c.Context(), filter)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to build expense export")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+service.ExpenseFilename(time.Now())+`"`)
	return c.SendStream(buf, buf.Len())
}

// expenseQueryFilter reads the optional expense filters from the query string
func expenseQueryFilter(c *fiber.Ctx) (domain.ExpenseFilter, error) {
	filter := domain.ExpenseFilter{
		FarmID:   c.Query("farm_id"),
		Category: c.Query("category"),
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("from must be formatted as 2006-01-02")
		}
		filter.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("to must be formatted as 2006-01-02")
		}
		filter.To = t
	}

	return filter, nil
}

// expenseError maps service errors to HTTP errors
func expenseError(err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Expense not found")
	case errors.Is(err, domain.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "Access denied")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}
