package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmsight/backend/internal/domain"
)

// LoginPage is the target of the session redirect. The frontend renders the
// actual form; this payload only identifies the page.
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":    "login",
		"message": "Sign in to continue",
	})
}

// ExpensesPage returns everything the expense page renders: the signed-in
// user, their farms, recent expenses, and the category summary. Reachable
// only through the session gate.
func (h *Handler) ExpensesPage(c *fiber.Ctx) error {
	ctx := c.Context()
	user := currentUser(c)

	farms, err := h.FarmSvc.List(ctx, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load farms")
	}

	expenses, err := h.ExpenseSvc.List(ctx, user.ID, domain.ExpenseFilter{Limit: 20})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load expenses")
	}

	summary, err := h.ExpenseSvc.Summarize(ctx, user.ID, domain.ExpenseFilter{})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load expense summary")
	}

	return c.JSON(fiber.Map{
		"page":     "expenses",
		"user":     user,
		"farms":    farms,
		"expenses": expenses,
		"summary":  summary,
	})
}
