package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmsight/backend/internal/domain"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new account and opens a session
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	user, token, err := h.AuthSvc.Register(c.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return fiber.NewError(fiber.StatusConflict, "Email already registered")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to register")
	}

	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"user": user, "token": token},
	})
}

// Login verifies credentials and opens a session
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	user, token, err := h.AuthSvc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to log in")
	}

	h.setSessionCookie(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"user": user, "token": token},
	})
}

// Logout clears the session cookie
func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true})
}

// Me returns the authenticated account
func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    currentUser(c),
	})
}

func (h *Handler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.TokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
