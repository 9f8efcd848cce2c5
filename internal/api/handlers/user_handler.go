package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/reachway/reachway/internal/service"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{s: s}
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	id, err := h.s.Create(c.Context(), body.Email, body.Name)
	if err != nil {
		slog.Info(err.Error())
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID := GetUserID(c)

	user, err := h.s.Info(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}
