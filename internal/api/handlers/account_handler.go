package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/reachway/reachway/internal/service"
	"github.com/reachway/reachway/internal/transfer"
)

type AccountHandler struct {
	s service.AccountService
}

func NewAccountHandler(s service.AccountService) *AccountHandler {
	return &AccountHandler{s: s}
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var ac transfer.AccountCreation
	if err := c.BodyParser(&ac); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if ac.UserID == 0 {
		ac.UserID = GetUserID(c)
	}

	id, err := h.s.Create(c.Context(), &ac)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      id,
		"message": "Account connected successfully",
	})
}

func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := accountID(c)

	var au transfer.AccountUpdate
	if err := c.BodyParser(&au); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.s.Update(c.Context(), userID, accountID, &au); err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Account updated successfully",
	})
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := accountID(c)

	if accountID != 0 {
		account, err := h.s.Info(c.Context(), userID, accountID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(account)
	}

	accounts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *AccountHandler) TestConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := accountID(c)

	result, err := h.s.TestConnection(c.Context(), userID, accountID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AccountHandler) SetActive(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := accountID(c)
	active := c.QueryBool("active", true)

	if err := h.s.SetActive(c.Context(), userID, accountID, active); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AccountHandler) RemoveAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := accountID(c)

	if err := h.s.Remove(c.Context(), userID, accountID); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
