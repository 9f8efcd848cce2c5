package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/reachway/reachway/internal/service"
)

// GetUserID pulls the acting user from the request. Clients pass it
// explicitly, either as a query parameter or a form field.
func GetUserID(c *fiber.Ctx) int64 {
	if id := c.QueryInt("user_id", 0); id != 0 {
		return int64(id)
	}
	id, err := c.ParamsInt("user_id", 0)
	if err == nil && id != 0 {
		return int64(id)
	}
	return parseFormUserID(c)
}

func parseFormUserID(c *fiber.Ctx) int64 {
	id, _ := strconv.ParseInt(c.FormValue("user_id"), 10, 64)
	if id == 0 {
		id, _ = strconv.ParseInt(c.FormValue("userId"), 10, 64)
	}
	return id
}

// accountID resolves the target account from the query string or the
// route parameter, whichever the client used.
func accountID(c *fiber.Ctx) int64 {
	if id := c.QueryInt("id", 0); id != 0 {
		return int64(id)
	}
	id, _ := c.ParamsInt("account_id", 0)
	return int64(id)
}

func postID(c *fiber.Ctx) int64 {
	if id := c.QueryInt("id", 0); id != 0 {
		return int64(id)
	}
	id, _ := c.ParamsInt("post_id", 0)
	return int64(id)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrDuplicate):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
