package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/service"
)

type AnalyticsHandler struct {
	s service.AnalyticsService
	d service.DashboardService
}

func NewAnalyticsHandler(s service.AnalyticsService, d service.DashboardService) *AnalyticsHandler {
	return &AnalyticsHandler{s: s, d: d}
}

func (h *AnalyticsHandler) GetPostAnalytics(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := postID(c)

	post, err := h.s.PostAnalytics(c.Context(), userID, postID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"analytics":         post.Analytics,
		"platformAnalytics": post.PlatformAnalytics,
		"performance":       post.Performance,
	})
}

func (h *AnalyticsHandler) UpdatePostAnalytics(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := postID(c)

	var a models.Analytics
	if err := c.BodyParser(&a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.UpdatePostAnalytics(c.Context(), userID, postID, &a)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "Analytics updated successfully",
		"analytics":   post.Analytics,
		"performance": post.Performance,
	})
}

func (h *AnalyticsHandler) SyncPostAnalytics(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := postID(c)

	post, err := h.s.SyncPostAnalytics(c.Context(), userID, postID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Analytics synced successfully",
		"analytics": post.Analytics,
	})
}

func (h *AnalyticsHandler) SyncAllAnalytics(c *fiber.Ctx) error {
	userID := GetUserID(c)

	report, err := h.s.SyncAllPostsAnalytics(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *AnalyticsHandler) SyncAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	report, err := h.s.SyncAccounts(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *AnalyticsHandler) GetDashboard(c *fiber.Ctx) error {
	userID := GetUserID(c)

	dashboard, err := h.d.Dashboard(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dashboard)
}
