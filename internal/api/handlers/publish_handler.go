package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/service"
	"github.com/reachway/reachway/internal/transfer"
)

type PublishHandler struct {
	s     service.PublishService
	media service.MediaService
}

func NewPublishHandler(s service.PublishService, media service.MediaService) *PublishHandler {
	return &PublishHandler{s: s, media: media}
}

// PublishPost fans one post out to every selected account. The response
// is a 200 with a per-account breakdown whenever the request itself was
// valid, platform failures do not change the status code.
func (h *PublishHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	// Older clients send the target list as selectedAccounts; both carry
	// the same {accountId, platform} objects.
	targetsRaw := c.FormValue("targets")
	if targetsRaw == "" {
		targetsRaw = c.FormValue("selectedAccounts")
	}
	var targets []transfer.PublishTarget
	if targetsRaw != "" {
		if err := json.Unmarshal([]byte(targetsRaw), &targets); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid targets format",
			})
		}
	}

	media, err := h.processMedia(c, targets)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	scheduledTime := c.FormValue("scheduled_time")
	if scheduledTime == "" {
		scheduledTime = c.FormValue("scheduledDateTime")
	}

	summary, err := h.s.Publish(c.Context(), userID, &transfer.PublishCreation{
		Description:   c.FormValue("description"),
		ScheduledTime: scheduledTime,
		Targets:       targets,
	}, media)
	if err != nil {
		slog.Info(err.Error())
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": len(summary.Failed) == 0,
		"message": fmt.Sprintf("Published to %d of %d accounts", len(summary.Success), summary.TotalAccounts),
		"results": summary,
	})
}

// processMedia buffers the uploaded file and mirrors it before any
// platform call runs. Video uploads are only accepted when a video
// platform is among the targets.
func (h *PublishHandler) processMedia(c *fiber.Ctx, targets []transfer.PublishTarget) (*platform.Media, error) {
	if f, err := c.FormFile("image"); err == nil && f != nil {
		return h.media.ProcessImage(c.Context(), f)
	}
	if f, err := c.FormFile("video"); err == nil && f != nil {
		for _, t := range targets {
			if t.Platform == models.PlatformTiktok {
				return h.media.ProcessVideo(c.Context(), f)
			}
		}
		return nil, fiber.NewError(fiber.StatusBadRequest, "Video uploads require a TikTok target")
	}
	return nil, nil
}

func (h *PublishHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), userID, int64(postID))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	if c.Query("status") == "scheduled" {
		posts, err := h.s.ListScheduled(c.Context(), userID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(posts)
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	posts, err := h.s.List(c.Context(), userID, limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PublishHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
