package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/service"
)

// OAuthHandler owns the connect flows for platforms that onboard via an
// OAuth redirect instead of hand-entered credentials.
type OAuthHandler struct {
	cfg    cfg.Config
	reddit service.RedditService
	tiktok service.TiktokService
}

func NewOAuthHandler(cfg cfg.Config, reddit service.RedditService, tiktok service.TiktokService) *OAuthHandler {
	return &OAuthHandler{cfg: cfg, reddit: reddit, tiktok: tiktok}
}

func (h *OAuthHandler) RedditAuth(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	authURL, err := h.reddit.AuthURL(userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start Reddit authorization",
		})
	}

	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

// RedditAuthURL hands the authorization URL back as JSON for clients
// that open the consent screen themselves.
func (h *OAuthHandler) RedditAuthURL(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	authURL, err := h.reddit.AuthURL(userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start Reddit authorization",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": authURL})
}

func (h *OAuthHandler) RedditCallback(c *fiber.Ctx) error {
	code := c.Query("code", c.FormValue("code"))
	state := c.Query("state", c.FormValue("state"))

	if err := h.reddit.Callback(c.Context(), code, state); err != nil {
		slog.Info(err.Error())
		return c.Redirect(fmt.Sprintf("%s/accounts?error=reddit", h.cfg.FrontendURL))
	}

	return c.Redirect(fmt.Sprintf("%s/accounts?connected=reddit", h.cfg.FrontendURL))
}

func (h *OAuthHandler) RedditSubreddits(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := accountID(c)

	subreddits, err := h.reddit.Subreddits(c.Context(), userID, accountID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(subreddits)
}

func (h *OAuthHandler) TiktokAuth(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	authURL, err := h.tiktok.AuthURL(userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start TikTok authorization",
		})
	}

	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

func (h *OAuthHandler) TiktokAuthURL(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	authURL, err := h.tiktok.AuthURL(userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start TikTok authorization",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": authURL})
}

func (h *OAuthHandler) TiktokCallback(c *fiber.Ctx) error {
	code := c.Query("code", c.FormValue("code"))
	state := c.Query("state", c.FormValue("state"))

	if err := h.tiktok.Callback(c.Context(), code, state); err != nil {
		slog.Info(err.Error())
		return c.Redirect(fmt.Sprintf("%s/accounts?error=tiktok", h.cfg.FrontendURL))
	}

	return c.Redirect(fmt.Sprintf("%s/accounts?connected=tiktok", h.cfg.FrontendURL))
}
