package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/transfer"
)

type analyticsServiceStub struct {
	gotUserID    int64
	gotPostID    int64
	gotAnalytics *models.Analytics
}

func (s *analyticsServiceStub) PostAnalytics(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return &models.Post{ID: postID, UserID: userID}, nil
}

func (s *analyticsServiceStub) UpdatePostAnalytics(ctx context.Context, userID, postID int64, a *models.Analytics) (*models.Post, error) {
	s.gotUserID = userID
	s.gotPostID = postID
	s.gotAnalytics = a
	post := &models.Post{ID: postID, UserID: userID}
	post.Analytics = *a
	return post, nil
}

func (s *analyticsServiceStub) SyncPostAnalytics(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return &models.Post{ID: postID, UserID: userID}, nil
}

func (s *analyticsServiceStub) SyncAllPostsAnalytics(ctx context.Context, userID int64) (*transfer.SyncReport, error) {
	return &transfer.SyncReport{}, nil
}

func (s *analyticsServiceStub) SyncAccounts(ctx context.Context, userID int64) (*transfer.SyncReport, error) {
	return &transfer.SyncReport{}, nil
}

type dashboardServiceStub struct{}

func (dashboardServiceStub) Dashboard(ctx context.Context, userID int64) (*transfer.Dashboard, error) {
	return &transfer.Dashboard{}, nil
}

func TestUpdatePostAnalyticsRoute(t *testing.T) {
	stub := &analyticsServiceStub{}
	h := NewAnalyticsHandler(stub, dashboardServiceStub{})

	app := fiber.New()
	app.Put("/api/analytics/post/:post_id", h.UpdatePostAnalytics)

	payload, err := json.Marshal(fiber.Map{"reach": 200, "likes": 20})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, "/api/analytics/post/42?user_id=7", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int64(7), stub.gotUserID)
	assert.Equal(t, int64(42), stub.gotPostID)
	require.NotNil(t, stub.gotAnalytics)
	assert.Equal(t, int64(200), stub.gotAnalytics.Reach)
	assert.Equal(t, int64(20), stub.gotAnalytics.Likes)
}
