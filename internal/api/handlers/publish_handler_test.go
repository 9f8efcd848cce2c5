package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/transfer"
)

type publishServiceStub struct {
	gotUserID  int64
	gotRequest *transfer.PublishCreation
	summary    *transfer.PublishSummary
}

func (s *publishServiceStub) Publish(ctx context.Context, userID int64, pc *transfer.PublishCreation, media *platform.Media) (*transfer.PublishSummary, error) {
	s.gotUserID = userID
	s.gotRequest = pc
	return s.summary, nil
}

func (s *publishServiceStub) List(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error) {
	return nil, nil
}

func (s *publishServiceStub) ListScheduled(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (s *publishServiceStub) PostInfo(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return nil, nil
}

func (s *publishServiceStub) Remove(ctx context.Context, userID, postID int64) error {
	return nil
}

type mediaStub struct{}

func (mediaStub) ProcessImage(ctx context.Context, file *multipart.FileHeader) (*platform.Media, error) {
	return nil, nil
}

func (mediaStub) ProcessVideo(ctx context.Context, file *multipart.FileHeader) (*platform.Media, error) {
	return nil, nil
}

func (mediaStub) Remove(ctx context.Context, m *platform.Media) {}

func TestPublishPostAcceptsLegacyFieldNames(t *testing.T) {
	stub := &publishServiceStub{summary: &transfer.PublishSummary{
		Success:       []transfer.PublishOutcome{{Platform: models.PlatformFacebook, Success: true}},
		Failed:        []transfer.PublishOutcome{},
		TotalAccounts: 1,
	}}
	h := NewPublishHandler(stub, mediaStub{})

	app := fiber.New()
	app.Post("/api/multi-platform/post", h.PublishPost)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("userId", "7"))
	require.NoError(t, w.WriteField("description", "hello"))
	require.NoError(t, w.WriteField("selectedAccounts", `[{"accountId":1,"platform":"facebook"}]`))
	require.NoError(t, w.WriteField("scheduledDateTime", "2026-09-01T10:00:00Z"))
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/multi-platform/post", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int64(7), stub.gotUserID)
	require.NotNil(t, stub.gotRequest)
	require.Len(t, stub.gotRequest.Targets, 1)
	assert.Equal(t, int64(1), stub.gotRequest.Targets[0].AccountID)
	assert.Equal(t, models.PlatformFacebook, stub.gotRequest.Targets[0].Platform)
	assert.Equal(t, "2026-09-01T10:00:00Z", stub.gotRequest.ScheduledTime)

	var envelope struct {
		Success bool                    `json:"success"`
		Message string                  `json:"message"`
		Results transfer.PublishSummary `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Message)
	assert.Equal(t, 1, envelope.Results.TotalAccounts)
	assert.Len(t, envelope.Results.Success, 1)
}
