package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/transfer"
)

const (
	instagramMinScheduleLead = 10 * time.Minute
	instagramMaxScheduleLead = 75 * 24 * time.Hour
)

// Instagram publishes through the Graph API's two-phase flow: a media
// container referencing a publicly reachable image URL, then a
// media_publish call. Scheduled posts stop after the container step and
// are finalized by the scheduler once their time arrives.
type Instagram struct {
	BaseURL string
	http    *http.Client
}

func NewInstagram(client *http.Client) *Instagram {
	return &Instagram{
		BaseURL: facebookBaseURL,
		http:    defaultHTTPClient(client),
	}
}

func (ig *Instagram) Publish(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) *PublishResult {
	if req.Media == nil || req.Media.PublicURL == "" {
		return failure("", "Instagram requires an image")
	}
	if acct.AccessToken == "" || acct.InstagramBusinessID == "" {
		return failure("", "Missing Instagram credentials")
	}

	if req.IsScheduled() {
		if err := validateInstagramScheduleTime(req.ScheduledTime, time.Now()); err != nil {
			return failure(CodeScheduleFailed, err.Error())
		}
	}

	containerID, err := ig.createContainer(ctx, acct, req)
	if err != nil {
		return failure("", err.Error())
	}

	if req.IsScheduled() {
		// The container stays unpublished until the scheduler finalizes it.
		return &PublishResult{Success: true, MediaID: containerID, Scheduled: true}
	}

	postID, err := ig.Finalize(ctx, acct, containerID)
	if err != nil {
		return failure("", err.Error())
	}

	return &PublishResult{Success: true, PostID: postID, MediaID: containerID}
}

func (ig *Instagram) createContainer(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) (string, error) {
	payload := map[string]any{
		"image_url":    req.Media.PublicURL,
		"caption":      req.Description,
		"access_token": acct.AccessToken,
	}

	endpoint := fmt.Sprintf("%s/%s/media", ig.BaseURL, acct.InstagramBusinessID)
	var created graphID
	if err := ig.postJSON(ctx, endpoint, payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("failed to create Instagram media container")
	}
	return created.ID, nil
}

// Finalize publishes a previously created media container.
func (ig *Instagram) Finalize(ctx context.Context, acct *models.SocialAccount, mediaID string) (string, error) {
	payload := map[string]any{
		"creation_id":  mediaID,
		"access_token": acct.AccessToken,
	}

	endpoint := fmt.Sprintf("%s/%s/media_publish", ig.BaseURL, acct.InstagramBusinessID)
	var published graphID
	if err := ig.postJSON(ctx, endpoint, payload, &published); err != nil {
		return "", err
	}
	if published.ID == "" {
		return "", fmt.Errorf("no post id returned from Instagram")
	}
	return published.ID, nil
}

func (ig *Instagram) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := ig.http.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", extractGraphError(respBody, resp.StatusCode))
	}
	return json.Unmarshal(respBody, out)
}

func (ig *Instagram) TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest {
	if acct.AccessToken == "" || acct.InstagramBusinessID == "" {
		return &transfer.ConnectionTest{Success: false, Message: "Missing Instagram credentials"}
	}

	endpoint := fmt.Sprintf("%s/%s?fields=id,username,media_count&access_token=%s",
		ig.BaseURL, acct.InstagramBusinessID, url.QueryEscape(acct.AccessToken))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}

	resp, err := ig.http.Do(httpReq)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: extractGraphError(respBody, resp.StatusCode)}
	}

	var profile struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		MediaCount int64  `json:"media_count"`
	}
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}

	return &transfer.ConnectionTest{
		Success: true,
		Message: "Connection successful",
		Data: map[string]any{
			"username":   profile.Username,
			"mediaCount": profile.MediaCount,
		},
	}
}

func validateInstagramScheduleTime(scheduled, now time.Time) error {
	if scheduled.Before(now.Add(instagramMinScheduleLead)) {
		return fmt.Errorf("Instagram posts must be scheduled at least 10 minutes in advance")
	}
	if scheduled.After(now.Add(instagramMaxScheduleLead)) {
		return fmt.Errorf("Instagram posts cannot be scheduled more than 75 days in advance")
	}
	return nil
}
