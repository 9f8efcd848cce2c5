package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/transfer"
)

const (
	facebookBaseURL = "https://graph.facebook.com/v19.0"

	// Graph API bounds on scheduled_publish_time.
	facebookMinScheduleLead = 600 * time.Second
	facebookMaxScheduleLead = 180 * 24 * time.Hour

	CodeScheduleFailed = "SCHEDULE_FAILED"
)

// Facebook publishes page posts: an optional unpublished photo upload
// followed by a feed post that references the uploaded media.
type Facebook struct {
	BaseURL string
	http    *http.Client
}

func NewFacebook(client *http.Client) *Facebook {
	return &Facebook{
		BaseURL: facebookBaseURL,
		http:    defaultHTTPClient(client),
	}
}

type graphID struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

type graphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FbtraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func (fb *Facebook) Publish(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) *PublishResult {
	accessToken := acct.PageAccessToken
	if accessToken == "" {
		accessToken = acct.AccessToken
	}
	if accessToken == "" {
		return failure("", "No access token available")
	}

	pageID := acct.PageID
	if pageID == "" {
		pageID = acct.AccountID
	}

	if req.IsScheduled() {
		if err := validateFacebookScheduleTime(req.ScheduledTime, time.Now()); err != nil {
			return failure(CodeScheduleFailed, err.Error())
		}
	}

	var mediaID string
	if req.Media.HasBytes() {
		id, err := fb.uploadPhoto(ctx, pageID, accessToken, req.Media)
		if err != nil {
			return failure("", "Image upload failed: "+err.Error())
		}
		mediaID = id
	}

	form := url.Values{}
	form.Set("message", req.Description)
	if mediaID != "" {
		form.Set("attached_media", fmt.Sprintf(`[{"media_fbid":"%s"}]`, mediaID))
	}
	if req.IsScheduled() {
		form.Set("published", "false")
		form.Set("scheduled_publish_time", strconv.FormatInt(req.ScheduledTime.Unix(), 10))
	} else {
		form.Set("published", "true")
	}

	endpoint := fmt.Sprintf("%s/%s/feed?access_token=%s", fb.BaseURL, pageID, url.QueryEscape(accessToken))
	var created graphID
	if err := fb.postForm(ctx, endpoint, form, &created); err != nil {
		return failure("", err.Error())
	}

	return &PublishResult{
		Success:   true,
		PostID:    created.ID,
		MediaID:   mediaID,
		Scheduled: req.IsScheduled(),
	}
}

func (fb *Facebook) uploadPhoto(ctx context.Context, pageID, accessToken string, media *Media) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("source", "upload")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(media.Bytes); err != nil {
		return "", err
	}
	if err := writer.WriteField("published", "false"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/photos?access_token=%s", fb.BaseURL, pageID, url.QueryEscape(accessToken))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := fb.http.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s", extractGraphError(respBody, resp.StatusCode))
	}

	var uploaded graphID
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return "", err
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("no media id returned from Facebook")
	}
	return uploaded.ID, nil
}

func (fb *Facebook) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := fb.http.Do(httpReq)
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

func (fb *Facebook) TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest {
	accessToken := acct.PageAccessToken
	if accessToken == "" {
		accessToken = acct.AccessToken
	}
	pageID := acct.PageID
	if pageID == "" {
		pageID = acct.AccountID
	}

	endpoint := fmt.Sprintf("%s/%s?fields=id,name,fan_count&access_token=%s", fb.BaseURL, pageID, url.QueryEscape(accessToken))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}

	resp, err := fb.http.Do(httpReq)
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

	var page struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		FanCount int64  `json:"fan_count"`
	}
	if err := json.Unmarshal(respBody, &page); err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}

	return &transfer.ConnectionTest{
		Success: true,
		Message: "Connection successful",
		Data: map[string]any{
			"pageName":  page.Name,
			"followers": page.FanCount,
		},
	}
}

func validateFacebookScheduleTime(scheduled, now time.Time) error {
	if scheduled.Before(now.Add(facebookMinScheduleLead)) {
		return fmt.Errorf("schedule time must be at least 10 minutes in the future")
	}
	if scheduled.After(now.Add(facebookMaxScheduleLead)) {
		return fmt.Errorf("schedule time cannot be more than 180 days in the future")
	}
	return nil
}

// extractGraphError digs the human-readable message out of the Graph API's
// nested error envelope, falling back to the status code.
func extractGraphError(body []byte, statusCode int) string {
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		return ge.Error.Message
	}
	return fmt.Sprintf("unexpected status code %d", statusCode)
}

var facebookInsightMetrics = []string{
	"post_impressions",
	"post_impressions_unique",
	"post_engaged_users",
	"post_clicks",
}

// Insights pulls the post's engagement numbers. Each metric is fetched
// with its own call so one deprecated metric cannot sink the rest.
func (fb *Facebook) Insights(ctx context.Context, acct *models.SocialAccount, postID string) (*transfer.InsightSet, error) {
	accessToken := acct.PageAccessToken
	if accessToken == "" {
		accessToken = acct.AccessToken
	}
	if accessToken == "" {
		return nil, fmt.Errorf("No access token available")
	}

	set := &transfer.InsightSet{Raw: make(map[string]int64)}
	for _, metric := range facebookInsightMetrics {
		value, err := fb.fetchInsightMetric(ctx, accessToken, postID, metric)
		if err != nil {
			slog.Info("facebook insight metric failed",
				slog.String("metric", metric), slog.String("error", err.Error()))
			continue
		}
		set.Raw[metric] = value
	}

	set.Impressions = set.Raw["post_impressions"]
	set.Reach = set.Raw["post_impressions_unique"]
	set.Engagement = set.Raw["post_engaged_users"]
	set.Clicks = set.Raw["post_clicks"]

	if err := fb.fetchEngagementSummary(ctx, accessToken, postID, set); err != nil {
		slog.Info(err.Error())
	}

	return set, nil
}

func (fb *Facebook) fetchInsightMetric(ctx context.Context, accessToken, postID, metric string) (int64, error) {
	endpoint := fmt.Sprintf("%s/%s/insights?metric=%s&access_token=%s",
		fb.BaseURL, postID, metric, url.QueryEscape(accessToken))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := fb.http.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s", extractGraphError(body, resp.StatusCode))
	}

	var insights struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value float64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &insights); err != nil {
		return 0, err
	}
	if len(insights.Data) == 0 || len(insights.Data[0].Values) == 0 {
		return 0, nil
	}
	return int64(insights.Data[0].Values[0].Value), nil
}

func (fb *Facebook) fetchEngagementSummary(ctx context.Context, accessToken, postID string, set *transfer.InsightSet) error {
	endpoint := fmt.Sprintf("%s/%s?fields=likes.summary(true),comments.summary(true),shares&access_token=%s",
		fb.BaseURL, postID, url.QueryEscape(accessToken))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := fb.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", extractGraphError(body, resp.StatusCode))
	}

	var summary struct {
		Likes struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"likes"`
		Comments struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
		Shares struct {
			Count int64 `json:"count"`
		} `json:"shares"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return err
	}

	set.Likes = summary.Likes.Summary.TotalCount
	set.Comments = summary.Comments.Summary.TotalCount
	set.Shares = summary.Shares.Count
	set.Raw["likes"] = set.Likes
	set.Raw["comments"] = set.Comments
	set.Raw["shares"] = set.Shares
	return nil
}
