package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/transfer"
)

const (
	redditBaseURL        = "https://oauth.reddit.com"
	redditMaxTitleLength = 300
)

// Reddit submits through /api/submit. Text-only posts go out as self
// posts; posts carrying a public image URL go out as image submissions.
// The post title is the description clamped to Reddit's 300-char limit.
type Reddit struct {
	BaseURL   string
	UserAgent string
	http      *http.Client
}

func NewReddit(client *http.Client, userAgent string) *Reddit {
	if userAgent == "" {
		userAgent = "ReachWay/1.0"
	}
	return &Reddit{
		BaseURL:   redditBaseURL,
		UserAgent: userAgent,
		http:      defaultHTTPClient(client),
	}
}

func (rd *Reddit) Publish(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) *PublishResult {
	if acct.AccessToken == "" {
		return failure("", "No access token available")
	}
	if req.IsScheduled() {
		return failure("", "Reddit does not support scheduled publishing")
	}

	subreddit := acct.RedditSubreddit
	if subreddit == "" {
		// No subreddit configured: post to the user's own profile.
		subreddit = "u_" + acct.RedditUsername
	}

	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("sr", subreddit)
	form.Set("title", clampRedditTitle(req.Description))
	form.Set("resubmit", "true")
	form.Set("sendreplies", "false")
	if req.Media != nil && req.Media.PublicURL != "" {
		form.Set("kind", "image")
		form.Set("url", req.Media.PublicURL)
	} else {
		form.Set("kind", "self")
		form.Set("text", req.Description)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rd.BaseURL+"/api/submit", strings.NewReader(form.Encode()))
	if err != nil {
		return failure("", err.Error())
	}
	httpReq.Header.Set("Authorization", "Bearer "+acct.AccessToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", rd.UserAgent)

	resp, err := rd.http.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return failure("", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure("", err.Error())
	}

	var submitted struct {
		JSON struct {
			Errors [][]any `json:"errors"`
			Data   struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.Unmarshal(respBody, &submitted); err != nil || resp.StatusCode != http.StatusOK {
		return failure("", fmt.Sprintf("Reddit API error (status %d)", resp.StatusCode))
	}
	if msg := redditErrorMessage(submitted.JSON.Errors); msg != "" {
		return failure("", msg)
	}

	postID := submitted.JSON.Data.Name
	if postID == "" {
		postID = submitted.JSON.Data.ID
	}
	return &PublishResult{Success: true, PostID: postID}
}

func (rd *Reddit) TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest {
	if acct.AccessToken == "" {
		return &transfer.ConnectionTest{Success: false, Message: "No access token available"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rd.BaseURL+"/api/v1/me", nil)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	httpReq.Header.Set("Authorization", "Bearer "+acct.AccessToken)
	httpReq.Header.Set("User-Agent", rd.UserAgent)

	resp, err := rd.http.Do(httpReq)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: fmt.Sprintf("Reddit API error (status %d)", resp.StatusCode)}
	}

	var identity transfer.RedditIdentity
	if err := json.Unmarshal(respBody, &identity); err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}

	return &transfer.ConnectionTest{
		Success: true,
		Message: "Connection successful",
		Data: map[string]any{
			"username": identity.Name,
			"karma":    identity.TotalKarma,
		},
	}
}

func clampRedditTitle(description string) string {
	runes := []rune(description)
	if len(runes) <= redditMaxTitleLength {
		return description
	}
	return string(runes[:redditMaxTitleLength])
}

// redditErrorMessage pulls the human-readable message out of Reddit's
// [[code, message, field], ...] error encoding.
func redditErrorMessage(errors [][]any) string {
	if len(errors) == 0 {
		return ""
	}
	first := errors[0]
	if len(first) >= 2 {
		if msg, ok := first[1].(string); ok && msg != "" {
			return msg
		}
	}
	if len(first) >= 1 {
		if code, ok := first[0].(string); ok {
			return code
		}
	}
	return "Reddit API error"
}
