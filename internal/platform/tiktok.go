package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/transfer"
)

const tiktokBaseURL = "https://open.tiktokapis.com"

// TikTok publishes through the Content Posting API: a video init call
// that returns an upload URL and publish id, followed by a single-chunk
// PUT of the raw video bytes. Only video media is accepted.
type TikTok struct {
	BaseURL string
	http    *http.Client
}

func NewTikTok(client *http.Client) *TikTok {
	return &TikTok{
		BaseURL: tiktokBaseURL,
		http:    defaultHTTPClient(client),
	}
}

func (tk *TikTok) Publish(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) *PublishResult {
	if acct.AccessToken == "" {
		return failure("", "No access token available")
	}
	if req.Media == nil || !req.Media.HasBytes() {
		return failure("", "TikTok requires a video file")
	}
	if req.IsScheduled() {
		return failure("", "TikTok does not support scheduled publishing")
	}

	publishID, uploadURL, err := tk.initUpload(ctx, acct, req)
	if err != nil {
		return failure("", err.Error())
	}

	if err := tk.uploadVideo(ctx, uploadURL, req.Media); err != nil {
		return failure("", err.Error())
	}

	return &PublishResult{Success: true, PostID: publishID}
}

func (tk *TikTok) initUpload(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) (publishID, uploadURL string, err error) {
	size := int64(len(req.Media.Bytes))
	payload := map[string]any{
		"post_info": map[string]any{
			"title":         req.Description,
			"privacy_level": "SELF_ONLY",
		},
		"source_info": map[string]any{
			"source":            "FILE_UPLOAD",
			"video_size":        size,
			"chunk_size":        size,
			"total_chunk_count": 1,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("error marshalling payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, tk.BaseURL+"/v2/post/publish/video/init/", bytes.NewBuffer(body))
	if err != nil {
		return "", "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+acct.AccessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := tk.http.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return "", "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	var initResp struct {
		Data struct {
			PublishID string `json:"publish_id"`
			UploadURL string `json:"upload_url"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &initResp); err != nil {
		return "", "", fmt.Errorf("TikTok API error (status %d)", resp.StatusCode)
	}
	if initResp.Error.Code != "" && initResp.Error.Code != "ok" {
		return "", "", fmt.Errorf("%s", initResp.Error.Message)
	}
	if initResp.Data.PublishID == "" || initResp.Data.UploadURL == "" {
		return "", "", fmt.Errorf("failed to initialize TikTok upload")
	}
	return initResp.Data.PublishID, initResp.Data.UploadURL, nil
}

func (tk *TikTok) uploadVideo(ctx context.Context, uploadURL string, media *Media) error {
	size := int64(len(media.Bytes))
	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(media.Bytes))
	if err != nil {
		return err
	}
	mime := media.MIME
	if mime == "" {
		mime = "video/mp4"
	}
	putReq.Header.Set("Content-Type", mime)
	putReq.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", size-1, size))
	putReq.ContentLength = size

	resp, err := tk.http.Do(putReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("video upload failed with status %d", resp.StatusCode)
	}
	return nil
}

func (tk *TikTok) TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest {
	if acct.AccessToken == "" {
		return &transfer.ConnectionTest{Success: false, Message: "No access token available"}
	}

	endpoint := tk.BaseURL + "/v2/user/info/?fields=open_id,display_name,follower_count"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	httpReq.Header.Set("Authorization", "Bearer "+acct.AccessToken)

	resp, err := tk.http.Do(httpReq)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}

	var info transfer.TiktokUserInfo
	if err := json.Unmarshal(respBody, &info); err != nil || resp.StatusCode != http.StatusOK {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: fmt.Sprintf("TikTok API error (status %d)", resp.StatusCode)}
	}
	if info.Error.Code != "" && info.Error.Code != "ok" {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: info.Error.Message}
	}

	return &transfer.ConnectionTest{
		Success: true,
		Message: "Connection successful",
		Data: map[string]any{
			"displayName": info.Data.User.DisplayName,
			"followers":   info.Data.Stats.FollowerCount,
		},
	}
}
