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

const linkedinBaseURL = "https://api.linkedin.com"

// LinkedIn posts through the UGC shares API. Image posts go through the
// three-step assets flow first: register an upload, PUT the raw bytes,
// then reference the asset URN in the share. An upload failure downgrades
// the post to text-only instead of failing it.
type LinkedIn struct {
	BaseURL string
	http    *http.Client
}

func NewLinkedIn(client *http.Client) *LinkedIn {
	return &LinkedIn{
		BaseURL: linkedinBaseURL,
		http:    defaultHTTPClient(client),
	}
}

func (li *LinkedIn) Publish(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) *PublishResult {
	if acct.AccessToken == "" {
		return failure("", "No access token available")
	}
	if req.IsScheduled() {
		return failure("", "LinkedIn does not support scheduled publishing")
	}

	author := fmt.Sprintf("urn:li:person:%s", acct.AccountID)
	if acct.LinkedinCompanyID != "" {
		author = fmt.Sprintf("urn:li:organization:%s", acct.LinkedinCompanyID)
	}

	var assetURN string
	if req.Media != nil && req.Media.HasBytes() {
		urn, err := li.uploadImage(ctx, acct, author, req.Media.Bytes)
		if err != nil {
			// Post without the image rather than failing the whole share.
			slog.Info("linkedin image upload failed, posting text only", slog.String("error", err.Error()))
		} else {
			assetURN = urn
		}
	}

	postID, err := li.createShare(ctx, acct, author, req.Description, assetURN)
	if err != nil {
		return failure("", err.Error())
	}

	return &PublishResult{Success: true, PostID: postID}
}

func (li *LinkedIn) uploadImage(ctx context.Context, acct *models.SocialAccount, author string, image []byte) (string, error) {
	registerPayload := map[string]any{
		"registerUploadRequest": map[string]any{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   author,
			"serviceRelationships": []map[string]any{
				{
					"relationshipType": "OWNER",
					"identifier":       "urn:li:userGeneratedContent",
				},
			},
		},
	}

	var registered struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism struct {
				MediaUploadHTTPRequest struct {
					UploadURL string `json:"uploadUrl"`
				} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	endpoint := li.BaseURL + "/v2/assets?action=registerUpload"
	if err := li.postJSON(ctx, acct, endpoint, registerPayload, &registered); err != nil {
		return "", fmt.Errorf("failed to register upload: %w", err)
	}

	uploadURL := registered.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	if uploadURL == "" || registered.Value.Asset == "" {
		return "", fmt.Errorf("no upload url returned from LinkedIn")
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	putReq.Header.Set("Authorization", "Bearer "+acct.AccessToken)

	resp, err := li.http.Do(putReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image upload failed with status %d", resp.StatusCode)
	}

	return registered.Value.Asset, nil
}

func (li *LinkedIn) createShare(ctx context.Context, acct *models.SocialAccount, author, text, assetURN string) (string, error) {
	shareContent := map[string]any{
		"shareCommentary": map[string]any{
			"text": text,
		},
		"shareMediaCategory": "NONE",
	}
	if assetURN != "" {
		shareContent["shareMediaCategory"] = "IMAGE"
		shareContent["media"] = []map[string]any{
			{
				"status": "READY",
				"media":  assetURN,
			},
		}
	}

	payload := map[string]any{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := li.postJSON(ctx, acct, li.BaseURL+"/v2/ugcPosts", payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("no post id returned from LinkedIn")
	}
	return created.ID, nil
}

func (li *LinkedIn) postJSON(ctx context.Context, acct *models.SocialAccount, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+acct.AccessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := li.http.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s", extractLinkedInError(respBody, resp.StatusCode))
	}

	// Some endpoints return the resource id in a header instead of the body.
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}
	if created, ok := out.(*struct {
		ID string `json:"id"`
	}); ok && created.ID == "" {
		created.ID = resp.Header.Get("X-Restli-Id")
	}
	return nil
}

func (li *LinkedIn) TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest {
	if acct.AccessToken == "" {
		return &transfer.ConnectionTest{Success: false, Message: "No access token available"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, li.BaseURL+"/v2/userinfo", nil)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	httpReq.Header.Set("Authorization", "Bearer "+acct.AccessToken)

	resp, err := li.http.Do(httpReq)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: extractLinkedInError(respBody, resp.StatusCode)}
	}

	var profile struct {
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return &transfer.ConnectionTest{Success: false, Message: "Connection failed", Error: err.Error()}
	}

	return &transfer.ConnectionTest{
		Success: true,
		Message: "Connection successful",
		Data: map[string]any{
			"id":   profile.Sub,
			"name": profile.Name,
		},
	}
}

func extractLinkedInError(body []byte, statusCode int) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return fmt.Sprintf("LinkedIn API error (status %d)", statusCode)
}
