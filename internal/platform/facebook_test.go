package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachway/reachway/internal/models"
)

func facebookAccount() *models.SocialAccount {
	return &models.SocialAccount{
		ID:              1,
		Platform:        models.PlatformFacebook,
		AccountID:       "111",
		AccountName:     "Test Page",
		PageID:          "222",
		PageAccessToken: "page-token",
	}
}

func TestFacebookPublishWithoutToken(t *testing.T) {
	fb := NewFacebook(nil)
	acct := facebookAccount()
	acct.PageAccessToken = ""
	acct.AccessToken = ""

	result := fb.Publish(context.Background(), acct, &PublishRequest{Description: "hello"})

	require.False(t, result.Success)
	assert.Equal(t, "No access token available", result.Err)
}

func TestFacebookScheduleTooSoon(t *testing.T) {
	// No server: the window check must reject before any API call.
	fb := NewFacebook(nil)
	fb.BaseURL = "http://127.0.0.1:0"

	result := fb.Publish(context.Background(), facebookAccount(), &PublishRequest{
		Description:   "hello",
		ScheduledTime: time.Now().Add(5 * time.Minute),
	})

	require.False(t, result.Success)
	assert.Equal(t, CodeScheduleFailed, result.ErrCode)
	assert.Contains(t, result.Err, "at least 10 minutes")
}

func TestFacebookScheduleTooFar(t *testing.T) {
	fb := NewFacebook(nil)
	fb.BaseURL = "http://127.0.0.1:0"

	result := fb.Publish(context.Background(), facebookAccount(), &PublishRequest{
		Description:   "hello",
		ScheduledTime: time.Now().Add(181 * 24 * time.Hour),
	})

	require.False(t, result.Success)
	assert.Equal(t, CodeScheduleFailed, result.ErrCode)
}

func TestFacebookPublishTextPost(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "hello world", r.FormValue("message"))
		assert.Equal(t, "page-token", r.FormValue("access_token"))
		json.NewEncoder(w).Encode(map[string]string{"id": "222_333"})
	}))
	defer server.Close()

	fb := NewFacebook(server.Client())
	fb.BaseURL = server.URL

	result := fb.Publish(context.Background(), facebookAccount(), &PublishRequest{Description: "hello world"})

	require.True(t, result.Success, result.Err)
	assert.Equal(t, "222_333", result.PostID)
	assert.Equal(t, "/222/feed", gotPath)
}

func TestFacebookPublishGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid OAuth access token", "code": 190},
		})
	}))
	defer server.Close()

	fb := NewFacebook(server.Client())
	fb.BaseURL = server.URL

	result := fb.Publish(context.Background(), facebookAccount(), &PublishRequest{Description: "hello"})

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "Invalid OAuth access token")
}

func TestFacebookTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "222", "name": "Test Page", "fan_count": 1234,
		})
	}))
	defer server.Close()

	fb := NewFacebook(server.Client())
	fb.BaseURL = server.URL

	result := fb.TestConnection(context.Background(), facebookAccount())

	require.True(t, result.Success)
	assert.Equal(t, "Test Page", result.Data["pageName"])
}

func TestValidateFacebookScheduleTime(t *testing.T) {
	now := time.Now()

	assert.Error(t, validateFacebookScheduleTime(now.Add(9*time.Minute), now))
	assert.NoError(t, validateFacebookScheduleTime(now.Add(11*time.Minute), now))
	assert.NoError(t, validateFacebookScheduleTime(now.Add(179*24*time.Hour), now))
	assert.Error(t, validateFacebookScheduleTime(now.Add(181*24*time.Hour), now))
}
