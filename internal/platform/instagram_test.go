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

func instagramAccount() *models.SocialAccount {
	return &models.SocialAccount{
		ID:                  2,
		Platform:            models.PlatformInstagram,
		AccountID:           "17841400000000000",
		AccountName:         "testgram",
		AccessToken:         "ig-token",
		InstagramBusinessID: "17841400000000000",
	}
}

func TestInstagramRequiresImage(t *testing.T) {
	ig := NewInstagram(nil)

	result := ig.Publish(context.Background(), instagramAccount(), &PublishRequest{Description: "caption"})

	require.False(t, result.Success)
	assert.Equal(t, "Instagram requires an image", result.Err)
}

func TestInstagramMissingCredentials(t *testing.T) {
	ig := NewInstagram(nil)
	acct := instagramAccount()
	acct.InstagramBusinessID = ""

	result := ig.Publish(context.Background(), acct, &PublishRequest{
		Description: "caption",
		Media:       &Media{PublicURL: "https://cdn.example.com/pic.jpg"},
	})

	require.False(t, result.Success)
	assert.Equal(t, "Missing Instagram credentials", result.Err)
}

func TestInstagramImmediatePublish(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch {
		case len(paths) == 1:
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		default:
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "container-1", payload["creation_id"])
			json.NewEncoder(w).Encode(map[string]string{"id": "ig-post-1"})
		}
	}))
	defer server.Close()

	ig := NewInstagram(server.Client())
	ig.BaseURL = server.URL

	result := ig.Publish(context.Background(), instagramAccount(), &PublishRequest{
		Description: "caption",
		Media:       &Media{PublicURL: "https://cdn.example.com/pic.jpg"},
	})

	require.True(t, result.Success, result.Err)
	assert.Equal(t, "ig-post-1", result.PostID)
	assert.Equal(t, "container-1", result.MediaID)
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "/media")
	assert.Contains(t, paths[1], "/media_publish")
}

func TestInstagramScheduledStopsAtContainer(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]string{"id": "container-2"})
	}))
	defer server.Close()

	ig := NewInstagram(server.Client())
	ig.BaseURL = server.URL

	result := ig.Publish(context.Background(), instagramAccount(), &PublishRequest{
		Description:   "caption",
		Media:         &Media{PublicURL: "https://cdn.example.com/pic.jpg"},
		ScheduledTime: time.Now().Add(time.Hour),
	})

	require.True(t, result.Success, result.Err)
	assert.True(t, result.Scheduled)
	assert.Empty(t, result.PostID)
	assert.Equal(t, "container-2", result.MediaID)
	assert.Equal(t, 1, calls)
}

func TestInstagramScheduleWindow(t *testing.T) {
	ig := NewInstagram(nil)
	ig.BaseURL = "http://127.0.0.1:0"

	tooSoon := ig.Publish(context.Background(), instagramAccount(), &PublishRequest{
		Description:   "caption",
		Media:         &Media{PublicURL: "https://cdn.example.com/pic.jpg"},
		ScheduledTime: time.Now().Add(5 * time.Minute),
	})
	require.False(t, tooSoon.Success)
	assert.Equal(t, CodeScheduleFailed, tooSoon.ErrCode)

	tooFar := ig.Publish(context.Background(), instagramAccount(), &PublishRequest{
		Description:   "caption",
		Media:         &Media{PublicURL: "https://cdn.example.com/pic.jpg"},
		ScheduledTime: time.Now().Add(76 * 24 * time.Hour),
	})
	require.False(t, tooFar.Success)
	assert.Equal(t, CodeScheduleFailed, tooFar.ErrCode)
}

func TestInstagramFinalize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/media_publish")
		json.NewEncoder(w).Encode(map[string]string{"id": "ig-post-9"})
	}))
	defer server.Close()

	ig := NewInstagram(server.Client())
	ig.BaseURL = server.URL

	postID, err := ig.Finalize(context.Background(), instagramAccount(), "container-9")

	require.NoError(t, err)
	assert.Equal(t, "ig-post-9", postID)
}
