package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachway/reachway/internal/models"
)

func redditAccount() *models.SocialAccount {
	return &models.SocialAccount{
		ID:              3,
		Platform:        models.PlatformReddit,
		AccountID:       "abc123",
		AccountName:     "testuser",
		AccessToken:     "reddit-token",
		RedditUsername:  "testuser",
		RedditSubreddit: "golang",
	}
}

func TestRedditSelfPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ReachWay/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "self", r.FormValue("kind"))
		assert.Equal(t, "golang", r.FormValue("sr"))
		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{
				"errors": [][]any{},
				"data":   map[string]any{"id": "xyz", "name": "t3_xyz"},
			},
		})
	}))
	defer server.Close()

	rd := NewReddit(server.Client(), "")
	rd.BaseURL = server.URL

	result := rd.Publish(context.Background(), redditAccount(), &PublishRequest{Description: "hello reddit"})

	require.True(t, result.Success, result.Err)
	assert.Equal(t, "t3_xyz", result.PostID)
}

func TestRedditImagePost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "image", r.FormValue("kind"))
		assert.Equal(t, "https://cdn.example.com/pic.jpg", r.FormValue("url"))
		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{"data": map[string]any{"name": "t3_img"}},
		})
	}))
	defer server.Close()

	rd := NewReddit(server.Client(), "")
	rd.BaseURL = server.URL

	result := rd.Publish(context.Background(), redditAccount(), &PublishRequest{
		Description: "look at this",
		Media:       &Media{PublicURL: "https://cdn.example.com/pic.jpg"},
	})

	require.True(t, result.Success, result.Err)
	assert.Equal(t, "t3_img", result.PostID)
}

func TestRedditTitleClamp(t *testing.T) {
	long := strings.Repeat("a", 400)
	var gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTitle = r.FormValue("title")
		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{"data": map[string]any{"name": "t3_long"}},
		})
	}))
	defer server.Close()

	rd := NewReddit(server.Client(), "")
	rd.BaseURL = server.URL

	result := rd.Publish(context.Background(), redditAccount(), &PublishRequest{Description: long})

	require.True(t, result.Success)
	assert.Len(t, gotTitle, 300)
}

func TestRedditAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{
				"errors": [][]any{{"SUBREDDIT_NOTALLOWED", "you aren't allowed to post there", "sr"}},
			},
		})
	}))
	defer server.Close()

	rd := NewReddit(server.Client(), "")
	rd.BaseURL = server.URL

	result := rd.Publish(context.Background(), redditAccount(), &PublishRequest{Description: "hello"})

	require.False(t, result.Success)
	assert.Equal(t, "you aren't allowed to post there", result.Err)
}

func TestRedditProfileFallback(t *testing.T) {
	var gotSr string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotSr = r.FormValue("sr")
		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{"data": map[string]any{"name": "t3_pf"}},
		})
	}))
	defer server.Close()

	rd := NewReddit(server.Client(), "")
	rd.BaseURL = server.URL

	acct := redditAccount()
	acct.RedditSubreddit = ""

	result := rd.Publish(context.Background(), acct, &PublishRequest{Description: "hello"})

	require.True(t, result.Success)
	assert.Equal(t, "u_testuser", gotSr)
}

func TestClampRedditTitle(t *testing.T) {
	assert.Equal(t, "short", clampRedditTitle("short"))
	assert.Len(t, []rune(clampRedditTitle(strings.Repeat("é", 400))), 300)
}

func TestRedditErrorMessage(t *testing.T) {
	assert.Empty(t, redditErrorMessage(nil))
	assert.Equal(t, "msg", redditErrorMessage([][]any{{"CODE", "msg"}}))
	assert.Equal(t, "CODE", redditErrorMessage([][]any{{"CODE"}}))
}
