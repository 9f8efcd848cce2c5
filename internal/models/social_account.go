package models

import (
	"time"
)

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedin  = "linkedin"
	PlatformTwitter   = "twitter"
	PlatformTiktok    = "tiktok"
	PlatformReddit    = "reddit"
)

// SupportedPlatforms lists every platform the publish pipeline accepts.
var SupportedPlatforms = []string{
	PlatformFacebook,
	PlatformInstagram,
	PlatformLinkedin,
	PlatformTwitter,
	PlatformTiktok,
	PlatformReddit,
}

func IsSupportedPlatform(platform string) bool {
	for _, p := range SupportedPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}

type SocialAccount struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"user_id"`
	Platform    string `db:"platform" json:"platform"`
	AccountType string `db:"account_type" json:"account_type"`
	AccountID   string `db:"account_id" json:"account_id"`
	AccountName string `db:"account_name" json:"account_name"`

	AccessToken  string `db:"access_token" json:"access_token,omitempty"`
	RefreshToken string `db:"refresh_token" json:"refresh_token,omitempty"`

	PageID              string `db:"page_id" json:"page_id,omitempty"`
	PageAccessToken     string `db:"page_access_token" json:"page_access_token,omitempty"`
	InstagramBusinessID string `db:"instagram_business_account_id" json:"instagram_business_account_id,omitempty"`
	LinkedinCompanyID   string `db:"linkedin_company_id" json:"linkedin_company_id,omitempty"`
	TiktokOpenID        string `db:"tiktok_open_id" json:"tiktok_open_id,omitempty"`
	RedditClientID      string `db:"reddit_client_id" json:"reddit_client_id,omitempty"`
	RedditUsername      string `db:"reddit_username" json:"reddit_username,omitempty"`
	RedditSubreddit     string `db:"reddit_subreddit" json:"reddit_subreddit,omitempty"`

	ProfilePicture string    `db:"profile_picture_url" json:"profile_picture"`
	Followers      int64     `db:"followers" json:"followers"`
	Following      int64     `db:"following" json:"following"`
	PostsCount     int64     `db:"posts_count" json:"posts"`
	IsVerified     bool      `db:"is_verified" json:"is_verified"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	LastSync       time.Time `db:"last_sync" json:"last_sync"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Sanitize clears every credential field so the struct can be returned to
// API clients. Tokens are write-only from the client's perspective.
func (sa *SocialAccount) Sanitize() *SocialAccount {
	out := *sa
	out.AccessToken = ""
	out.RefreshToken = ""
	out.PageAccessToken = ""
	return &out
}
