package models

import "time"

const (
	PostStatusPending   = "post"
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
)

// Analytics holds the latest engagement numbers pulled from a platform.
// Each sync replaces the values wholesale, it never accumulates.
type Analytics struct {
	Reach       int64     `db:"reach" json:"reach"`
	Impressions int64     `db:"impressions" json:"impressions"`
	Engagement  int64     `db:"engagement" json:"engagement"`
	Likes       int64     `db:"likes" json:"likes"`
	Comments    int64     `db:"comments" json:"comments"`
	Shares      int64     `db:"shares" json:"shares"`
	Clicks      int64     `db:"clicks" json:"clicks"`
	Saves       int64     `db:"saves" json:"saves"`
	LastUpdated time.Time `db:"analytics_updated_at" json:"lastUpdated"`
}

type Performance struct {
	EngagementRate   float64 `db:"engagement_rate" json:"engagementRate"`
	ClickThroughRate float64 `db:"click_through_rate" json:"clickThroughRate"`
	ReachRate        float64 `db:"reach_rate" json:"reachRate"`
}

type Post struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"user_id"`
	AccountID   int64  `db:"account_id" json:"account_id,omitempty"`
	Platform    string `db:"platform" json:"platform"`
	Description string `db:"description" json:"description"`
	Image       string `db:"image" json:"image"`

	PostDate          time.Time  `db:"post_date" json:"date"`
	Status            string     `db:"status" json:"status"`
	SocialMediaPostID string     `db:"social_media_post_id" json:"socialMediaPostId"`
	MediaID           string     `db:"media_id" json:"mediaId"`
	ScheduledTime     *time.Time `db:"scheduled_time" json:"scheduledDateTime,omitempty"`
	IsProcessed       bool       `db:"is_processed" json:"isProcessed"`

	Analytics         Analytics                   `json:"analytics"`
	PlatformAnalytics map[string]map[string]int64 `json:"platformAnalytics"`
	Performance       Performance                 `json:"performance"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
