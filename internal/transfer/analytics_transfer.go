package transfer

import "time"

// InsightSet is one platform's engagement numbers for a single post,
// normalized to the fields the Post analytics columns store. Raw holds the
// platform-native metric names for the platformAnalytics breakdown.
type InsightSet struct {
	Reach       int64
	Impressions int64
	Engagement  int64
	Likes       int64
	Comments    int64
	Shares      int64
	Clicks      int64
	Saves       int64
	Raw         map[string]int64
}

type SyncReport struct {
	SyncedCount int `json:"syncedCount"`
	ErrorCount  int `json:"errorCount"`
}

type PlatformBreakdown struct {
	Accounts       int     `json:"accounts"`
	Posts          int     `json:"posts"`
	Reach          int64   `json:"reach"`
	Impressions    int64   `json:"impressions"`
	Engagement     int64   `json:"engagement"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	EngagementRate float64 `json:"engagementRate"`
}

type PostSummary struct {
	ID             int64     `json:"id"`
	Description    string    `json:"description"`
	Platform       string    `json:"platform"`
	Date           time.Time `json:"date"`
	Reach          int64     `json:"reach"`
	Engagement     int64     `json:"engagement"`
	EngagementRate float64   `json:"engagementRate"`
	Image          string    `json:"image,omitempty"`
}

type TrendPoint struct {
	Date       string `json:"date"`
	Reach      int64  `json:"reach"`
	Engagement int64  `json:"engagement"`
	Posts      int    `json:"posts"`
}

type AccountStatus struct {
	ID             int64     `json:"id"`
	Platform       string    `json:"platform"`
	AccountName    string    `json:"accountName"`
	AccountType    string    `json:"accountType"`
	IsActive       bool      `json:"isActive"`
	IsVerified     bool      `json:"isVerified"`
	Followers      int64     `json:"followers"`
	LastSync       time.Time `json:"lastSync"`
	ProfilePicture string    `json:"profilePicture"`
}

type Dashboard struct {
	TotalAccounts         int                           `json:"totalAccounts"`
	TotalPosts            int                           `json:"totalPosts"`
	TotalReach            int64                         `json:"totalReach"`
	TotalImpressions      int64                         `json:"totalImpressions"`
	TotalEngagement       int64                         `json:"totalEngagement"`
	TotalLikes            int64                         `json:"totalLikes"`
	TotalComments         int64                         `json:"totalComments"`
	TotalShares           int64                         `json:"totalShares"`
	TotalFollowers        int64                         `json:"totalFollowers"`
	AverageEngagementRate float64                       `json:"averageEngagementRate"`
	PlatformBreakdown     map[string]*PlatformBreakdown `json:"platformBreakdown"`
	RecentPosts           []PostSummary                 `json:"recentPosts"`
	TopPerformingPosts    []PostSummary                 `json:"topPerformingPosts"`
	AccountStatus         []AccountStatus               `json:"accountStatus"`
	PerformanceTrends     []TrendPoint                  `json:"performanceTrends"`
}
