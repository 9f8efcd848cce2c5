package transfer

// PublishTarget identifies one social account a post should go out to.
type PublishTarget struct {
	AccountID int64  `json:"accountId"`
	Platform  string `json:"platform"`
}

// PublishCreation is the parsed multipart form of a publish request. The
// handler buffers the uploaded file separately, services never see
// multipart.
type PublishCreation struct {
	Description   string          `json:"description"`
	ScheduledTime string          `json:"scheduledDateTime,omitempty"`
	Targets       []PublishTarget `json:"targets"`
}

// PublishOutcome is the per-target result the orchestrator reports back.
type PublishOutcome struct {
	Platform    string `json:"platform"`
	AccountName string `json:"accountName"`
	Success     bool   `json:"success"`
	PostID      string `json:"postId,omitempty"`
	MediaID     string `json:"mediaId,omitempty"`
	Scheduled   bool   `json:"scheduled,omitempty"`
	Error       string `json:"error,omitempty"`
}

type PublishSummary struct {
	Success       []PublishOutcome `json:"success"`
	Failed        []PublishOutcome `json:"failed"`
	TotalAccounts int              `json:"totalAccounts"`
}

// ConnectionTest is the normalized result of an adapter's whoami call.
type ConnectionTest struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// AccountCreation carries the fields a client supplies when adding a
// social account by hand (as opposed to an OAuth callback).
type AccountCreation struct {
	UserID              int64  `json:"userId"`
	Platform            string `json:"platform"`
	AccountType         string `json:"accountType"`
	AccountName         string `json:"accountName"`
	AccountID           string `json:"accountId"`
	AccessToken         string `json:"accessToken"`
	RefreshToken        string `json:"refreshToken"`
	PageID              string `json:"pageId"`
	PageAccessToken     string `json:"pageAccessToken"`
	InstagramBusinessID string `json:"instagramBusinessAccountId"`
	LinkedinCompanyID   string `json:"linkedinCompanyId"`
	TiktokOpenID        string `json:"tiktokOpenId"`
	RedditClientID      string `json:"redditClientId"`
	RedditUsername      string `json:"redditUsername"`
	RedditSubreddit     string `json:"redditSubreddit"`
}

// AccountUpdate carries the mutable fields of a connected account.
// Empty fields are left untouched.
type AccountUpdate struct {
	AccountName         string `json:"accountName"`
	AccessToken         string `json:"accessToken"`
	RefreshToken        string `json:"refreshToken"`
	PageID              string `json:"pageId"`
	PageAccessToken     string `json:"pageAccessToken"`
	InstagramBusinessID string `json:"instagramBusinessAccountId"`
	LinkedinCompanyID   string `json:"linkedinCompanyId"`
	RedditSubreddit     string `json:"redditSubreddit"`
}
