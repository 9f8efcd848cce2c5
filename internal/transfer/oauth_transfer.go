package transfer

import "github.com/golang-jwt/jwt/v5"

// StateClaims rides through the OAuth round-trip as the `state` parameter
// so the callback can attribute the new account to a user.
type StateClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type RedditIdentity struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	IconImg    string  `json:"icon_img"`
	TotalKarma int64   `json:"total_karma"`
	CreatedUTC float64 `json:"created_utc"`
}

type RedditSubreddit struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subscribers int64  `json:"subscribers"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type TiktokTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	OpenID       string `json:"open_id"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

type TiktokUserInfo struct {
	Data struct {
		User struct {
			OpenID      string `json:"open_id"`
			UnionID     string `json:"union_id"`
			DisplayName string `json:"display_name"`
			AvatarURL   string `json:"avatar_url"`
		} `json:"user"`
		Stats struct {
			FollowerCount  int64 `json:"follower_count"`
			FollowingCount int64 `json:"following_count"`
			LikesCount     int64 `json:"like_count"`
			VideoCount     int64 `json:"video_count"`
		} `json:"stats"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
