package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/transfer"
	"github.com/reachway/reachway/pkg/utils"
)

var redditEndpoint = oauth2.Endpoint{
	AuthURL:   "https://www.reddit.com/api/v1/authorize",
	TokenURL:  "https://www.reddit.com/api/v1/access_token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// RedditService handles the OAuth round-trip for Reddit accounts plus
// the subreddit listing the frontend needs to pick a target. Reddit
// rejects requests without a descriptive User-Agent, so every call goes
// through a client that sets one.
type RedditService interface {
	AuthURL(userID int64) (string, error)
	Callback(ctx context.Context, code, state string) error
	Subreddits(ctx context.Context, userID, accountID int64) ([]*transfer.RedditSubreddit, error)
}

type redditService struct {
	cfg cfg.Config
	sa  repository.SocialAccountRepository
}

func NewRedditService(cfg cfg.Config, sa repository.SocialAccountRepository) RedditService {
	return &redditService{cfg: cfg, sa: sa}
}

func (s *redditService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.RedditClientID,
		ClientSecret: s.cfg.RedditClientSecret,
		RedirectURL:  s.cfg.RedditRedirectURI,
		Scopes:       []string{"identity", "submit", "read", "mysubreddits"},
		Endpoint:     redditEndpoint,
	}
}

func (s *redditService) AuthURL(userID int64) (string, error) {
	state, err := utils.GenerateStateToken(s.cfg.SecretKey, strconv.FormatInt(userID, 10), stateTokenTTL)
	if err != nil {
		return "", err
	}

	return s.oauthConfig().AuthCodeURL(state,
		oauth2.SetAuthURLParam("duration", "permanent")), nil
}

func (s *redditService) Callback(ctx context.Context, code, state string) error {
	if code == "" || state == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	claims, err := utils.ValidateStateToken(s.cfg.SecretKey, state)
	if err != nil {
		return fmt.Errorf("%w: invalid state token", ErrInvalidInput)
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid state token", ErrInvalidInput)
	}

	oauthConfig := s.oauthConfig()
	if oauthConfig.ClientID == "" || oauthConfig.ClientSecret == "" || oauthConfig.RedirectURL == "" {
		err = errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	token, err := oauthConfig.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	identity, err := s.identity(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken := ""
	if token.RefreshToken != "" {
		if encryptedRefreshToken, err = utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey)); err != nil {
			return err
		}
	}

	accountInfo := &models.SocialAccount{
		UserID:         userID,
		Platform:       models.PlatformReddit,
		AccountID:      identity.ID,
		AccountName:    identity.Name,
		RedditUsername: identity.Name,
		ProfilePicture: identity.IconImg,
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		IsActive:       true,
		TokenExpiresAt: token.Expiry,
		LastSync:       time.Now(),
	}

	existing, err := s.sa.GetByPlatformAccount(ctx, userID, models.PlatformReddit, identity.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.sa.UpdateTokens(ctx, existing.ID, encryptedAccessToken, encryptedRefreshToken, token.Expiry)
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	return err
}

func (s *redditService) Subreddits(ctx context.Context, userID, accountID int64) ([]*transfer.RedditSubreddit, error) {
	acct, err := s.sa.GetByUserAndID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil || acct.Platform != models.PlatformReddit {
		return nil, fmt.Errorf("%w: reddit account", ErrNotFound)
	}

	accessToken, err := utils.Decrypt(acct.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://oauth.reddit.com/subreddits/mine/subscriber?limit=100", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", s.cfg.RedditUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reddit API error (status %d)", resp.StatusCode)
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					DisplayName       string `json:"display_name"`
					Name              string `json:"name"`
					Title             string `json:"title"`
					Subscribers       int64  `json:"subscribers"`
					PublicDescription string `json:"public_description"`
					URL               string `json:"url"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	subreddits := make([]*transfer.RedditSubreddit, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		subreddits = append(subreddits, &transfer.RedditSubreddit{
			Name:        child.Data.DisplayName,
			ID:          child.Data.Name,
			Title:       child.Data.Title,
			Subscribers: child.Data.Subscribers,
			Description: child.Data.PublicDescription,
			URL:         child.Data.URL,
		})
	}

	return subreddits, nil
}

func (s *redditService) identity(ctx context.Context, accessToken string) (*transfer.RedditIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://oauth.reddit.com/api/v1/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", s.cfg.RedditUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reddit API error (status %d)", resp.StatusCode)
	}

	var identity transfer.RedditIdentity
	if err := json.Unmarshal(body, &identity); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &identity, nil
}

// oauthContext wraps the exchange call's client so the token request
// carries Reddit's required User-Agent.
func (s *redditService) oauthContext(ctx context.Context) context.Context {
	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: s.cfg.RedditUserAgent},
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
