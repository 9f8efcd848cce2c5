package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/transfer"
	"github.com/reachway/reachway/pkg/utils"
)

const (
	tiktokAuthURL  = "https://www.tiktok.com/v2/auth/authorize/"
	tiktokTokenURL = "https://open.tiktokapis.com/v2/oauth/token/"
	tiktokScopes   = "user.info.basic,user.info.stats,video.publish,video.upload"

	stateTokenTTL = 15 * time.Minute
)

// TiktokService handles the OAuth round-trip and token refresh for
// TikTok accounts. Publishing itself goes through the platform adapter.
type TiktokService interface {
	AuthURL(userID int64) (string, error)
	Callback(ctx context.Context, code, state string) error
	RefreshToken(ctx context.Context, acct *models.SocialAccount) error
}

type tiktokService struct {
	cfg cfg.Config
	sa  repository.SocialAccountRepository
}

func NewTiktokService(cfg cfg.Config, sa repository.SocialAccountRepository) TiktokService {
	return &tiktokService{cfg: cfg, sa: sa}
}

func (s *tiktokService) AuthURL(userID int64) (string, error) {
	state, err := utils.GenerateStateToken(s.cfg.SecretKey, strconv.FormatInt(userID, 10), stateTokenTTL)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_key", s.cfg.TiktokClientKey)
	params.Set("scope", tiktokScopes)
	params.Set("response_type", "code")
	params.Set("redirect_uri", s.cfg.TiktokRedirectURI)
	params.Set("state", state)

	return tiktokAuthURL + "?" + params.Encode(), nil
}

func (s *tiktokService) Callback(ctx context.Context, code, state string) error {
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

	tokenResponse, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := s.userInfo(ctx, tokenResponse.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:         userID,
		Platform:       models.PlatformTiktok,
		AccountID:      userInfo.Data.User.OpenID,
		AccountName:    userInfo.Data.User.DisplayName,
		TiktokOpenID:   userInfo.Data.User.OpenID,
		ProfilePicture: userInfo.Data.User.AvatarURL,
		Followers:      userInfo.Data.Stats.FollowerCount,
		Following:      userInfo.Data.Stats.FollowingCount,
		PostsCount:     userInfo.Data.Stats.VideoCount,
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		IsActive:       true,
		TokenExpiresAt: GetExpiresAt(tokenResponse.ExpiresIn),
		LastSync:       time.Now(),
	}

	existing, err := s.sa.GetByPlatformAccount(ctx, userID, models.PlatformTiktok, accountInfo.AccountID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.sa.UpdateTokens(ctx, existing.ID, encryptedAccessToken, encryptedRefreshToken, accountInfo.TokenExpiresAt)
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	return err
}

func (s *tiktokService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.TiktokTokenResponse, error) {
	data := url.Values{}
	data.Add("client_key", s.cfg.TiktokClientKey)
	data.Add("client_secret", s.cfg.TiktokClientSecret)
	data.Add("code", code)
	data.Add("grant_type", "authorization_code")
	data.Add("redirect_uri", s.cfg.TiktokRedirectURI)

	return s.tokenRequest(ctx, data)
}

func (s *tiktokService) tokenRequest(ctx context.Context, data url.Values) (*transfer.TiktokTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("TikTok token endpoint returned non-200 status")
		return nil, errors.New("TikTok token endpoint returned non-200 status")
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, errors.New("TikTok token response has no access token")
	}

	return &tokenResponse, nil
}

func (s *tiktokService) userInfo(ctx context.Context, accessToken string) (*transfer.TiktokUserInfo, error) {
	endpoint := "https://open.tiktokapis.com/v2/user/info/?fields=open_id,union_id,avatar_url,display_name,follower_count,following_count,video_count"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

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

	var result transfer.TiktokUserInfo
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if result.Error.Code != "" && result.Error.Code != "ok" {
		return nil, errors.New(result.Error.Message)
	}

	return &result, nil
}

// RefreshToken swaps the stored refresh token for a new access token
// pair. The account's tokens arrive encrypted and go back encrypted.
func (s *tiktokService) RefreshToken(ctx context.Context, acct *models.SocialAccount) error {
	decryptedRefreshToken, err := utils.Decrypt(acct.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("client_key", s.cfg.TiktokClientKey)
	data.Set("client_secret", s.cfg.TiktokClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", decryptedRefreshToken)

	tokenResponse, err := s.tokenRequest(ctx, data)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.sa.UpdateTokens(ctx, acct.ID, encryptedAccessToken, encryptedRefreshToken, GetExpiresAt(tokenResponse.ExpiresIn))
}
