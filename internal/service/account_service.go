package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/transfer"
	"github.com/reachway/reachway/pkg/utils"
)

// AccountService owns the credential store. Tokens are encrypted before
// they hit the database and stripped before anything is returned to a
// client.
type AccountService interface {
	Create(ctx context.Context, ac *transfer.AccountCreation) (int64, error)
	Update(ctx context.Context, userID, accountID int64, au *transfer.AccountUpdate) error
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Info(ctx context.Context, userID, accountID int64) (*models.SocialAccount, error)
	TestConnection(ctx context.Context, userID, accountID int64) (*transfer.ConnectionTest, error)
	SetActive(ctx context.Context, userID, accountID int64, active bool) error
	Remove(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	config   cfg.Config
	ar       repository.SocialAccountRepository
	registry *platform.Registry
}

func NewAccountService(cfg cfg.Config, ar repository.SocialAccountRepository, registry *platform.Registry) AccountService {
	return &accountService{
		config:   cfg,
		ar:       ar,
		registry: registry,
	}
}

func (s *accountService) Create(ctx context.Context, ac *transfer.AccountCreation) (int64, error) {
	if ac == nil || ac.UserID == 0 {
		return 0, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}
	if !models.IsSupportedPlatform(ac.Platform) {
		return 0, fmt.Errorf("%w: unsupported platform: %s", ErrInvalidInput, ac.Platform)
	}
	if ac.AccountID == "" || ac.AccountName == "" {
		return 0, fmt.Errorf("%w: account id and name are required", ErrInvalidInput)
	}

	existing, err := s.ar.GetByPlatformAccount(ctx, ac.UserID, ac.Platform, ac.AccountID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, fmt.Errorf("%w: account is already connected", ErrDuplicate)
	}

	sa := &models.SocialAccount{
		UserID:              ac.UserID,
		Platform:            ac.Platform,
		AccountType:         ac.AccountType,
		AccountID:           ac.AccountID,
		AccountName:         ac.AccountName,
		AccessToken:         ac.AccessToken,
		RefreshToken:        ac.RefreshToken,
		PageID:              ac.PageID,
		PageAccessToken:     ac.PageAccessToken,
		InstagramBusinessID: ac.InstagramBusinessID,
		LinkedinCompanyID:   ac.LinkedinCompanyID,
		TiktokOpenID:        ac.TiktokOpenID,
		RedditClientID:      ac.RedditClientID,
		RedditUsername:      ac.RedditUsername,
		RedditSubreddit:     ac.RedditSubreddit,
		IsActive:            true,
		LastSync:            time.Now(),
	}

	if err := encryptAccountTokens([]byte(s.config.SecretKey), sa); err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("error encrypting tokens: %w", err)
	}

	return s.ar.Create(ctx, nil, sa)
}

// Update applies the non-empty fields of au to a stored account. New
// tokens are encrypted before the row is written.
func (s *accountService) Update(ctx context.Context, userID, accountID int64, au *transfer.AccountUpdate) error {
	if au == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	acct, err := s.resolve(ctx, userID, accountID)
	if err != nil {
		return err
	}

	if au.AccountName != "" {
		acct.AccountName = au.AccountName
	}
	if au.PageID != "" {
		acct.PageID = au.PageID
	}
	if au.InstagramBusinessID != "" {
		acct.InstagramBusinessID = au.InstagramBusinessID
	}
	if au.LinkedinCompanyID != "" {
		acct.LinkedinCompanyID = au.LinkedinCompanyID
	}
	if au.RedditSubreddit != "" {
		acct.RedditSubreddit = au.RedditSubreddit
	}

	secret := []byte(s.config.SecretKey)
	if au.AccessToken != "" {
		if acct.AccessToken, err = utils.Encrypt([]byte(au.AccessToken), secret); err != nil {
			return err
		}
	}
	if au.RefreshToken != "" {
		if acct.RefreshToken, err = utils.Encrypt([]byte(au.RefreshToken), secret); err != nil {
			return err
		}
	}
	if au.PageAccessToken != "" {
		if acct.PageAccessToken, err = utils.Encrypt([]byte(au.PageAccessToken), secret); err != nil {
			return err
		}
	}

	return s.ar.Update(ctx, acct)
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}

	accounts, err := s.ar.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sanitized := make([]*models.SocialAccount, 0, len(accounts))
	for _, acct := range accounts {
		sanitized = append(sanitized, acct.Sanitize())
	}
	return sanitized, nil
}

func (s *accountService) Info(ctx context.Context, userID, accountID int64) (*models.SocialAccount, error) {
	acct, err := s.resolve(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	return acct.Sanitize(), nil
}

func (s *accountService) TestConnection(ctx context.Context, userID, accountID int64) (*transfer.ConnectionTest, error) {
	acct, err := s.resolve(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	publisher, ok := s.registry.Lookup(acct.Platform)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported platform: %s", ErrInvalidInput, acct.Platform)
	}

	decrypted, err := decryptAccountTokens([]byte(s.config.SecretKey), acct)
	if err != nil {
		slog.Info(err.Error())
		return &transfer.ConnectionTest{Success: false, Message: "No access token available"}, nil
	}

	return publisher.TestConnection(ctx, decrypted), nil
}

func (s *accountService) SetActive(ctx context.Context, userID, accountID int64, active bool) error {
	if _, err := s.resolve(ctx, userID, accountID); err != nil {
		return err
	}
	return s.ar.SetActive(ctx, userID, accountID, active)
}

func (s *accountService) Remove(ctx context.Context, userID, accountID int64) error {
	if _, err := s.resolve(ctx, userID, accountID); err != nil {
		return err
	}
	return s.ar.Remove(ctx, userID, accountID)
}

func (s *accountService) resolve(ctx context.Context, userID, accountID int64) (*models.SocialAccount, error) {
	if userID == 0 || accountID == 0 {
		return nil, fmt.Errorf("%w: account id is not valid", ErrInvalidInput)
	}

	acct, err := s.ar.GetByUserAndID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: social account", ErrNotFound)
	}
	return acct, nil
}
