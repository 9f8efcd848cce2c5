package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/reachway/reachway/internal/models"
)

type SocialAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	GetByUserAndID(ctx context.Context, userID, id int64) (*models.SocialAccount, error)
	GetByPlatformAccount(ctx context.Context, userID int64, platform, accountID string) (*models.SocialAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListActiveByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListTokensExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.SocialAccount, error)
	Update(ctx context.Context, sa *models.SocialAccount) error
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateSyncInfo(ctx context.Context, id, followers, following, postsCount int64, syncedAt time.Time) error
	SetActive(ctx context.Context, userID, id int64, active bool) error
	Remove(ctx context.Context, userID, id int64) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `
	id, user_id, platform, account_type, account_id, account_name,
	access_token, refresh_token, page_id, page_access_token,
	instagram_business_account_id, linkedin_company_id, tiktok_open_id,
	reddit_client_id, reddit_username, reddit_subreddit,
	profile_picture_url, followers, following, posts_count,
	is_verified, is_active, token_expires_at, last_sync, created_at, updated_at
`

func scanSocialAccount(row interface{ Scan(...any) error }) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.AccountType, &sa.AccountID,
		&sa.AccountName, &sa.AccessToken, &sa.RefreshToken, &sa.PageID, &sa.PageAccessToken,
		&sa.InstagramBusinessID, &sa.LinkedinCompanyID, &sa.TiktokOpenID,
		&sa.RedditClientID, &sa.RedditUsername, &sa.RedditSubreddit,
		&sa.ProfilePicture, &sa.Followers, &sa.Following, &sa.PostsCount,
		&sa.IsVerified, &sa.IsActive, &sa.TokenExpiresAt, &sa.LastSync, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (r *socialAccountRepository) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
			INSERT INTO social_accounts(
				user_id,
				platform,
				account_type,
				account_id,
				account_name,
				access_token,
				refresh_token,
				page_id,
				page_access_token,
				instagram_business_account_id,
				linkedin_company_id,
				tiktok_open_id,
				reddit_client_id,
				reddit_username,
				reddit_subreddit,
				profile_picture_url,
				is_active,
				token_expires_at,
				last_sync
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			RETURNING id
		`

	args := []any{
		sa.UserID,
		sa.Platform,
		sa.AccountType,
		sa.AccountID,
		sa.AccountName,
		sa.AccessToken,
		sa.RefreshToken,
		sa.PageID,
		sa.PageAccessToken,
		sa.InstagramBusinessID,
		sa.LinkedinCompanyID,
		sa.TiktokOpenID,
		sa.RedditClientID,
		sa.RedditUsername,
		sa.RedditSubreddit,
		sa.ProfilePicture,
		sa.IsActive,
		sa.TokenExpiresAt,
		sa.LastSync,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) GetByUserAndID(ctx context.Context, userID, id int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1 AND user_id = $2`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) GetByPlatformAccount(ctx context.Context, userID int64, platform, accountID string) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 AND platform = $2 AND account_id = $3`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, userID, platform, accountID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *socialAccountRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 AND is_active = true ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *socialAccountRepository) ListTokensExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts
		WHERE is_active = true AND refresh_token <> '' AND token_expires_at <= $1`
	return r.list(ctx, query, deadline)
}

func (r *socialAccountRepository) list(ctx context.Context, query string, args ...any) ([]*models.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		sa, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, sa)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) Update(ctx context.Context, sa *models.SocialAccount) error {
	query := `
		UPDATE social_accounts
		SET account_name = $1,
			access_token = $2,
			refresh_token = $3,
			page_id = $4,
			page_access_token = $5,
			instagram_business_account_id = $6,
			linkedin_company_id = $7,
			reddit_subreddit = $8,
			profile_picture_url = $9,
			is_active = $10,
			token_expires_at = $11,
			updated_at = NOW()
		WHERE id = $12 AND user_id = $13
	`
	_, err := r.db.ExecContext(ctx, query,
		sa.AccountName,
		sa.AccessToken,
		sa.RefreshToken,
		sa.PageID,
		sa.PageAccessToken,
		sa.InstagramBusinessID,
		sa.LinkedinCompanyID,
		sa.RedditSubreddit,
		sa.ProfilePicture,
		sa.IsActive,
		sa.TokenExpiresAt,
		sa.ID,
		sa.UserID,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE social_accounts
		SET access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiresAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) UpdateSyncInfo(ctx context.Context, id, followers, following, postsCount int64, syncedAt time.Time) error {
	query := `
		UPDATE social_accounts
		SET followers = $1, following = $2, posts_count = $3, last_sync = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, followers, following, postsCount, syncedAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) SetActive(ctx context.Context, userID, id int64, active bool) error {
	query := `UPDATE social_accounts SET is_active = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`
	_, err := r.db.ExecContext(ctx, query, active, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM social_accounts WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
