package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/reachway/reachway/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, p *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserAndID(ctx context.Context, userID, id int64) (*models.Post, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error)
	ListPostedByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	ListScheduledByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	ClaimDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	Claim(ctx context.Context, id int64) (bool, error)
	MarkPosted(ctx context.Context, id int64, socialMediaPostID string) error
	ReleaseClaim(ctx context.Context, id int64) error
	UpdateAnalytics(ctx context.Context, p *models.Post) error
	Remove(ctx context.Context, userID, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `
	id, user_id, account_id, platform, description, image,
	post_date, status, social_media_post_id, media_id, scheduled_time, is_processed,
	reach, impressions, engagement, likes, comments, shares, clicks, saves,
	analytics_updated_at, platform_analytics,
	engagement_rate, click_through_rate, reach_rate,
	created_at, updated_at
`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var platformAnalytics []byte
	err := row.Scan(&p.ID, &p.UserID, &p.AccountID, &p.Platform, &p.Description, &p.Image,
		&p.PostDate, &p.Status, &p.SocialMediaPostID, &p.MediaID, &p.ScheduledTime, &p.IsProcessed,
		&p.Analytics.Reach, &p.Analytics.Impressions, &p.Analytics.Engagement,
		&p.Analytics.Likes, &p.Analytics.Comments, &p.Analytics.Shares,
		&p.Analytics.Clicks, &p.Analytics.Saves,
		&p.Analytics.LastUpdated, &platformAnalytics,
		&p.Performance.EngagementRate, &p.Performance.ClickThroughRate, &p.Performance.ReachRate,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(platformAnalytics) > 0 {
		if err := json.Unmarshal(platformAnalytics, &p.PlatformAnalytics); err != nil {
			slog.Info(err.Error())
		}
	}
	return &p, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, p *models.Post) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
			INSERT INTO posts(
				user_id,
				account_id,
				platform,
				description,
				image,
				post_date,
				status,
				social_media_post_id,
				media_id,
				scheduled_time,
				is_processed
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`

	args := []any{
		p.UserID,
		p.AccountID,
		p.Platform,
		p.Description,
		p.Image,
		p.PostDate,
		p.Status,
		p.SocialMediaPostID,
		p.MediaID,
		p.ScheduledTime,
		p.IsProcessed,
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

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	p, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return p, nil
}

func (r *postRepository) GetByUserAndID(ctx context.Context, userID, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND user_id = $2`
	p, err := scanPost(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return p, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY post_date DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *postRepository) ListPostedByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND status = $2 AND social_media_post_id <> ''
		ORDER BY post_date DESC`
	return r.list(ctx, query, userID, models.PostStatusPosted)
}

func (r *postRepository) ListScheduledByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND status = $2
		ORDER BY scheduled_time ASC`
	return r.list(ctx, query, userID, models.PostStatusScheduled)
}

// ClaimDue atomically flips due scheduled posts to processed and returns
// them, so overlapping ticks can never finalize the same post twice.
func (r *postRepository) ClaimDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `
		UPDATE posts
		SET is_processed = true, updated_at = NOW()
		WHERE status = $1 AND is_processed = false AND scheduled_time <= $2
		RETURNING ` + postColumns

	return r.list(ctx, query, models.PostStatusScheduled, now)
}

// Claim takes a single scheduled post. It reports false when another
// worker already holds it.
func (r *postRepository) Claim(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE posts
		SET is_processed = true, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND is_processed = false
	`
	res, err := r.db.ExecContext(ctx, query, id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *postRepository) MarkPosted(ctx context.Context, id int64, socialMediaPostID string) error {
	query := `
		UPDATE posts
		SET status = $1, social_media_post_id = $2, post_date = NOW(), updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPosted, socialMediaPostID, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ReleaseClaim puts a claimed post back so a later tick can retry it.
func (r *postRepository) ReleaseClaim(ctx context.Context, id int64) error {
	query := `UPDATE posts SET is_processed = false, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateAnalytics(ctx context.Context, p *models.Post) error {
	platformAnalytics, err := json.Marshal(p.PlatformAnalytics)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		UPDATE posts
		SET reach = $1, impressions = $2, engagement = $3, likes = $4,
			comments = $5, shares = $6, clicks = $7, saves = $8,
			analytics_updated_at = $9, platform_analytics = $10,
			engagement_rate = $11, click_through_rate = $12, reach_rate = $13,
			updated_at = NOW()
		WHERE id = $14
	`
	_, err = r.db.ExecContext(ctx, query,
		p.Analytics.Reach,
		p.Analytics.Impressions,
		p.Analytics.Engagement,
		p.Analytics.Likes,
		p.Analytics.Comments,
		p.Analytics.Shares,
		p.Analytics.Clicks,
		p.Analytics.Saves,
		p.Analytics.LastUpdated,
		platformAnalytics,
		p.Performance.EngagementRate,
		p.Performance.ClickThroughRate,
		p.Performance.ReachRate,
		p.ID,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM posts WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}
