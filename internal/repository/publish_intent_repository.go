package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/reachway/reachway/internal/models"
)

type PublishIntentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, pi *models.PublishIntent) (int64, error)
	Complete(ctx context.Context, id, postID int64, errorMessage string) error
	ListDangling(ctx context.Context, olderThan time.Time) ([]*models.PublishIntent, error)
}

type publishIntentRepository struct {
	db *sql.DB
}

func NewPublishIntentRepository(db *sql.DB) PublishIntentRepository {
	return &publishIntentRepository{db: db}
}

func (r *publishIntentRepository) Create(ctx context.Context, tx *sql.Tx, pi *models.PublishIntent) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
			INSERT INTO publish_intents(user_id, account_id, platform)
			VALUES ($1, $2, $3)
			RETURNING id
		`

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, pi.UserID, pi.AccountID, pi.Platform).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, pi.UserID, pi.AccountID, pi.Platform).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publishIntentRepository) Complete(ctx context.Context, id, postID int64, errorMessage string) error {
	query := `
		UPDATE publish_intents
		SET post_id = $1, error_message = $2, completed_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, postID, errorMessage, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ListDangling returns intents that were opened before olderThan and never
// completed. Those mark publishes that may have reached the platform
// without a matching post row.
func (r *publishIntentRepository) ListDangling(ctx context.Context, olderThan time.Time) ([]*models.PublishIntent, error) {
	query := `
		SELECT id, user_id, post_id, account_id, platform, error_message, completed_at, created_at
		FROM publish_intents
		WHERE completed_at IS NULL AND created_at < $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, olderThan)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var intents []*models.PublishIntent
	for rows.Next() {
		var pi models.PublishIntent
		var postID sql.NullInt64
		var errorMessage sql.NullString
		if err := rows.Scan(&pi.ID, &pi.UserID, &postID, &pi.AccountID, &pi.Platform,
			&errorMessage, &pi.CompletedAt, &pi.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pi.PostID = postID.Int64
		pi.ErrorMessage = errorMessage.String
		intents = append(intents, &pi)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return intents, nil
}
