package models

import "time"

// PublishIntent is written before a platform call is attempted and
// completed after the resulting Post row is persisted. An intent left
// dangling marks a publish that may have reached the platform without a
// matching Post record; the scheduler tick reports those.
type PublishIntent struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	PostID       int64      `db:"post_id" json:"post_id"`
	AccountID    int64      `db:"account_id" json:"account_id"`
	Platform     string     `db:"platform" json:"platform"`
	ErrorMessage string     `db:"error_message" json:"error_message"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
