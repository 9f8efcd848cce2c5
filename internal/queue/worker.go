package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/pkg/utils"
)

func (q *Queue) HandleFinalizePostTask(ctx context.Context, task *asynq.Task) error {
	var payload FinalizePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	claimed, err := q.pr.Claim(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if !claimed {
		// The cron sweep or an earlier delivery got there first.
		return nil
	}

	post, err := q.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return nil
	}

	if err := q.FinalizePost(ctx, post); err != nil {
		slog.Info("post finalize failed",
			slog.Int64("post_id", post.ID), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// FinalizePost completes an already-claimed scheduled post. On failure
// the claim is released so a later tick can retry.
func (q *Queue) FinalizePost(ctx context.Context, post *models.Post) error {
	finalizer, ok := q.registry.Finalizer(post.Platform)
	if !ok {
		// The platform published on its own schedule, only the local
		// status needs to move.
		return q.pr.MarkPosted(ctx, post.ID, post.SocialMediaPostID)
	}

	acct, err := q.ar.GetByID(ctx, post.AccountID)
	if err != nil {
		q.release(ctx, post.ID)
		return err
	}
	if acct == nil {
		q.release(ctx, post.ID)
		return fmt.Errorf("social account %d no longer exists", post.AccountID)
	}

	decrypted, err := q.decryptTokens(acct)
	if err != nil {
		q.release(ctx, post.ID)
		return err
	}

	platformPostID, err := finalizer.Finalize(ctx, decrypted, post.MediaID)
	if err != nil {
		q.release(ctx, post.ID)
		return err
	}

	return q.pr.MarkPosted(ctx, post.ID, platformPostID)
}

func (q *Queue) release(ctx context.Context, postID int64) {
	if err := q.pr.ReleaseClaim(ctx, postID); err != nil {
		slog.Info(err.Error())
	}
}

func (q *Queue) decryptTokens(acct *models.SocialAccount) (*models.SocialAccount, error) {
	out := *acct
	secret := []byte(q.cfg.SecretKey)

	var err error
	if acct.AccessToken != "" {
		if out.AccessToken, err = utils.Decrypt(acct.AccessToken, secret); err != nil {
			return nil, err
		}
	}
	if acct.PageAccessToken != "" {
		if out.PageAccessToken, err = utils.Decrypt(acct.PageAccessToken, secret); err != nil {
			return nil, err
		}
	}
	return &out, nil
}
