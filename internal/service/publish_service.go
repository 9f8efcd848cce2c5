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
)

// Minute-precision fallback for clients that send datetime-local values.
// Such values carry no offset and are read as UTC.
const scheduledTimeLayout = "2006-01-02T15:04"

func parseScheduledTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(scheduledTimeLayout, value)
}

// Finalize scheduling is injected so the orchestrator does not depend on
// the queue package directly.
type FinalizeEnqueuer interface {
	EnqueueFinalize(postID int64, delay time.Duration) error
}

// PublishService fans one post out to every selected account, one
// platform at a time. A platform failure never aborts the loop: each
// target gets its own outcome and the summary always accounts for all of
// them.
type PublishService interface {
	Publish(ctx context.Context, userID int64, pc *transfer.PublishCreation, media *platform.Media) (*transfer.PublishSummary, error)
	List(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error)
	ListScheduled(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, userID, postID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type publishService struct {
	config   cfg.Config
	ar       repository.SocialAccountRepository
	pr       repository.PostRepository
	pir      repository.PublishIntentRepository
	registry *platform.Registry
	media    MediaService
	enqueue  FinalizeEnqueuer
}

func NewPublishService(
	cfg cfg.Config,
	ar repository.SocialAccountRepository,
	pr repository.PostRepository,
	pir repository.PublishIntentRepository,
	registry *platform.Registry,
	media MediaService,
	enqueue FinalizeEnqueuer) PublishService {
	return &publishService{
		config:   cfg,
		ar:       ar,
		pr:       pr,
		pir:      pir,
		registry: registry,
		media:    media,
		enqueue:  enqueue,
	}
}

func (s *publishService) Publish(ctx context.Context, userID int64, pc *transfer.PublishCreation, media *platform.Media) (*transfer.PublishSummary, error) {
	if pc == nil || pc.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if len(pc.Targets) == 0 {
		return nil, fmt.Errorf("%w: no accounts selected", ErrInvalidInput)
	}
	for _, t := range pc.Targets {
		if !models.IsSupportedPlatform(t.Platform) {
			return nil, fmt.Errorf("%w: unsupported platform: %s", ErrInvalidInput, t.Platform)
		}
	}

	var scheduledTime time.Time
	if pc.ScheduledTime != "" {
		parsed, err := parseScheduledTime(pc.ScheduledTime)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid scheduled time format", ErrInvalidInput)
		}
		scheduledTime = parsed
	}

	// The mirrored object is removed once every target has been attempted.
	defer s.media.Remove(ctx, media)

	summary := &transfer.PublishSummary{
		Success:       []transfer.PublishOutcome{},
		Failed:        []transfer.PublishOutcome{},
		TotalAccounts: len(pc.Targets),
	}

	req := &platform.PublishRequest{
		Description:   pc.Description,
		Media:         media,
		ScheduledTime: scheduledTime,
	}

	for _, target := range pc.Targets {
		outcome := s.publishOne(ctx, userID, target, req)
		if outcome.Success {
			summary.Success = append(summary.Success, *outcome)
		} else {
			summary.Failed = append(summary.Failed, *outcome)
		}
	}

	return summary, nil
}

func (s *publishService) publishOne(ctx context.Context, userID int64, target transfer.PublishTarget, req *platform.PublishRequest) *transfer.PublishOutcome {
	outcome := &transfer.PublishOutcome{Platform: target.Platform}

	acct, err := s.ar.GetByUserAndID(ctx, userID, target.AccountID)
	if err != nil {
		outcome.Error = "Account not found or inactive"
		return outcome
	}
	if acct == nil || !acct.IsActive || acct.Platform != target.Platform {
		outcome.Error = "Account not found or inactive"
		return outcome
	}
	outcome.AccountName = acct.AccountName

	decrypted, err := s.decryptTokens(acct)
	if err != nil {
		outcome.Error = "No access token available"
		return outcome
	}

	publisher, ok := s.registry.Lookup(target.Platform)
	if !ok {
		outcome.Error = fmt.Sprintf("Unsupported platform: %s", target.Platform)
		return outcome
	}

	// The intent row goes in before the platform call so a crash between
	// the call and the post insert leaves a visible trace.
	intentID, err := s.pir.Create(ctx, nil, &models.PublishIntent{
		UserID:    userID,
		AccountID: acct.ID,
		Platform:  target.Platform,
	})
	if err != nil {
		outcome.Error = "Internal error"
		return outcome
	}

	result := publisher.Publish(ctx, decrypted, req)
	if !result.Success {
		outcome.Error = result.Err
		if err := s.pir.Complete(ctx, intentID, 0, result.Err); err != nil {
			slog.Info(err.Error())
		}
		return outcome
	}

	postID, err := s.recordPost(ctx, userID, acct, req, result)
	if err != nil {
		slog.Info(err.Error())
		outcome.Error = "Failed to save post record"
		if err := s.pir.Complete(ctx, intentID, 0, outcome.Error); err != nil {
			slog.Info(err.Error())
		}
		return outcome
	}
	if err := s.pir.Complete(ctx, intentID, postID, ""); err != nil {
		slog.Info(err.Error())
	}

	outcome.Success = true
	outcome.PostID = result.PostID
	outcome.MediaID = result.MediaID
	outcome.Scheduled = result.Scheduled
	return outcome
}

func (s *publishService) recordPost(ctx context.Context, userID int64, acct *models.SocialAccount, req *platform.PublishRequest, result *platform.PublishResult) (int64, error) {
	post := &models.Post{
		UserID:            userID,
		AccountID:         acct.ID,
		Platform:          acct.Platform,
		Description:       req.Description,
		PostDate:          time.Now(),
		Status:            models.PostStatusPosted,
		SocialMediaPostID: result.PostID,
		MediaID:           result.MediaID,
	}
	if req.Media != nil {
		post.Image = req.Media.PublicURL
	}

	if result.Scheduled {
		// Scheduled posts stay unprocessed until the sweep or a queued
		// task claims them, even when the platform publishes on its own
		// schedule. The claim is what moves the local status to posted.
		post.Status = models.PostStatusScheduled
		scheduled := req.ScheduledTime
		post.ScheduledTime = &scheduled
	}

	postID, err := s.pr.Create(ctx, nil, post)
	if err != nil {
		return 0, err
	}

	// Only container-style flows get a delayed task; self-publishing
	// platforms are handled by the cron sweep alone.
	if _, needsFinalize := s.registry.Finalizer(acct.Platform); result.Scheduled && needsFinalize && s.enqueue != nil {
		delay := time.Until(req.ScheduledTime)
		if delay < 0 {
			delay = 0
		}
		if err := s.enqueue.EnqueueFinalize(postID, delay); err != nil {
			// The cron sweep picks the post up anyway.
			slog.Info(err.Error())
		}
	}

	return postID, nil
}

func (s *publishService) decryptTokens(acct *models.SocialAccount) (*models.SocialAccount, error) {
	return decryptAccountTokens([]byte(s.config.SecretKey), acct)
}

func (s *publishService) List(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}
	return s.pr.ListByUserID(ctx, userID, limit, offset)
}

func (s *publishService) ListScheduled(ctx context.Context, userID int64) ([]*models.Post, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}
	return s.pr.ListScheduledByUserID(ctx, userID)
}

func (s *publishService) PostInfo(ctx context.Context, userID, postID int64) (*models.Post, error) {
	if userID == 0 || postID == 0 {
		return nil, fmt.Errorf("%w: post id is not valid", ErrInvalidInput)
	}
	post, err := s.pr.GetByUserAndID(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post", ErrNotFound)
	}
	return post, nil
}

func (s *publishService) Remove(ctx context.Context, userID, postID int64) error {
	if userID == 0 || postID == 0 {
		return fmt.Errorf("%w: post id is not valid", ErrInvalidInput)
	}
	return s.pr.Remove(ctx, userID, postID)
}
