package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reachway/reachway/internal/queue"
	"github.com/reachway/reachway/internal/repository"
)

// danglingIntentAge is how long an intent may stay open before the
// sweep reports it as a possible platform-side orphan.
const danglingIntentAge = 10 * time.Minute

// SchedulerJob is the safety net behind the delayed queue tasks: every
// tick it claims scheduled posts whose time has passed and finalizes
// them, and reports publish intents that never completed. The mutex
// keeps a slow tick from overlapping the next one.
type SchedulerJob struct {
	mu  sync.Mutex
	pr  repository.PostRepository
	pir repository.PublishIntentRepository
	q   *queue.Queue
}

func NewSchedulerJob(
	pr repository.PostRepository,
	pir repository.PublishIntentRepository,
	q *queue.Queue) *SchedulerJob {
	return &SchedulerJob{
		pr:  pr,
		pir: pir,
		q:   q,
	}
}

func (j *SchedulerJob) Run() {
	if !j.mu.TryLock() {
		slog.Info("scheduler tick skipped, previous tick still running")
		return
	}
	defer j.mu.Unlock()

	ctx := context.Background()
	j.finalizeDuePosts(ctx)
	j.reportDanglingIntents(ctx)
}

func (j *SchedulerJob) finalizeDuePosts(ctx context.Context) {
	posts, err := j.pr.ClaimDue(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if len(posts) == 0 {
		return
	}

	slog.Info("finalizing due posts", slog.Int("count", len(posts)))
	for _, post := range posts {
		if err := j.q.FinalizePost(ctx, post); err != nil {
			slog.Info("post finalize failed",
				slog.Int64("post_id", post.ID), slog.String("error", err.Error()))
		}
	}
}

func (j *SchedulerJob) reportDanglingIntents(ctx context.Context) {
	intents, err := j.pir.ListDangling(ctx, time.Now().Add(-danglingIntentAge))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, intent := range intents {
		slog.Warn("publish intent never completed, the platform call may have gone through without a post record",
			slog.Int64("intent_id", intent.ID),
			slog.Int64("account_id", intent.AccountID),
			slog.String("platform", intent.Platform),
			slog.Time("created_at", intent.CreatedAt))
	}
}
