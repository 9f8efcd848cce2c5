package job

import (
	"context"
	"log/slog"

	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/service"
)

// AccountSyncJob refreshes follower counts for every user's active
// accounts. Failures on one user never stop the rest.
type AccountSyncJob struct {
	ur repository.UserRepository
	as service.AnalyticsService
}

func NewAccountSyncJob(ur repository.UserRepository, as service.AnalyticsService) *AccountSyncJob {
	return &AccountSyncJob{
		ur: ur,
		as: as,
	}
}

func (c *AccountSyncJob) SyncAccounts() {
	ctx := context.Background()

	userIDs, err := c.ur.ListIDs(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, userID := range userIDs {
		report, err := c.as.SyncAccounts(ctx, userID)
		if err != nil {
			slog.Info("account sync failed",
				slog.Int64("user_id", userID), slog.String("error", err.Error()))
			continue
		}
		if report.SyncedCount > 0 || report.ErrorCount > 0 {
			slog.Info("account sync finished",
				slog.Int64("user_id", userID),
				slog.Int("synced", report.SyncedCount),
				slog.Int("errors", report.ErrorCount))
		}
	}
}
