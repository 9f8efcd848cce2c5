package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/service"
)

type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	tt service.TiktokService
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, tt service.TiktokService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr: sr,
		tt: tt,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	deadline := time.Now().Add(30 * time.Minute)

	accounts, err := c.sr.ListTokensExpiringBefore(ctx, deadline)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			switch acc.Platform {
			case models.PlatformTiktok:
				if err := c.tt.RefreshToken(ctx, acc); err != nil {
					slog.Info("Unable to refresh tokens for TikTok",
						slog.Int64("account_id", acc.ID))
				}
			}
		}(acc)
	}

	wg.Wait()
}
