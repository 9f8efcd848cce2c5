package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/transfer"
)

const (
	dashboardRecentPosts = 10
	dashboardTopPosts    = 5
	dashboardTrendDays   = 7
)

// DashboardService aggregates stored analytics across all of a user's
// accounts and posts. It never calls a platform API, it only folds what
// the sync jobs already persisted.
type DashboardService interface {
	Dashboard(ctx context.Context, userID int64) (*transfer.Dashboard, error)
}

type dashboardService struct {
	ar repository.SocialAccountRepository
	pr repository.PostRepository
}

func NewDashboardService(ar repository.SocialAccountRepository, pr repository.PostRepository) DashboardService {
	return &dashboardService{ar: ar, pr: pr}
}

func (s *dashboardService) Dashboard(ctx context.Context, userID int64) (*transfer.Dashboard, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}

	accounts, err := s.ar.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.pr.ListPostedByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dash := &transfer.Dashboard{
		TotalAccounts:      len(accounts),
		TotalPosts:         len(posts),
		PlatformBreakdown:  make(map[string]*transfer.PlatformBreakdown),
		RecentPosts:        []transfer.PostSummary{},
		TopPerformingPosts: []transfer.PostSummary{},
		AccountStatus:      make([]transfer.AccountStatus, 0, len(accounts)),
		PerformanceTrends:  []transfer.TrendPoint{},
	}

	for _, acct := range accounts {
		dash.TotalFollowers += acct.Followers
		breakdown := s.breakdownFor(dash, acct.Platform)
		breakdown.Accounts++

		dash.AccountStatus = append(dash.AccountStatus, transfer.AccountStatus{
			ID:             acct.ID,
			Platform:       acct.Platform,
			AccountName:    acct.AccountName,
			AccountType:    acct.AccountType,
			IsActive:       acct.IsActive,
			IsVerified:     acct.IsVerified,
			Followers:      acct.Followers,
			LastSync:       acct.LastSync,
			ProfilePicture: acct.ProfilePicture,
		})
	}

	var rateSum float64
	var rated int
	for _, post := range posts {
		dash.TotalReach += post.Analytics.Reach
		dash.TotalImpressions += post.Analytics.Impressions
		dash.TotalEngagement += post.Analytics.Engagement
		dash.TotalLikes += post.Analytics.Likes
		dash.TotalComments += post.Analytics.Comments
		dash.TotalShares += post.Analytics.Shares

		if post.Performance.EngagementRate > 0 {
			rateSum += post.Performance.EngagementRate
			rated++
		}

		breakdown := s.breakdownFor(dash, post.Platform)
		breakdown.Posts++
		breakdown.Reach += post.Analytics.Reach
		breakdown.Impressions += post.Analytics.Impressions
		breakdown.Engagement += post.Analytics.Engagement
		breakdown.Likes += post.Analytics.Likes
		breakdown.Comments += post.Analytics.Comments
		breakdown.Shares += post.Analytics.Shares
	}
	if rated > 0 {
		dash.AverageEngagementRate = round2(rateSum / float64(rated))
	}
	for _, breakdown := range dash.PlatformBreakdown {
		if breakdown.Reach > 0 {
			breakdown.EngagementRate = round2(float64(breakdown.Engagement) / float64(breakdown.Reach) * 100)
		}
	}

	dash.RecentPosts = summarize(posts, dashboardRecentPosts)

	byEngagement := make([]*models.Post, len(posts))
	copy(byEngagement, posts)
	sort.SliceStable(byEngagement, func(i, j int) bool {
		return byEngagement[i].Analytics.Engagement > byEngagement[j].Analytics.Engagement
	})
	dash.TopPerformingPosts = summarize(byEngagement, dashboardTopPosts)

	dash.PerformanceTrends = trends(posts, time.Now())

	return dash, nil
}

func (s *dashboardService) breakdownFor(dash *transfer.Dashboard, platformName string) *transfer.PlatformBreakdown {
	breakdown, ok := dash.PlatformBreakdown[platformName]
	if !ok {
		breakdown = &transfer.PlatformBreakdown{}
		dash.PlatformBreakdown[platformName] = breakdown
	}
	return breakdown
}

func summarize(posts []*models.Post, limit int) []transfer.PostSummary {
	if len(posts) < limit {
		limit = len(posts)
	}
	out := make([]transfer.PostSummary, 0, limit)
	for _, post := range posts[:limit] {
		out = append(out, transfer.PostSummary{
			ID:             post.ID,
			Description:    post.Description,
			Platform:       post.Platform,
			Date:           post.PostDate,
			Reach:          post.Analytics.Reach,
			Engagement:     post.Analytics.Engagement,
			EngagementRate: post.Performance.EngagementRate,
			Image:          post.Image,
		})
	}
	return out
}

// trends buckets the last week of posts by calendar day, oldest first.
func trends(posts []*models.Post, now time.Time) []transfer.TrendPoint {
	points := make([]transfer.TrendPoint, dashboardTrendDays)
	index := make(map[string]*transfer.TrendPoint, dashboardTrendDays)

	for i := 0; i < dashboardTrendDays; i++ {
		day := now.AddDate(0, 0, i-dashboardTrendDays+1).Format("2006-01-02")
		points[i] = transfer.TrendPoint{Date: day}
		index[day] = &points[i]
	}

	for _, post := range posts {
		day := post.PostDate.Format("2006-01-02")
		point, ok := index[day]
		if !ok {
			continue
		}
		point.Posts++
		point.Reach += post.Analytics.Reach
		point.Engagement += post.Analytics.Engagement
	}

	return points
}
