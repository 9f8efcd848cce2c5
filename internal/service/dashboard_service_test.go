package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/repository"
)

type dashboardPostRepo struct {
	repository.PostRepository
	posts []*models.Post
}

func (f *dashboardPostRepo) ListPostedByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func postedAt(t *testing.T, id int64, platformName string, date time.Time, engagement, reach int64) *models.Post {
	t.Helper()
	return &models.Post{
		ID:       id,
		UserID:   7,
		Platform: platformName,
		Status:   models.PostStatusPosted,
		PostDate: date,
		Analytics: models.Analytics{
			Reach:       reach,
			Impressions: reach * 2,
			Engagement:  engagement,
			Likes:       engagement,
		},
		Performance: models.Performance{EngagementRate: 10},
	}
}

func TestDashboardAggregatesTotals(t *testing.T) {
	now := time.Now()
	ar := &fakeAccountRepo{accounts: map[int64]*models.SocialAccount{
		1: {ID: 1, UserID: 7, Platform: models.PlatformFacebook, AccountName: "Page", IsActive: true, Followers: 1200},
		2: {ID: 2, UserID: 7, Platform: models.PlatformReddit, AccountName: "u/test", IsActive: true, Followers: 40},
	}}
	pr := &dashboardPostRepo{posts: []*models.Post{
		postedAt(t, 1, models.PlatformFacebook, now, 30, 100),
		postedAt(t, 2, models.PlatformFacebook, now.AddDate(0, 0, -1), 10, 50),
		postedAt(t, 3, models.PlatformReddit, now, 5, 25),
	}}
	svc := NewDashboardService(ar, pr)

	dash, err := svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TotalAccounts)
	assert.Equal(t, 3, dash.TotalPosts)
	assert.Equal(t, int64(1240), dash.TotalFollowers)
	assert.Equal(t, int64(175), dash.TotalReach)
	assert.Equal(t, int64(350), dash.TotalImpressions)
	assert.Equal(t, int64(45), dash.TotalEngagement)
	assert.InDelta(t, 10.0, dash.AverageEngagementRate, 0.001)

	fb := dash.PlatformBreakdown[models.PlatformFacebook]
	require.NotNil(t, fb)
	assert.Equal(t, 1, fb.Accounts)
	assert.Equal(t, 2, fb.Posts)
	assert.Equal(t, int64(150), fb.Reach)
	assert.InDelta(t, 26.67, fb.EngagementRate, 0.001)

	require.Len(t, dash.AccountStatus, 2)
	assert.Len(t, dash.RecentPosts, 3)
}

func TestDashboardTopPostsSortedByEngagement(t *testing.T) {
	now := time.Now()
	pr := &dashboardPostRepo{posts: []*models.Post{
		postedAt(t, 1, models.PlatformFacebook, now, 10, 100),
		postedAt(t, 2, models.PlatformFacebook, now, 90, 100),
		postedAt(t, 3, models.PlatformReddit, now, 40, 100),
	}}
	svc := NewDashboardService(&fakeAccountRepo{}, pr)

	dash, err := svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, dash.TopPerformingPosts, 3)
	assert.Equal(t, int64(2), dash.TopPerformingPosts[0].ID)
	assert.Equal(t, int64(3), dash.TopPerformingPosts[1].ID)
	assert.Equal(t, int64(1), dash.TopPerformingPosts[2].ID)
}

func TestDashboardRejectsMissingUser(t *testing.T) {
	svc := NewDashboardService(&fakeAccountRepo{}, &dashboardPostRepo{})

	_, err := svc.Dashboard(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTrendsBucketsLastSevenDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	posts := []*models.Post{
		postedAt(t, 1, models.PlatformFacebook, now, 10, 100),
		postedAt(t, 2, models.PlatformFacebook, now.AddDate(0, 0, -6), 5, 50),
		postedAt(t, 3, models.PlatformFacebook, now.AddDate(0, 0, -10), 99, 999),
	}

	points := trends(posts, now)
	require.Len(t, points, 7)

	assert.Equal(t, "2025-06-09", points[0].Date)
	assert.Equal(t, 1, points[0].Posts)
	assert.Equal(t, int64(50), points[0].Reach)

	assert.Equal(t, "2025-06-15", points[6].Date)
	assert.Equal(t, 1, points[6].Posts)
	assert.Equal(t, int64(10), points[6].Engagement)

	var total int
	for _, p := range points {
		total += p.Posts
	}
	assert.Equal(t, 2, total, "posts older than the window stay out")
}

func TestSummarizeHonorsLimit(t *testing.T) {
	now := time.Now()
	posts := []*models.Post{
		postedAt(t, 1, models.PlatformFacebook, now, 1, 1),
		postedAt(t, 2, models.PlatformFacebook, now, 2, 2),
		postedAt(t, 3, models.PlatformFacebook, now, 3, 3),
	}

	assert.Len(t, summarize(posts, 2), 2)
	assert.Len(t, summarize(posts, 10), 3)
	assert.Empty(t, summarize(nil, 5))
}
