package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/transfer"
)

func TestApplyInsightsReplacesWholesale(t *testing.T) {
	post := &models.Post{Platform: models.PlatformFacebook}
	post.Analytics = models.Analytics{Reach: 999, Likes: 999}

	set := &transfer.InsightSet{
		Reach:       200,
		Impressions: 400,
		Likes:       20,
		Comments:    5,
		Shares:      5,
		Clicks:      10,
		Raw:         map[string]int64{"post_impressions": 400},
	}

	applyInsights(post, set)

	assert.Equal(t, int64(200), post.Analytics.Reach)
	assert.Equal(t, int64(20), post.Analytics.Likes)
	assert.Equal(t, int64(30), post.Analytics.Engagement)
	assert.Equal(t, int64(400), post.PlatformAnalytics[models.PlatformFacebook]["post_impressions"])

	// A second application with the same numbers changes nothing but the
	// timestamp.
	before := post.Analytics
	applyInsights(post, set)
	assert.Equal(t, before.Reach, post.Analytics.Reach)
	assert.Equal(t, before.Engagement, post.Analytics.Engagement)
}

func TestApplyInsightsZeroDenominators(t *testing.T) {
	post := &models.Post{Platform: models.PlatformReddit}

	applyInsights(post, &transfer.InsightSet{
		Likes: 10, Comments: 2,
		Raw: map[string]int64{},
	})

	assert.Zero(t, post.Performance.EngagementRate)
	assert.Zero(t, post.Performance.ClickThroughRate)
	assert.Zero(t, post.Performance.ReachRate)
	assert.False(t, post.Performance.EngagementRate != post.Performance.EngagementRate, "rate must not be NaN")
}

func TestApplyInsightsRates(t *testing.T) {
	post := &models.Post{Platform: models.PlatformFacebook}

	applyInsights(post, &transfer.InsightSet{
		Reach:       300,
		Impressions: 900,
		Engagement:  100,
		Clicks:      30,
		Raw:         map[string]int64{},
	})

	assert.InDelta(t, 33.33, post.Performance.EngagementRate, 0.001)
	assert.InDelta(t, 3.33, post.Performance.ClickThroughRate, 0.001)
	assert.InDelta(t, 33.33, post.Performance.ReachRate, 0.001)
}

func TestPlaceholderInsights(t *testing.T) {
	for i := 0; i < 50; i++ {
		set := placeholderInsights(models.PlatformLinkedin)
		assert.GreaterOrEqual(t, set.Reach, int64(500))
		assert.GreaterOrEqual(t, set.Impressions, set.Reach)
		assert.Zero(t, set.Saves)
	}

	set := placeholderInsights(models.PlatformInstagram)
	assert.Contains(t, set.Raw, "saves")
}

type analyticsPostRepo struct {
	repository.PostRepository
	posts   map[int64]*models.Post
	updated []*models.Post
}

func (f *analyticsPostRepo) GetByUserAndID(ctx context.Context, userID, id int64) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return p, nil
}

func (f *analyticsPostRepo) ListPostedByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID == userID && p.Status == models.PostStatusPosted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *analyticsPostRepo) UpdateAnalytics(ctx context.Context, p *models.Post) error {
	f.updated = append(f.updated, p)
	return nil
}

func TestUpdatePostAnalyticsRecomputesRates(t *testing.T) {
	posts := &analyticsPostRepo{posts: map[int64]*models.Post{
		1: {
			ID: 1, UserID: 7, Platform: models.PlatformFacebook,
			Status: models.PostStatusPosted, SocialMediaPostID: "fb-1",
			PlatformAnalytics: map[string]map[string]int64{
				models.PlatformFacebook: {"post_impressions": 400},
			},
		},
	}}
	svc := NewAnalyticsService(cfg.Config{SecretKey: testSecret}, &fakeAccountRepo{}, posts, platform.NewRegistry())

	post, err := svc.UpdatePostAnalytics(context.Background(), 7, 1, &models.Analytics{
		Reach:       200,
		Impressions: 400,
		Likes:       20,
		Comments:    5,
		Shares:      5,
		Clicks:      10,
	})

	require.NoError(t, err)
	require.Len(t, posts.updated, 1)
	assert.Equal(t, int64(200), post.Analytics.Reach)
	assert.Equal(t, int64(30), post.Analytics.Engagement)
	assert.InDelta(t, 15.0, post.Performance.EngagementRate, 0.001)
	assert.InDelta(t, 2.5, post.Performance.ClickThroughRate, 0.001)
	// A manual update carries no raw metrics, the synced breakdown stays.
	assert.Equal(t, int64(400), post.PlatformAnalytics[models.PlatformFacebook]["post_impressions"])

	_, err = svc.UpdatePostAnalytics(context.Background(), 7, 404, &models.Analytics{Reach: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncPostAnalyticsUnpublishedPost(t *testing.T) {
	posts := &analyticsPostRepo{posts: map[int64]*models.Post{
		1: {ID: 1, UserID: 7, Platform: models.PlatformReddit, Status: models.PostStatusScheduled},
	}}
	svc := NewAnalyticsService(cfg.Config{SecretKey: testSecret}, &fakeAccountRepo{}, posts, platform.NewRegistry())

	_, err := svc.SyncPostAnalytics(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SyncPostAnalytics(context.Background(), 7, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncAllPostsAnalyticsPlaceholders(t *testing.T) {
	posts := &analyticsPostRepo{posts: map[int64]*models.Post{
		1: {ID: 1, UserID: 7, Platform: models.PlatformReddit, Status: models.PostStatusPosted, SocialMediaPostID: "t3_a"},
		2: {ID: 2, UserID: 7, Platform: models.PlatformLinkedin, Status: models.PostStatusPosted, SocialMediaPostID: "urn:li:share:1"},
	}}
	// Empty registry: every platform falls back to placeholder numbers.
	svc := NewAnalyticsService(cfg.Config{SecretKey: testSecret}, &fakeAccountRepo{}, posts, platform.NewRegistry())

	report, err := svc.SyncAllPostsAnalytics(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 2, report.SyncedCount)
	assert.Zero(t, report.ErrorCount)
	assert.Len(t, posts.updated, 2)
	for _, p := range posts.updated {
		assert.Positive(t, p.Analytics.Reach)
		assert.False(t, p.Analytics.LastUpdated.IsZero())
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, round2(33.3333))
	assert.Equal(t, 66.67, round2(66.6666))
	assert.Equal(t, 0.0, round2(0))
}
