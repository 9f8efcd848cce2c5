package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/repository"
	"github.com/reachway/reachway/internal/transfer"
	"github.com/reachway/reachway/pkg/utils"
)

const testSecret = "test-secret"

type finalizePostRepo struct {
	repository.PostRepository
	posts    map[int64]*models.Post
	claimed  map[int64]bool
	posted   map[int64]string
	released []int64
}

func newFinalizePostRepo(posts ...*models.Post) *finalizePostRepo {
	f := &finalizePostRepo{
		posts:   make(map[int64]*models.Post),
		claimed: make(map[int64]bool),
		posted:  make(map[int64]string),
	}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *finalizePostRepo) Claim(ctx context.Context, id int64) (bool, error) {
	if _, ok := f.posts[id]; !ok || f.claimed[id] {
		return false, nil
	}
	f.claimed[id] = true
	return true, nil
}

func (f *finalizePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *finalizePostRepo) MarkPosted(ctx context.Context, id int64, socialMediaPostID string) error {
	f.posted[id] = socialMediaPostID
	return nil
}

func (f *finalizePostRepo) ReleaseClaim(ctx context.Context, id int64) error {
	f.released = append(f.released, id)
	f.claimed[id] = false
	return nil
}

type finalizeAccountRepo struct {
	repository.SocialAccountRepository
	accounts map[int64]*models.SocialAccount
}

func (f *finalizeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return f.accounts[id], nil
}

type finalizingStub struct {
	platformPostID string
	err            error
	gotToken       string
	gotMediaID     string
}

func (s *finalizingStub) Publish(ctx context.Context, acct *models.SocialAccount, req *platform.PublishRequest) *platform.PublishResult {
	return &platform.PublishResult{Success: true}
}

func (s *finalizingStub) TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest {
	return &transfer.ConnectionTest{Success: true}
}

func (s *finalizingStub) Finalize(ctx context.Context, acct *models.SocialAccount, mediaID string) (string, error) {
	s.gotToken = acct.AccessToken
	s.gotMediaID = mediaID
	return s.platformPostID, s.err
}

func encryptedToken(t *testing.T, token string) string {
	t.Helper()
	enc, err := utils.Encrypt([]byte(token), []byte(testSecret))
	require.NoError(t, err)
	return enc
}

func finalizeFixture(t *testing.T, stub *finalizingStub) (*Queue, *finalizePostRepo) {
	t.Helper()

	registry := platform.NewRegistry()
	registry.Register(models.PlatformInstagram, stub)

	pr := newFinalizePostRepo(&models.Post{
		ID:        1,
		UserID:    7,
		AccountID: 3,
		Platform:  models.PlatformInstagram,
		Status:    models.PostStatusScheduled,
		MediaID:   "container-1",
	})
	ar := &finalizeAccountRepo{accounts: map[int64]*models.SocialAccount{
		3: {
			ID:          3,
			UserID:      7,
			Platform:    models.PlatformInstagram,
			AccessToken: encryptedToken(t, "ig-token"),
			IsActive:    true,
		},
	}}

	return NewQueue(cfg.Config{SecretKey: testSecret}, pr, ar, registry), pr
}

func TestHandleFinalizePostTask(t *testing.T) {
	stub := &finalizingStub{platformPostID: "ig-post-1"}
	q, pr := finalizeFixture(t, stub)

	task := asynq.NewTask(TaskTypeFinalizePost, []byte(`{"post_id":1}`))
	require.NoError(t, q.HandleFinalizePostTask(context.Background(), task))

	assert.Equal(t, "ig-post-1", pr.posted[1])
	assert.Equal(t, "container-1", stub.gotMediaID)
	assert.Equal(t, "ig-token", stub.gotToken, "finalize sees the decrypted token")
	assert.Empty(t, pr.released)
}

func TestHandleFinalizePostTaskAlreadyClaimed(t *testing.T) {
	stub := &finalizingStub{platformPostID: "ig-post-1"}
	q, pr := finalizeFixture(t, stub)
	pr.claimed[1] = true

	task := asynq.NewTask(TaskTypeFinalizePost, []byte(`{"post_id":1}`))
	require.NoError(t, q.HandleFinalizePostTask(context.Background(), task))

	assert.Empty(t, pr.posted, "claimed post is left alone")
	assert.Empty(t, stub.gotMediaID)
}

func TestFinalizePostReleasesClaimOnFailure(t *testing.T) {
	stub := &finalizingStub{err: errors.New("media not ready")}
	q, pr := finalizeFixture(t, stub)

	task := asynq.NewTask(TaskTypeFinalizePost, []byte(`{"post_id":1}`))
	err := q.HandleFinalizePostTask(context.Background(), task)

	require.Error(t, err)
	assert.Contains(t, pr.released, int64(1))
	assert.Empty(t, pr.posted)
}

func TestFinalizePostWithoutFinalizerMarksPosted(t *testing.T) {
	pr := newFinalizePostRepo(&models.Post{
		ID:                2,
		Platform:          models.PlatformFacebook,
		Status:            models.PostStatusScheduled,
		SocialMediaPostID: "fb-post-9",
	})
	q := NewQueue(cfg.Config{SecretKey: testSecret}, pr, &finalizeAccountRepo{}, platform.NewRegistry())

	post, err := pr.GetByID(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, q.FinalizePost(context.Background(), post))

	assert.Equal(t, "fb-post-9", pr.posted[2])
}
