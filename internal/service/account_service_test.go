package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/platform"
	"github.com/reachway/reachway/internal/transfer"
	"github.com/reachway/reachway/pkg/utils"
)

func newAccountServiceUnderTest(ar *fakeAccountRepo, registry *platform.Registry) AccountService {
	if registry == nil {
		registry = platform.NewRegistry()
	}
	return NewAccountService(cfg.Config{SecretKey: testSecret}, ar, registry)
}

func TestAccountCreateValidation(t *testing.T) {
	svc := newAccountServiceUnderTest(&fakeAccountRepo{}, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		ac   *transfer.AccountCreation
	}{
		{"nil creation", nil},
		{"missing user", &transfer.AccountCreation{Platform: models.PlatformFacebook}},
		{"unsupported platform", &transfer.AccountCreation{UserID: 1, Platform: "myspace", AccountID: "a", AccountName: "b"}},
		{"missing account id", &transfer.AccountCreation{UserID: 1, Platform: models.PlatformFacebook, AccountName: "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.ac)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestAccountCreateEncryptsTokens(t *testing.T) {
	ar := &fakeAccountRepo{}
	svc := newAccountServiceUnderTest(ar, nil)

	id, err := svc.Create(context.Background(), &transfer.AccountCreation{
		UserID:      1,
		Platform:    models.PlatformFacebook,
		AccountID:   "page-1",
		AccountName: "Test Page",
		AccessToken: "plain-token",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	stored := ar.accounts[id]
	require.NotNil(t, stored)
	assert.NotEqual(t, "plain-token", stored.AccessToken)
	assert.True(t, stored.IsActive)

	decrypted, err := utils.Decrypt(stored.AccessToken, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "plain-token", decrypted)
}

func TestAccountCreateRejectsDuplicate(t *testing.T) {
	ar := &fakeAccountRepo{}
	svc := newAccountServiceUnderTest(ar, nil)
	ctx := context.Background()

	ac := &transfer.AccountCreation{
		UserID:      1,
		Platform:    models.PlatformFacebook,
		AccountID:   "page-1",
		AccountName: "Test Page",
	}
	_, err := svc.Create(ctx, ac)
	require.NoError(t, err)

	_, err = svc.Create(ctx, ac)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestAccountUpdateAppliesNonEmptyFields(t *testing.T) {
	acct := activeAccount(t, 7, 1, models.PlatformReddit)
	acct.RedditSubreddit = "golang"
	ar := &fakeAccountRepo{accounts: map[int64]*models.SocialAccount{7: acct}}
	svc := newAccountServiceUnderTest(ar, nil)

	err := svc.Update(context.Background(), 1, 7, &transfer.AccountUpdate{
		RedditSubreddit: "programming",
		AccessToken:     "fresh-token",
	})
	require.NoError(t, err)

	updated := ar.accounts[7]
	assert.Equal(t, "programming", updated.RedditSubreddit)
	assert.Equal(t, "Test Account", updated.AccountName, "untouched field keeps its value")

	decrypted, err := utils.Decrypt(updated.AccessToken, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", decrypted)
}

func TestAccountListSanitizesTokens(t *testing.T) {
	ar := &fakeAccountRepo{accounts: map[int64]*models.SocialAccount{
		7: activeAccount(t, 7, 1, models.PlatformFacebook),
	}}
	svc := newAccountServiceUnderTest(ar, nil)

	accounts, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Empty(t, accounts[0].AccessToken)
	assert.Empty(t, accounts[0].RefreshToken)
	assert.Empty(t, accounts[0].PageAccessToken)
	assert.Equal(t, int64(7), accounts[0].ID)
}

func TestAccountInfoNotFound(t *testing.T) {
	svc := newAccountServiceUnderTest(&fakeAccountRepo{}, nil)

	_, err := svc.Info(context.Background(), 1, 99)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAccountTestConnectionDispatchesToAdapter(t *testing.T) {
	registry := platform.NewRegistry()
	pub := &stubPublisher{result: &platform.PublishResult{Success: true}}
	registry.Register(models.PlatformFacebook, pub)

	ar := &fakeAccountRepo{accounts: map[int64]*models.SocialAccount{
		7: activeAccount(t, 7, 1, models.PlatformFacebook),
	}}
	svc := newAccountServiceUnderTest(ar, registry)

	result, err := svc.TestConnection(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, result.Success)
}
