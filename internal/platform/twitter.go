package platform

import (
	"context"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/transfer"
)

// Twitter is a placeholder adapter. Accounts can be stored and listed
// but publishing is not wired up yet.
type Twitter struct{}

func NewTwitter() *Twitter {
	return &Twitter{}
}

func (tw *Twitter) Publish(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) *PublishResult {
	return failure("", "Twitter posting not yet implemented")
}

func (tw *Twitter) TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest {
	return &transfer.ConnectionTest{
		Success: false,
		Message: "Twitter posting not yet implemented",
	}
}
