package service

import (
	"time"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/pkg/utils"
)

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

// decryptAccountTokens returns a copy of the account with every stored
// credential decrypted, ready to hand to a platform adapter.
func decryptAccountTokens(secret []byte, acct *models.SocialAccount) (*models.SocialAccount, error) {
	out := *acct

	var err error
	if acct.AccessToken != "" {
		if out.AccessToken, err = utils.Decrypt(acct.AccessToken, secret); err != nil {
			return nil, err
		}
	}
	if acct.RefreshToken != "" {
		if out.RefreshToken, err = utils.Decrypt(acct.RefreshToken, secret); err != nil {
			return nil, err
		}
	}
	if acct.PageAccessToken != "" {
		if out.PageAccessToken, err = utils.Decrypt(acct.PageAccessToken, secret); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// encryptAccountTokens is the write-side counterpart of
// decryptAccountTokens, applied before an account row is stored.
func encryptAccountTokens(secret []byte, acct *models.SocialAccount) error {
	var err error
	if acct.AccessToken != "" {
		if acct.AccessToken, err = utils.Encrypt([]byte(acct.AccessToken), secret); err != nil {
			return err
		}
	}
	if acct.RefreshToken != "" {
		if acct.RefreshToken, err = utils.Encrypt([]byte(acct.RefreshToken), secret); err != nil {
			return err
		}
	}
	if acct.PageAccessToken != "" {
		if acct.PageAccessToken, err = utils.Encrypt([]byte(acct.PageAccessToken), secret); err != nil {
			return err
		}
	}
	return nil
}
