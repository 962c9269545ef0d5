package model

import (
	"fmt"
	"time"
)

// Account is consumed read-only by the engine; accounts are owned by the
// out-of-scope identity layer. Quality is an operator-assigned integer in 0..4
// that weights the account's ranking contributions.
type Account struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	DisplayName   *string   `json:"display_name,omitempty"`
	Quality       int       `json:"-"`
	FollowerCount int       `json:"follower_count"`
	IsBot         bool      `json:"-"`
	CanPublish    bool      `json:"-"`
	WalletID      *string   `json:"-"`
	BonusWalletID *string   `json:"-"`

	YouTubeReactionViews        int64      `json:"-"`
	YouTubeReactionViewsUpdated *time.Time `json:"-"`

	Created time.Time `json:"created"`
}

// RegularWalletID is the deterministic id of an account's main wallet.
func RegularWalletID(accountID int64) string {
	return fmt.Sprintf("account_%d", accountID)
}

// BonusWalletID is the deterministic id of an account's bonus pot.
func BonusWalletID(accountID int64) string {
	return fmt.Sprintf("account_%d_bonus", accountID)
}

// AccountEvent is an operator-visible audit record ("YouTube Broken Video",
// "YouTube Id Override", ...).
type AccountEvent struct {
	ID         int64             `json:"id"`
	AccountID  int64             `json:"account_id"`
	Name       string            `json:"name"`
	Class      string            `json:"class"`
	Properties map[string]string `json:"properties,omitempty"`
	Created    time.Time         `json:"created"`
}
