package model

import (
	"fmt"
	"time"

	"github.com/reactioncam/rcam-go/pkg/hash"
)

// Wallet holds currency for an account. Besides the two per-account kinds
// (regular and bonus) there are named internal pools ("request_<id>_reward",
// "admin_pool", ...) through which new currency enters the system.
//
// Invariant: Balance == TotalReceived - TotalSent, and Balance >= 0.
// LastTx chains the wallet's transactions into a tamper-evident hash chain.
type Wallet struct {
	ID            string    `json:"id"`
	AccountID     int64     `json:"-"`
	Balance       int64     `json:"balance"`
	TotalReceived int64     `json:"-"`
	TotalSent     int64     `json:"-"`
	LastTx        string    `json:"-"`
	Comment       string    `json:"-"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"-"`
}

// WalletTransaction is one leg of a transfer. Legs come in (debit, credit)
// pairs with opposite deltas pointing at each other through OtherTx.
type WalletTransaction struct {
	WalletID      string    `json:"-"`
	ID            string    `json:"id"`
	Delta         int64     `json:"delta"`
	OldBalance    int64     `json:"-"`
	NewBalance    int64     `json:"-"`
	SenderID      int64     `json:"sender_id"`
	ReceiverID    int64     `json:"receiver_id"`
	OtherWalletID string    `json:"-"`
	OtherTx       string    `json:"-"`
	Comment       string    `json:"comment"`
	Created       time.Time `json:"created"`
}

// NextTxID derives the id the next transaction on this wallet would get for
// the given transfer leg.
func (w *Wallet) NextTxID(senderID, receiverID, delta int64) string {
	return hash.ChainTx(w.LastTx, senderID, receiverID, w.Balance, delta)
}

// CheckInvariants verifies the wallet's internal accounting.
func (w *Wallet) CheckInvariants() error {
	if w.Balance < 0 {
		return fmt.Errorf("wallet %s: negative balance %d", w.ID, w.Balance)
	}
	if w.TotalReceived-w.TotalSent != w.Balance {
		return fmt.Errorf("wallet %s: balance %d != received %d - sent %d",
			w.ID, w.Balance, w.TotalReceived, w.TotalSent)
	}
	return nil
}

// RewardWalletID is the deterministic id of a public request's reward pool.
func RewardWalletID(requestID int64) string {
	return fmt.Sprintf("request_%d_reward", requestID)
}
