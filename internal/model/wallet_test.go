package model

import (
	"testing"

	"github.com/reactioncam/rcam-go/pkg/hash"
)

func TestWalletIDs(t *testing.T) {
	if got := RegularWalletID(42); got != "account_42" {
		t.Errorf("RegularWalletID(42) = %q", got)
	}
	if got := BonusWalletID(42); got != "account_42_bonus" {
		t.Errorf("BonusWalletID(42) = %q", got)
	}
	if got := RewardWalletID(7); got != "request_7_reward" {
		t.Errorf("RewardWalletID(7) = %q", got)
	}
}

func TestWallet_NextTxID(t *testing.T) {
	w := &Wallet{ID: "account_1", Balance: 100, LastTx: hash.ZeroTx}

	first := w.NextTxID(1, 2, -50)
	if first != hash.ChainTx(hash.ZeroTx, 1, 2, 100, -50) {
		t.Error("NextTxID should chain off LastTx and current balance")
	}

	// Advancing the chain changes subsequent ids even for the same intent.
	w.LastTx = first
	w.Balance = 50
	second := w.NextTxID(1, 2, -50)
	if second == first {
		t.Error("chained ids must differ from their predecessor")
	}
}

func TestWallet_CheckInvariants(t *testing.T) {
	w := &Wallet{ID: "account_1", Balance: 30, TotalReceived: 100, TotalSent: 70}
	if err := w.CheckInvariants(); err != nil {
		t.Errorf("consistent wallet: %v", err)
	}

	w.Balance = -1
	if err := w.CheckInvariants(); err == nil {
		t.Error("negative balance should fail")
	}

	w.Balance = 40
	if err := w.CheckInvariants(); err == nil {
		t.Error("balance not matching received-sent should fail")
	}
}
