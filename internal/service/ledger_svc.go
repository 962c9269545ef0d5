package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/reactioncam/rcam-go/internal/errs"
	"github.com/reactioncam/rcam-go/internal/model"
	"github.com/reactioncam/rcam-go/internal/repository"
	"github.com/reactioncam/rcam-go/pkg/hash"
)

// transferRetries is how many times a transfer is re-planned after losing a
// chain-head race before the error surfaces to the caller.
const transferRetries = 2

// LedgerService fronts the wallet repository with retry handling and wallet
// provisioning.
type LedgerService struct {
	wallets   *repository.WalletRepo
	accounts  *repository.AccountRepo
	analytics *Analytics
	log       zerolog.Logger
}

func NewLedgerService(wallets *repository.WalletRepo, accounts *repository.AccountRepo,
	analytics *Analytics, log zerolog.Logger) *LedgerService {
	return &LedgerService{wallets: wallets, accounts: accounts, analytics: analytics, log: log}
}

// EnsureWallets provisions the account's regular and bonus wallets if they do
// not exist yet and returns the regular wallet.
func (s *LedgerService) EnsureWallets(ctx context.Context, accountID int64) (*model.Wallet, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.WalletID == nil {
		if _, err := s.wallets.CreateForAccount(ctx, accountID, repository.WalletKindRegular); err != nil &&
			!errors.Is(err, errs.ErrInvalidArgument) {
			return nil, err
		}
	}
	if account.BonusWalletID == nil {
		if _, err := s.wallets.CreateForAccount(ctx, accountID, repository.WalletKindBonus); err != nil &&
			!errors.Is(err, errs.ErrInvalidArgument) {
			return nil, err
		}
	}
	return s.wallets.Get(ctx, model.RegularWalletID(accountID))
}

// History returns the newest transactions on the account's regular wallet.
func (s *LedgerService) History(ctx context.Context, accountID int64, limit int) ([]model.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.wallets.ListTransactions(ctx, model.RegularWalletID(accountID), limit)
}

// Transaction looks up one transaction on the account's regular wallet.
// Clients recovering from an unknown transfer outcome probe here with the
// deterministic chain id.
func (s *LedgerService) Transaction(ctx context.Context, accountID int64, txID string) (*model.WalletTransaction, error) {
	return s.wallets.GetTransaction(ctx, model.RegularWalletID(accountID), txID)
}

// Pay transfers amount from the actor's regular wallet to the recipient's,
// re-planning on chain-head races. The recipient's wallets are provisioned on
// demand so anyone can be paid.
func (s *LedgerService) Pay(ctx context.Context, actorID, recipientID, amount int64, comment string) (*repository.TransferResult, error) {
	if actorID == recipientID {
		return nil, errs.InvalidArgumentf("cannot pay yourself")
	}
	if _, err := s.EnsureWallets(ctx, recipientID); err != nil {
		return nil, err
	}
	result, err := s.transferWithRetry(ctx, actorID,
		model.RegularWalletID(actorID), model.RegularWalletID(recipientID), amount, comment, true)
	if err != nil {
		return nil, err
	}
	s.analytics.WalletPayment(WalletPaymentV1{
		SenderID:   actorID,
		ReceiverID: recipientID,
		Amount:     result.Paid,
		Comment:    comment,
	})
	return result, nil
}

// Credit applies a validated purchase: mints a one-shot wallet derived from
// the receipt identifier and drains it into the account's regular wallet.
// Receipt validation happens upstream; replaying the same receipt fails the
// mint with AlreadyExists before any currency moves twice.
func (s *LedgerService) Credit(ctx context.Context, accountID int64, receiptID string, amount int64, comment string) (*model.Wallet, error) {
	if receiptID == "" {
		return nil, errs.InvalidArgumentf("receipt id is required")
	}
	if amount <= 0 {
		return nil, errs.InvalidArgumentf("amount must be positive")
	}
	if _, err := s.EnsureWallets(ctx, accountID); err != nil {
		return nil, err
	}
	if comment == "" {
		comment = "Purchase"
	}
	walletID := "purchase_" + hash.Fingerprint(receiptID)
	wallet, err := s.wallets.CreateAndTransfer(ctx, accountID,
		model.RegularWalletID(accountID), walletID, amount, comment)
	if err != nil {
		return nil, err
	}
	s.analytics.WalletPayment(WalletPaymentV1{
		ReceiverID: accountID,
		Amount:     amount,
		Comment:    comment,
	})
	return wallet, nil
}

// FundRequest moves amount from the requester's regular wallet into the
// request's reward pool.
func (s *LedgerService) FundRequest(ctx context.Context, requesterID, requestID, amount int64) (*repository.TransferResult, error) {
	return s.transferWithRetry(ctx, requesterID,
		model.RegularWalletID(requesterID), model.RewardWalletID(requestID), amount,
		"Reward pool funding", true)
}

func (s *LedgerService) transferWithRetry(ctx context.Context, ownerID int64, srcID, dstID string, amount int64, comment string, requireFull bool) (*repository.TransferResult, error) {
	var lastErr error
	for attempt := 0; attempt <= transferRetries; attempt++ {
		result, err := s.wallets.Transfer(ctx, ownerID, srcID, dstID, amount, comment, requireFull)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errs.ErrWalletChanged) {
			return nil, err
		}
		lastErr = err
		s.log.Debug().
			Str("src", srcID).
			Str("dst", dstID).
			Int("attempt", attempt+1).
			Msg("transfer lost chain-head race, re-planning")
	}
	return nil, lastErr
}
