package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reactioncam/rcam-go/internal/errs"
	"github.com/reactioncam/rcam-go/internal/model"
)

// WalletKind selects which of an account's wallets to create.
type WalletKind string

const (
	WalletKindRegular WalletKind = "regular"
	WalletKindBonus   WalletKind = "bonus"
)

// bonusWalletSeed is the balance a bonus pot starts with. The seed counts as
// received so the balance invariant holds from birth.
const bonusWalletSeed = 10

// WalletRepo owns all currency movement. Every transfer is a pair of
// hash-chained transaction rows written with both wallet updates in one
// database transaction, with an explicit conservation check before commit.
type WalletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// TransferResult reports a committed transfer. Paid may be lower than the
// requested amount for partial transfers.
type TransferResult struct {
	Src    *model.Wallet
	Dst    *model.Wallet
	Debit  *model.WalletTransaction
	Credit *model.WalletTransaction
	Paid   int64
}

const walletColumns = `id, account_id, balance, total_received, total_sent, last_tx, comment, created, updated`

func scanWallet(row pgx.Row) (*model.Wallet, error) {
	var w model.Wallet
	err := row.Scan(&w.ID, &w.AccountID, &w.Balance, &w.TotalReceived, &w.TotalSent,
		&w.LastTx, &w.Comment, &w.Created, &w.Updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("wallet: %w", errs.ErrNotFound)
		}
		return nil, err
	}
	w.LastTx = trimChainHash(w.LastTx)
	return &w, nil
}

// Get returns a wallet by id.
func (r *WalletRepo) Get(ctx context.Context, walletID string) (*model.Wallet, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, walletID)
	return scanWallet(row)
}

// CreateForAccount creates the account's regular or bonus wallet and installs
// the reference on the account row in the same transaction. Idempotent: if
// the wallet row already exists but the account does not point at it yet, the
// pointer is repaired instead of failing.
func (r *WalletRepo) CreateForAccount(ctx context.Context, accountID int64, kind WalletKind) (*model.Wallet, error) {
	var walletID, comment, column string
	var seed int64
	switch kind {
	case WalletKindRegular:
		walletID = model.RegularWalletID(accountID)
		comment = fmt.Sprintf("Wallet for %d", accountID)
		column = "wallet_id"
	case WalletKindBonus:
		walletID = model.BonusWalletID(accountID)
		comment = fmt.Sprintf("Bonus pot for %d", accountID)
		column = "bonus_wallet_id"
		seed = bonusWalletSeed
	default:
		return nil, errs.InvalidArgumentf("unknown wallet kind %q", kind)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var existing *string
	err = tx.QueryRow(ctx, `SELECT `+column+` FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&existing)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", accountID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.InvalidArgumentf("account already has a %s wallet", kind)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO wallets (id, account_id, balance, total_received, comment)
		VALUES ($1, $2, $3, $3, $4)
		ON CONFLICT (id) DO UPDATE SET updated = NOW()
		RETURNING `+walletColumns, walletID, accountID, seed, comment)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE accounts SET `+column+` = $1 WHERE id = $2`, walletID, accountID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return wallet, nil
}

// CreateInternal mints a named pool wallet holding initialBalance. This is
// the only way new currency enters the system; the mint is recorded as
// total_received with no matching debit anywhere.
func (r *WalletRepo) CreateInternal(ctx context.Context, ownerID int64, walletID string, initialBalance int64, comment string) (*model.Wallet, error) {
	if walletID == "" {
		return nil, errs.InvalidArgumentf("wallet id must be a non-empty string")
	}
	if initialBalance < 0 {
		return nil, errs.InvalidArgumentf("initial balance must be non-negative")
	}
	if comment == "" {
		return nil, errs.InvalidArgumentf("comment must be provided")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO wallets (id, account_id, balance, total_received, comment)
		VALUES ($1, $2, $3, $3, $4)
		RETURNING `+walletColumns, walletID, ownerID, initialBalance, comment)
	wallet, err := scanWallet(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("wallet id %q: %w", walletID, errs.ErrAlreadyExists)
		}
		return nil, err
	}
	return wallet, nil
}

// Transfer moves amount from src to dst in two phases. The plan phase reads
// both wallets without locks and validates the intent; the commit phase
// re-reads them under lock and aborts with ErrWalletChanged if either chain
// head moved since the plan, so the caller can re-plan and retry.
//
// With requireFullAmount=false a short source pays out its whole balance and
// the result reports the partial amount; an empty source is always
// ErrInsufficientFunds.
func (r *WalletRepo) Transfer(ctx context.Context, ownerID int64, srcID, dstID string, amount int64, comment string, requireFullAmount bool) (*TransferResult, error) {
	if amount < 1 {
		return nil, errs.InvalidArgumentf("amount must be a positive integer")
	}
	if comment == "" {
		return nil, errs.InvalidArgumentf("comment must be provided")
	}
	if srcID == dstID {
		return nil, errs.InvalidArgumentf("do not transfer to same wallet")
	}

	// Plan phase.
	src, err := r.Get(ctx, srcID)
	if err != nil {
		return nil, err
	}
	dst, err := r.Get(ctx, dstID)
	if err != nil {
		return nil, err
	}
	if src.AccountID != ownerID {
		return nil, errs.Forbiddenf("source wallet is not owned by account %d", ownerID)
	}
	if (requireFullAmount && src.Balance < amount) || src.Balance == 0 {
		return nil, errs.ErrInsufficientFunds
	}

	// Commit phase.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	srcLocked, dstLocked, err := lockWalletPair(ctx, tx, srcID, dstID)
	if err != nil {
		return nil, err
	}
	if srcLocked.LastTx != src.LastTx || dstLocked.LastTx != dst.LastTx {
		return nil, errs.ErrWalletChanged
	}

	result, err := executeTransfer(ctx, tx, srcLocked, dstLocked, amount, comment, requireFullAmount)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// TransferInTx performs a transfer inside an already-open transaction, used
// when the transfer must commit atomically with other writes (the reward
// step). The row locks taken here serialize against concurrent transfers, so
// no separate plan phase is needed.
func (r *WalletRepo) TransferInTx(ctx context.Context, tx pgx.Tx, ownerID int64, srcID, dstID string, amount int64, comment string, requireFullAmount bool) (*TransferResult, error) {
	if amount < 1 {
		return nil, errs.InvalidArgumentf("amount must be a positive integer")
	}
	if srcID == dstID {
		return nil, errs.InvalidArgumentf("do not transfer to same wallet")
	}
	src, dst, err := lockWalletPair(ctx, tx, srcID, dstID)
	if err != nil {
		return nil, err
	}
	if src.AccountID != ownerID {
		return nil, errs.Forbiddenf("source wallet is not owned by account %d", ownerID)
	}
	return executeTransfer(ctx, tx, src, dst, amount, comment, requireFullAmount)
}

// CreateAndTransfer mints an internal wallet holding amount and immediately
// drains it into dst. Deriving newWalletID from an immutable receipt
// identifier makes the composite idempotent: a replay fails the mint with
// ErrAlreadyExists before any currency moves twice.
func (r *WalletRepo) CreateAndTransfer(ctx context.Context, ownerID int64, dstID, newWalletID string, amount int64, comment string) (*model.Wallet, error) {
	if _, err := r.CreateInternal(ctx, ownerID, newWalletID, amount, comment); err != nil {
		return nil, err
	}
	result, err := r.Transfer(ctx, ownerID, newWalletID, dstID, amount, comment, true)
	if err != nil {
		return nil, err
	}
	return result.Dst, nil
}

// GetTransaction looks up a transaction by wallet and id. Callers recovering
// from an unknown transfer outcome probe for the deterministic hash here.
func (r *WalletRepo) GetTransaction(ctx context.Context, walletID, txID string) (*model.WalletTransaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT wallet_id, id, delta, old_balance, new_balance, sender_id, receiver_id,
		       other_wallet_id, other_tx, comment, created
		FROM wallet_transactions
		WHERE wallet_id = $1 AND id = $2`, walletID, txID)
	return scanWalletTx(row)
}

// ListTransactions returns a wallet's transactions, newest first.
func (r *WalletRepo) ListTransactions(ctx context.Context, walletID string, limit int) ([]model.WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT wallet_id, id, delta, old_balance, new_balance, sender_id, receiver_id,
		       other_wallet_id, other_tx, comment, created
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created DESC
		LIMIT $2`, walletID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []model.WalletTransaction
	for rows.Next() {
		t, err := scanWalletTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func scanWalletTx(row pgx.Row) (*model.WalletTransaction, error) {
	var t model.WalletTransaction
	err := row.Scan(&t.WalletID, &t.ID, &t.Delta, &t.OldBalance, &t.NewBalance,
		&t.SenderID, &t.ReceiverID, &t.OtherWalletID, &t.OtherTx, &t.Comment, &t.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction: %w", errs.ErrNotFound)
		}
		return nil, err
	}
	t.ID = trimChainHash(t.ID)
	t.OtherTx = trimChainHash(t.OtherTx)
	return &t, nil
}

// lockWalletPair reads both wallets FOR UPDATE in id order so concurrent
// transfers over the same pair cannot deadlock.
func lockWalletPair(ctx context.Context, tx pgx.Tx, srcID, dstID string) (src, dst *model.Wallet, err error) {
	first, second := srcID, dstID
	if second < first {
		first, second = second, first
	}
	byID := make(map[string]*model.Wallet, 2)
	for _, id := range []string{first, second} {
		w, err := scanWallet(tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return nil, nil, err
		}
		byID[id] = w
	}
	return byID[srcID], byID[dstID], nil
}

// executeTransfer writes the debit/credit pair and both wallet updates. The
// wallets must already be locked by the surrounding transaction.
func executeTransfer(ctx context.Context, tx pgx.Tx, src, dst *model.Wallet, amount int64, comment string, requireFullAmount bool) (*TransferResult, error) {
	paid := amount
	if !requireFullAmount && src.Balance < amount {
		paid = src.Balance
	}
	if paid == 0 || src.Balance < paid {
		return nil, errs.ErrInsufficientFunds
	}

	debitID := src.NextTxID(src.AccountID, dst.AccountID, -paid)
	creditID := dst.NextTxID(src.AccountID, dst.AccountID, paid)

	debit := &model.WalletTransaction{
		WalletID:      src.ID,
		ID:            debitID,
		Delta:         -paid,
		OldBalance:    src.Balance,
		NewBalance:    src.Balance - paid,
		SenderID:      src.AccountID,
		ReceiverID:    dst.AccountID,
		OtherWalletID: dst.ID,
		OtherTx:       creditID,
		Comment:       comment,
	}
	credit := &model.WalletTransaction{
		WalletID:      dst.ID,
		ID:            creditID,
		Delta:         paid,
		OldBalance:    dst.Balance,
		NewBalance:    dst.Balance + paid,
		SenderID:      src.AccountID,
		ReceiverID:    dst.AccountID,
		OtherWalletID: src.ID,
		OtherTx:       debitID,
		Comment:       comment,
	}

	srcBefore, dstBefore := src.Balance, dst.Balance

	for _, t := range []*model.WalletTransaction{debit, credit} {
		_, err := tx.Exec(ctx, `
			INSERT INTO wallet_transactions
				(wallet_id, id, delta, old_balance, new_balance, sender_id, receiver_id,
				 other_wallet_id, other_tx, comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.WalletID, t.ID, t.Delta, t.OldBalance, t.NewBalance,
			t.SenderID, t.ReceiverID, t.OtherWalletID, t.OtherTx, t.Comment)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// The same intent already committed.
				return nil, errs.ErrWalletChanged
			}
			return nil, err
		}
	}

	src.Balance -= paid
	src.TotalSent += paid
	src.LastTx = debitID
	dst.Balance += paid
	dst.TotalReceived += paid
	dst.LastTx = creditID

	for _, w := range []*model.Wallet{src, dst} {
		_, err := tx.Exec(ctx, `
			UPDATE wallets
			SET balance = $1, total_received = $2, total_sent = $3, last_tx = $4, updated = NOW()
			WHERE id = $5`,
			w.Balance, w.TotalReceived, w.TotalSent, w.LastTx, w.ID)
		if err != nil {
			return nil, err
		}
	}

	// Conservation and accounting checks; any violation aborts the
	// transaction before commit.
	if srcBefore+dstBefore != src.Balance+dst.Balance {
		return nil, fmt.Errorf("transfer %s->%s: balance mismatch", src.ID, dst.ID)
	}
	if err := src.CheckInvariants(); err != nil {
		return nil, err
	}
	if err := dst.CheckInvariants(); err != nil {
		return nil, err
	}

	return &TransferResult{Src: src, Dst: dst, Debit: debit, Credit: credit, Paid: paid}, nil
}

// trimChainHash strips the padding Postgres CHAR(64) columns add.
func trimChainHash(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
