package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reactioncam/rcam-go/internal/errs"
	"github.com/reactioncam/rcam-go/internal/model"
)

// EntryRepo stores request entries and runs the reward payout step. It leans
// on WalletRepo for the in-transaction transfer so a payout commits atomically
// with the watermark advance.
type EntryRepo struct {
	pool    *pgxpool.Pool
	wallets *WalletRepo
}

func NewEntryRepo(pool *pgxpool.Pool, wallets *WalletRepo) *EntryRepo {
	return &EntryRepo{pool: pool, wallets: wallets}
}

const entryColumns = `id, request_id, account_id, content_id, status, status_reason,
	reward_earned, youtube_id, youtube_views, created, updated`

func scanEntry(row pgx.Row) (*model.RequestEntry, error) {
	var e model.RequestEntry
	err := row.Scan(&e.ID, &e.RequestID, &e.AccountID, &e.ContentID, &e.Status, &e.StatusReason,
		&e.RewardEarned, &e.YouTubeID, &e.YouTubeViews, &e.Created, &e.Updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request entry: %w", errs.ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

// Get returns the entry for (request, account).
func (r *EntryRepo) Get(ctx context.Context, requestID, accountID int64) (*model.RequestEntry, error) {
	return scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM request_entries WHERE id = $1`,
		model.EntryID(requestID, accountID)))
}

// Create opens a new entry. An account enters a request at most once.
func (r *EntryRepo) Create(ctx context.Context, requestID, accountID int64) (*model.RequestEntry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO request_entries (id, request_id, account_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
		RETURNING `+entryColumns,
		model.EntryID(requestID, accountID), requestID, accountID, model.EntryStatusOpen)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("request entry: %w", errs.ErrAlreadyExists)
		}
		return nil, err
	}
	return e, nil
}

// update locks the entry, applies fn and writes the row back.
func (r *EntryRepo) update(ctx context.Context, tx pgx.Tx, entryID string, fn func(e *model.RequestEntry) error) (*model.RequestEntry, error) {
	e, err := scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM request_entries WHERE id = $1 FOR UPDATE`, entryID))
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE request_entries
		SET content_id = $1, status = $2, status_reason = $3, reward_earned = $4,
		    youtube_id = $5, youtube_views = $6, updated = NOW()
		WHERE id = $7`,
		e.ContentID, e.Status, e.StatusReason, e.RewardEarned, e.YouTubeID, e.YouTubeViews, e.ID)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies fn under a row lock in its own transaction.
func (r *EntryRepo) Update(ctx context.Context, requestID, accountID int64, fn func(e *model.RequestEntry) error) (*model.RequestEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	e, err := r.update(ctx, tx, model.EntryID(requestID, accountID), fn)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// SetContent attaches the entrant's reaction to the entry (or resets it),
// advancing the entry state machine.
func (r *EntryRepo) SetContent(ctx context.Context, pr *model.PublicRequest, accountID int64, content *model.Content, reset bool) (*model.RequestEntry, error) {
	return r.Update(ctx, pr.ID, accountID, func(e *model.RequestEntry) error {
		_, err := e.SetContent(pr, content, reset)
		return err
	})
}

// Review resolves a pending-review entry. Approval also tags the attached
// content "is approved" in the same transaction.
func (r *EntryRepo) Review(ctx context.Context, requestID, accountID int64, approved bool, reason *string) (*model.RequestEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	e, err := r.update(ctx, tx, model.EntryID(requestID, accountID), func(e *model.RequestEntry) error {
		return e.Review(approved, reason)
	})
	if err != nil {
		return nil, err
	}
	if approved && e.ContentID != nil {
		_, err = mutateContent(ctx, tx, *e.ContentID, func(c *model.Content) error {
			c.AddTag(model.TagApproved, true)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Restore sends a resolved entry back to review.
func (r *EntryRepo) Restore(ctx context.Context, requestID, accountID int64) (*model.RequestEntry, error) {
	return r.Update(ctx, requestID, accountID, func(e *model.RequestEntry) error {
		return e.Restore()
	})
}

// Deactivate takes an active entry out of rotation with a reason.
func (r *EntryRepo) Deactivate(ctx context.Context, requestID, accountID int64, reason string) (*model.RequestEntry, error) {
	return r.Update(ctx, requestID, accountID, func(e *model.RequestEntry) error {
		e.Deactivate(reason)
		return nil
	})
}

// ListForRequest returns a request's entries, optionally filtered by status.
func (r *EntryRepo) ListForRequest(ctx context.Context, requestID int64, status string, limit int) ([]model.RequestEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+` FROM request_entries
			WHERE request_id = $1
			ORDER BY created DESC
			LIMIT $2`, requestID, limit)
	} else {
		if !model.ValidEntryStatus(status) {
			return nil, errs.InvalidArgumentf("%q is not a valid entry status", status)
		}
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+` FROM request_entries
			WHERE request_id = $1 AND status = $2
			ORDER BY created DESC
			LIMIT $3`, requestID, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RequestEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListByContent returns the active entries whose attached reaction is the
// given content. Used by the reconciler to fan an observed view delta out.
func (r *EntryRepo) ListByContent(ctx context.Context, contentID int64) ([]model.RequestEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM request_entries
		WHERE content_id = $1 AND status = $2`, contentID, model.EntryStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RequestEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// RewardStep pays the entry for externally observed views it has not been
// paid for yet, capped at capPerTick views per call. The pool pays what it
// can; the watermark and lifetime earnings advance only by what was actually
// paid, so a drained pool resumes paying later without double counting.
// Returns the amount paid (0 when nothing was due or the pool is empty).
func (r *EntryRepo) RewardStep(ctx context.Context, requestID, accountID int64, capPerTick int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	e, err := scanEntry(tx.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM request_entries WHERE id = $1 FOR UPDATE`,
		model.EntryID(requestID, accountID)))
	if err != nil {
		return 0, err
	}
	if e.Status != model.EntryStatusActive || e.ContentID == nil {
		return 0, nil
	}

	var req struct {
		walletID *string
		ownerID  int64
	}
	err = tx.QueryRow(ctx, `SELECT wallet_id, requested_by FROM public_requests WHERE id = $1`, requestID).
		Scan(&req.walletID, &req.ownerID)
	if err != nil {
		return 0, err
	}
	if req.walletID == nil {
		return 0, nil
	}

	var (
		observed *int64
		broken   bool
	)
	err = tx.QueryRow(ctx, `SELECT youtube_views, youtube_broken FROM contents WHERE id = $1`, *e.ContentID).
		Scan(&observed, &broken)
	if err != nil {
		return 0, err
	}
	if broken {
		// The reconciler deactivates entries when it marks the video broken,
		// but that pass can fail partway. Catching it here keeps a broken
		// video from ever being paid again.
		e.Deactivate("The YouTube video could not be loaded")
		_, err = tx.Exec(ctx, `
			UPDATE request_entries
			SET status = $1, status_reason = $2, updated = NOW()
			WHERE id = $3`, e.Status, e.StatusReason, e.ID)
		if err != nil {
			return 0, err
		}
		return 0, tx.Commit(ctx)
	}
	if observed == nil {
		return 0, nil
	}

	var watermark int64
	if e.YouTubeViews != nil {
		watermark = *e.YouTubeViews
	}
	due := *observed - watermark
	if due <= 0 {
		return 0, nil
	}
	if due > capPerTick {
		due = capPerTick
	}

	result, err := r.wallets.TransferInTx(ctx, tx, req.ownerID,
		*req.walletID, model.RegularWalletID(accountID), due,
		fmt.Sprintf("Reward for request %d", requestID), false)
	if errors.Is(err, errs.ErrInsufficientFunds) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	paid := result.Paid
	next := watermark + paid
	_, err = tx.Exec(ctx, `
		UPDATE request_entries
		SET reward_earned = reward_earned + $1, youtube_views = $2, updated = NOW()
		WHERE id = $3`, paid, next, e.ID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return paid, nil
}
