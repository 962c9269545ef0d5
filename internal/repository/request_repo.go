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

// RequestRepo stores public requests (reaction bounties).
type RequestRepo struct {
	pool *pgxpool.Pool
}

func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

const requestColumns = `id, content_id, requested_by, tags, closed, wallet_id, sort_index, properties, requested`

func scanRequest(row pgx.Row) (*model.PublicRequest, error) {
	var pr model.PublicRequest
	err := row.Scan(&pr.ID, &pr.ContentID, &pr.RequestedBy, &pr.Tags, &pr.Closed,
		&pr.WalletID, &pr.SortIndex, &pr.Properties, &pr.Requested)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("public request: %w", errs.ErrNotFound)
		}
		return nil, err
	}
	return &pr, nil
}

// Get returns a public request by id.
func (r *RequestRepo) Get(ctx context.Context, id int64) (*model.PublicRequest, error) {
	return scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM public_requests WHERE id = $1`, id))
}

// Create inserts a new request in the pending state.
func (r *RequestRepo) Create(ctx context.Context, pr *model.PublicRequest) (*model.PublicRequest, error) {
	if err := pr.SetState(model.RequestStatePending); err != nil {
		return nil, err
	}
	return scanRequest(r.pool.QueryRow(ctx, `
		INSERT INTO public_requests (content_id, requested_by, tags, closed, sort_index, properties)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+requestColumns,
		pr.ContentID, pr.RequestedBy, pr.Tags, pr.Closed, pr.SortIndex, pr.Properties))
}

// SetState moves the request's lifecycle tag under a row lock.
func (r *RequestRepo) SetState(ctx context.Context, id int64, state string) (*model.PublicRequest, error) {
	return r.update(ctx, id, func(pr *model.PublicRequest) error {
		return pr.SetState(state)
	})
}

// SetClosed flips the closed flag, which blocks new entries and entry
// transitions without touching the lifecycle state.
func (r *RequestRepo) SetClosed(ctx context.Context, id int64, closed bool) (*model.PublicRequest, error) {
	return r.update(ctx, id, func(pr *model.PublicRequest) error {
		pr.Closed = closed
		return nil
	})
}

// AttachWallet installs the reward pool wallet reference. Refuses to replace
// an existing one.
func (r *RequestRepo) AttachWallet(ctx context.Context, id int64, walletID string) (*model.PublicRequest, error) {
	return r.update(ctx, id, func(pr *model.PublicRequest) error {
		if pr.WalletID != nil && *pr.WalletID != walletID {
			return errs.InvalidArgumentf("request already has a reward wallet")
		}
		pr.WalletID = &walletID
		return nil
	})
}

func (r *RequestRepo) update(ctx context.Context, id int64, fn func(pr *model.PublicRequest) error) (*model.PublicRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	pr, err := scanRequest(tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM public_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := fn(pr); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE public_requests
		SET tags = $1, closed = $2, wallet_id = $3, sort_index = $4, properties = $5
		WHERE id = $6`,
		pr.Tags, pr.Closed, pr.WalletID, pr.SortIndex, pr.Properties, pr.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return pr, nil
}

// List returns open approved requests, highest sort index first.
func (r *RequestRepo) List(ctx context.Context, limit int) ([]model.PublicRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM public_requests
		WHERE tags @> ARRAY['approved'] AND NOT closed
		ORDER BY sort_index DESC, requested DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.PublicRequest
	for rows.Next() {
		pr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *pr)
	}
	return requests, rows.Err()
}

// ListByAccount returns an account's own requests in any state.
func (r *RequestRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]model.PublicRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM public_requests
		WHERE requested_by = $1
		ORDER BY requested DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.PublicRequest
	for rows.Next() {
		pr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *pr)
	}
	return requests, rows.Err()
}
