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

// AccountRepo reads accounts owned by the identity layer and appends audit
// events to them. The engine never writes identity fields.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `
	id, username, display_name, quality, follower_count, is_bot, can_publish,
	wallet_id, bonus_wallet_id, youtube_reaction_views, youtube_reaction_views_updated, created`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID, &a.Username, &a.DisplayName, &a.Quality, &a.FollowerCount, &a.IsBot, &a.CanPublish,
		&a.WalletID, &a.BonusWalletID, &a.YouTubeReactionViews, &a.YouTubeReactionViewsUpdated, &a.Created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account: %w", errs.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// Get returns an account by id.
func (r *AccountRepo) Get(ctx context.Context, id int64) (*model.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// GetByUsername returns an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
}

// AddEvent appends an audit event to the account.
func (r *AccountRepo) AddEvent(ctx context.Context, accountID int64, name, class string, properties map[string]string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO account_events (account_id, name, class, properties)
		VALUES ($1, $2, $3, $4)`, accountID, name, class, properties)
	return err
}

// ListEvents returns the account's newest audit events.
func (r *AccountRepo) ListEvents(ctx context.Context, accountID int64, limit int) ([]model.AccountEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, name, class, properties, created
		FROM account_events
		WHERE account_id = $1
		ORDER BY created DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.AccountEvent
	for rows.Next() {
		var e model.AccountEvent
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Name, &e.Class, &e.Properties, &e.Created); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
