package claimrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/database"
)

type repo struct{ db *database.DB }

func NewPostgres(db *database.DB) Store { return &repo{db} }

const columns = `memo, vehicle_id, claimant, amount, block_index, status, created_at, updated_at`

// memos are unsigned on the ledger; they are stored bit-for-bit in a BIGINT.
func scan(row pgx.Row) (*model.ReservationClaim, error) {
	var (
		c      model.ReservationClaim
		memo   int64
		amount int64
		block  *int64
		status string
	)
	if err := row.Scan(&memo, &c.VehicleID, &c.Claimant, &amount, &block, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Memo = uint64(memo)
	c.Amount = uint64(amount)
	c.Status = model.ClaimStatus(status)
	if block != nil {
		b := uint64(*block)
		c.BlockIndex = &b
	}
	return &c, nil
}

func blockParam(b *uint64) *int64 {
	if b == nil {
		return nil
	}
	v := int64(*b)
	return &v
}

func (r *repo) Create(ctx context.Context, c *model.ReservationClaim) error {
	const q = `
INSERT INTO reservation_claims (` + columns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Pool.Exec(ctx, q,
		int64(c.Memo), c.VehicleID, c.Claimant, int64(c.Amount), blockParam(c.BlockIndex),
		string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *repo) Get(ctx context.Context, memo uint64) (*model.ReservationClaim, error) {
	return scan(r.db.Pool.QueryRow(ctx, `SELECT `+columns+` FROM reservation_claims WHERE memo = $1`, int64(memo)))
}

func (r *repo) Update(ctx context.Context, c *model.ReservationClaim) error {
	const q = `
UPDATE reservation_claims
SET block_index = $2, status = $3, updated_at = $4
WHERE memo = $1`
	tag, err := r.db.Pool.Exec(ctx, q, int64(c.Memo), blockParam(c.BlockIndex), string(c.Status), c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) ActiveForVehicle(ctx context.Context, vehicleID string) (*model.ReservationClaim, error) {
	const q = `SELECT ` + columns + ` FROM reservation_claims
WHERE vehicle_id = $1 AND status <> $2
ORDER BY created_at DESC
LIMIT 1`
	return scan(r.db.Pool.QueryRow(ctx, q, vehicleID, string(model.ClaimRefundPending)))
}

func (r *repo) DeleteByVehicle(ctx context.Context, vehicleID string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reservation_claims WHERE vehicle_id = $1 AND status <> $2`,
		vehicleID, string(model.ClaimRefundPending))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repo) Delete(ctx context.Context, memo uint64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reservation_claims WHERE memo = $1`, int64(memo))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) RefundsPending(ctx context.Context) ([]*model.ReservationClaim, error) {
	const q = `SELECT ` + columns + ` FROM reservation_claims
WHERE status = $1
ORDER BY updated_at, memo`
	rows, err := r.db.Pool.Query(ctx, q, string(model.ClaimRefundPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ReservationClaim
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
