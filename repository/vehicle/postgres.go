package vehiclerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/database"
)

type repo struct{ db *database.DB }

func NewPostgres(db *database.DB) Store { return &repo{db} }

const columns = `id, name, image_url, model, price, engine_capacity, top_speed, company_name,
	creator, available, reserved, reserved_to, reservation_deadline, owner, created_at, updated_at`

func scan(row pgx.Row) (*model.Vehicle, error) {
	var (
		v     model.Vehicle
		price int64
	)
	err := row.Scan(
		&v.ID, &v.Name, &v.ImageURL, &v.Model, &price, &v.EngineCapacity, &v.TopSpeed, &v.CompanyName,
		&v.Creator, &v.Available, &v.Reserved, &v.ReservedTo, &v.ReservationDeadline, &v.Owner,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Price = uint64(price)
	return &v, nil
}

func (r *repo) Get(ctx context.Context, id string) (*model.Vehicle, error) {
	v, err := scan(r.db.Pool.QueryRow(ctx, `SELECT `+columns+` FROM vehicles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *repo) Put(ctx context.Context, v *model.Vehicle) error {
	const q = `
INSERT INTO vehicles (` + columns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	image_url = EXCLUDED.image_url,
	model = EXCLUDED.model,
	price = EXCLUDED.price,
	engine_capacity = EXCLUDED.engine_capacity,
	top_speed = EXCLUDED.top_speed,
	company_name = EXCLUDED.company_name,
	available = EXCLUDED.available,
	reserved = EXCLUDED.reserved,
	reserved_to = EXCLUDED.reserved_to,
	reservation_deadline = EXCLUDED.reservation_deadline,
	owner = EXCLUDED.owner,
	updated_at = EXCLUDED.updated_at`
	_, err := r.db.Pool.Exec(ctx, q,
		v.ID, v.Name, v.ImageURL, v.Model, int64(v.Price), v.EngineCapacity, v.TopSpeed, v.CompanyName,
		v.Creator, v.Available, v.Reserved, v.ReservedTo, v.ReservationDeadline, v.Owner,
		v.CreatedAt, v.UpdatedAt,
	)
	return err
}

func (r *repo) Remove(ctx context.Context, id string) (*model.Vehicle, error) {
	v, err := scan(r.db.Pool.QueryRow(ctx, `DELETE FROM vehicles WHERE id = $1 RETURNING `+columns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *repo) ListAll(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+columns+` FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Vehicle
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
