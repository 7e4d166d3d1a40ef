package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/database"
)

// Repo stores accounts. ByEmail returns nil, nil for an unknown email.
type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(email, username, principal, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		u.Email, u.Username, u.Principal, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
        SELECT id, email, username, principal, password_hash, created_at
        FROM users
        WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.Username, &u.Principal, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
