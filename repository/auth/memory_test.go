package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
)

func TestMemory_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewMemory()

	u := &model.User{Email: "a@example.com", Username: "a", Principal: "p1"}
	require.NoError(t, r.Create(ctx, u))
	require.Equal(t, int64(1), u.ID)

	got, err := r.ByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	require.Equal(t, "p1", got.Principal)

	missing, err := r.ByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMemory_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	r := NewMemory()
	require.NoError(t, r.Create(ctx, &model.User{Email: "a@example.com", Username: "a", Principal: "p1"}))

	err := r.Create(ctx, &model.User{Email: "a@example.com", Username: "b", Principal: "p2"})
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	require.Equal(t, pgerrcode.UniqueViolation, pgErr.Code)
	require.Equal(t, "users_email_key", pgErr.ConstraintName)

	err = r.Create(ctx, &model.User{Email: "b@example.com", Username: "a", Principal: "p2"})
	require.True(t, errors.As(err, &pgErr))
	require.Equal(t, "users_username_key", pgErr.ConstraintName)
}
