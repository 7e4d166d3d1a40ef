package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
)

// memory mirrors the users table, including its unique constraints.
type memory struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]model.User
}

func NewMemory() Repo { return &memory{users: make(map[string]model.User)} }

func (m *memory) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := m.users[email]; ok {
		return uniqueViolation("users_email_key")
	}
	for _, other := range m.users {
		if other.Username == u.Username {
			return uniqueViolation("users_username_key")
		}
		if other.Principal == u.Principal {
			return uniqueViolation("users_principal_key")
		}
	}

	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	m.users[email] = *u
	return nil
}

func (m *memory) ByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint}
}
