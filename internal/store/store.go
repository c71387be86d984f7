// Package store persists user accounts behind a driver-agnostic interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/odens-ab/pricing-cli/internal/model"
)

// ErrUserExists is returned when signup collides with an existing email.
var ErrUserExists = eris.New("store: user already exists")

// ErrUserNotFound is returned when no account matches the given email.
var ErrUserNotFound = eris.New("store: user not found")

// Store defines the persistence interface for user accounts.
type Store interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, email string) (*model.User, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open selects a driver from config. Supported drivers are "sqlite",
// "postgres" and "memory".
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	case "memory":
		return NewMemory(), nil
	}
	return nil, eris.Errorf("store: unknown driver %q", driver)
}
