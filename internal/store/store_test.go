package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odens-ab/pricing-cli/internal/model"
)

func testUser(email string) model.User {
	return model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), "memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestOpenSQLite(t *testing.T) {
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	assert.NoError(t, s.Close())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	u := testUser("alice@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, *got)
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("alice@example.com")))
	err := s.CreateUser(ctx, testUser("alice@example.com"))
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemory()
	_, err := s.GetUser(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
