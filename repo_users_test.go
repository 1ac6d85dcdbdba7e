package authgate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-authgate"
)

func TestUsersRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	repos, err := client.Repositories(ctx)
	require.NoError(t, err)
	require.NoError(t, repos.Validate())

	created, err := repos.Users().Create(ctx, authgate.NewUser("user_1", "ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "user_1", created.ID)

	found, err := repos.Users().GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", found.Email)
	assert.False(t, found.IsSubscribed)

	n, err := repos.Users().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUsersRepository_Duplicate(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	repos, err := client.Repositories(ctx)
	require.NoError(t, err)

	_, err = repos.Users().Create(ctx, authgate.NewUser("user_1", "ada@example.com"))
	require.NoError(t, err)

	_, err = repos.Users().Create(ctx, authgate.NewUser("user_1", "other@example.com"))
	assert.ErrorIs(t, err, authgate.ErrUserAlreadyExists)

	found, err := repos.Users().GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", found.Email)
}

func TestUsersRepository_GetByIDNotFound(t *testing.T) {
	client := newTestClient(t)

	repos, err := client.Repositories(context.Background())
	require.NoError(t, err)

	_, err = repos.Users().GetByID(context.Background(), "user_missing")
	assert.ErrorIs(t, err, authgate.ErrUserNotFound)
}

func TestUsersRepository_CreateNil(t *testing.T) {
	client := newTestClient(t)

	repos, err := client.Repositories(context.Background())
	require.NoError(t, err)

	_, err = repos.Users().Create(context.Background(), nil)
	assert.ErrorIs(t, err, authgate.ErrInvalidPayload)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.False(t, authgate.IsDuplicateKeyError(nil))
	assert.False(t, authgate.IsDuplicateKeyError(errors.New("connection refused")))
	assert.True(t, authgate.IsDuplicateKeyError(errors.New("constraint failed: UNIQUE constraint failed: users.id (1555)")))
	assert.True(t, authgate.IsDuplicateKeyError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, authgate.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
}

func TestUserValidate(t *testing.T) {
	assert.NoError(t, authgate.NewUser("user_1", "ada@example.com").Validate())
	assert.Error(t, authgate.NewUser("", "ada@example.com").Validate())
	assert.Error(t, authgate.NewUser("user_1", "").Validate())
	assert.Error(t, authgate.NewUser("user_1", "ada").Validate())
}
