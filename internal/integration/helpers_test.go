package integration

import (
	"context"
	"os"
	"testing"

	"codeleague/internal/domain"
	"codeleague/internal/migrations"
	"codeleague/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// openDB connects to DATABASE_URL and applies the schema, or skips the test.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err, "connect db")
	t.Cleanup(pool.Close)

	_, err = migrations.Apply(context.Background(), pool)
	require.NoError(t, err, "apply migrations")
	return pool
}

// newUser creates a competing user with a unique name.
func newUser(t *testing.T, pool *pgxpool.Pool, prefix string, mutate ...func(*domain.User)) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:    prefix + "-" + uuid.NewString()[:8],
		IsCompeting: true,
		Visibility:  domain.VisibilityEveryone,
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, repository.NewUserRepository(pool).Create(context.Background(), u))
	return u
}

func withCredential(c string) func(*domain.User) {
	return func(u *domain.User) { u.ProviderCredential = c }
}

func befriend(t *testing.T, pool *pgxpool.Pool, a, b int64) {
	t.Helper()
	social := repository.NewSocialRepository(pool)
	require.NoError(t, social.AddFriend(context.Background(), a, b))
	require.NoError(t, social.AddFriend(context.Background(), b, a))
}
