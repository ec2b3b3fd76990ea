package repository

import (
	"context"
	"errors"

	"codeleague/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

const userColumns = `id, username, COALESCE(provider_credential, ''), timezone, visibility,
	is_competing, coins, equipped_skin, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.Visibility == "" {
		u.Visibility = domain.VisibilityEveryone
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO users (username, provider_credential, timezone, visibility, is_competing)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		 RETURNING id, coins, created_at`,
		u.Username, u.ProviderCredential, u.Timezone, u.Visibility, u.IsCompeting,
	).Scan(&u.ID, &u.Coins, &u.CreatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListWithCredential returns every user that can be synced, oldest first.
func (r *UserRepository) ListWithCredential(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE provider_credential IS NOT NULL AND provider_credential <> ''
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// ListCompeting returns every user taking part in rankings, with or without a credential.
func (r *UserRepository) ListCompeting(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE is_competing
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// UpdateTimezone stores the IANA zone most recently reported by the provider.
func (r *UserRepository) UpdateTimezone(ctx context.Context, userID int64, tz string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET timezone = $1 WHERE id = $2 AND timezone IS DISTINCT FROM $1`,
		tz, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		_ = r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
		if !exists {
			return ErrUserNotFound
		}
	}
	return nil
}

func (r *UserRepository) UpdateCredential(ctx context.Context, userID int64, credential string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET provider_credential = NULLIF($1, '') WHERE id = $2`,
		credential, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetCoins returns user's coin balance
func (r *UserRepository) GetCoins(ctx context.Context, userID int64) (int64, error) {
	var coins int64
	err := r.db.QueryRow(ctx, `SELECT coins FROM users WHERE id = $1`, userID).Scan(&coins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return coins, err
}

// AddCoinsWithTx changes the balance by delta inside tx. A debit that would go
// negative fails with ErrInsufficientFunds.
func (r *UserRepository) AddCoinsWithTx(ctx context.Context, tx pgx.Tx, userID, delta int64) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET coins = coins + $1 WHERE id = $2 AND coins + $1 >= 0 RETURNING coins`,
		delta, userID,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var exists bool
	_ = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if !exists {
		return 0, ErrUserNotFound
	}
	return 0, ErrInsufficientFunds
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.ProviderCredential,
		&u.Timezone,
		&u.Visibility,
		&u.IsCompeting,
		&u.Coins,
		&u.EquippedSkin,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
