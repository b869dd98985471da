package repository

import (
	"context"
	"database/sql"

	"supperclub/internal/database"
	"supperclub/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT user_id, email, password_hash, first_name, surname, role, tier, is_active, suspended, registered_at, last_logged_in
		FROM users
		WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.UserID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.Surname,
		&user.Role,
		&user.Tier,
		&user.IsActive,
		&user.Suspended,
		&user.RegisteredAt,
		&user.LastLoggedIn,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT user_id, email, password_hash, first_name, surname, role, tier, is_active, suspended, registered_at, last_logged_in
		FROM users
		WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.UserID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.Surname,
		&user.Role,
		&user.Tier,
		&user.IsActive,
		&user.Suspended,
		&user.RegisteredAt,
		&user.LastLoggedIn,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_logged_in = NOW() WHERE user_id = $1`, id)
	return err
}
