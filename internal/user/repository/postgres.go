package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/user"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ user.Repository = (*PGRepository)(nil)

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (
            id, username, password_hash, full_name, email, role, is_active,
            created_by, created_at, updated_at
        )
        VALUES (
            :id, :username, :password_hash, :full_name, :email, :role, :is_active,
            :created_by, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	return errors.Wrap(err, "user.Create")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "user.FindByID")
	}
	return &u, nil
}

func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `SELECT * FROM users WHERE username = $1 LIMIT 1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "user.FindByUsername")
	}
	return &u, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.DB.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "user.FindAll")
	}
	return users, nil
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET password_hash = :password_hash,
            full_name = :full_name,
            email = :email,
            role = :role,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	return errors.Wrap(err, "user.Update")
}

func (r *PGRepository) IsUsernameUnique(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM users WHERE username = $1`, username)
	if err != nil {
		return false, errors.Wrap(err, "user.IsUsernameUnique")
	}
	return count == 0, nil
}
