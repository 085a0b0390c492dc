package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/estudiofit/studio-booking/internal/model"
	"github.com/estudiofit/studio-booking/internal/utils"
)

// UserRepo provides CRUD access to the users table.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The password is hashed
// with bcrypt before storage.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, role string, cost int) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		email, hash, fullName, role).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrEmailExists
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByEmail returns the user with the given email address.
// sql.ErrNoRows is returned when no such user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, full_name, role, is_active, created_at, updated_at
		 FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user with the given ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, full_name, role, is_active, created_at, updated_at
		 FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListMembers returns all active member accounts ordered by name.
func (r *UserRepo) ListMembers(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, email, password_hash, full_name, role, is_active, created_at, updated_at
		 FROM users WHERE role = $1 AND is_active
		 ORDER BY full_name, id`,
		model.RoleMember)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
