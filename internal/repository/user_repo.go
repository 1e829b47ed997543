package repository

import (
	"database/sql"
	"fmt"

	"lyricclash/internal/database"
	"lyricclash/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user account
func (r *UserRepository) CreateUser(name, email, role, accessCodeHash string) (*models.User, error) {
	query := "INSERT INTO users (name, email, role, access_code_hash) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, email, role, accessCodeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUserByID(id)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(userID int64) (*models.User, error) {
	query := "SELECT id, name, email, role, access_code_hash, created_at FROM users WHERE id = ?"
	return r.scanUser(r.db.QueryRow(query, userID))
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT id, name, email, role, access_code_hash, created_at FROM users WHERE email = ?"
	return r.scanUser(r.db.QueryRow(query, email))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.AccessCodeHash,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
