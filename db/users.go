package db

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/backend/models"
)

// CreateUser hashes the password and stores a new user.
func (s *Storage) CreateUser(username, email, password string) (*models.User, error) {
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, Password: string(hash)}
	err = s.DB.QueryRow(
		"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at",
		username, email, string(hash),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername returns nil without error when no such user exists.
func (s *Storage) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRow(
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1",
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

func (s *Storage) GetUserByID(id int) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRow(
		"SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}
