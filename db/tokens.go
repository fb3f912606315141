package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetToken returns the stored bearer token for a user, or "" when none
// has been issued yet.
func (s *Storage) GetToken(userID int) (string, error) {
	var token string
	err := s.DB.QueryRow("SELECT token FROM auth_tokens WHERE user_id = $1", userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select token: %w", err)
	}
	return token, nil
}

// SaveToken stores a freshly issued token. The first writer wins so a
// concurrent login reuses the same token.
func (s *Storage) SaveToken(userID int, token string) error {
	_, err := s.DB.Exec(
		"INSERT INTO auth_tokens (user_id, token) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING",
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}
