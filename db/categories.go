package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fintrack/backend/models"
)

func (s *Storage) CreateCategory(userID int, name, description string) (*models.Category, error) {
	category := models.Category{UserID: userID, Name: name, Description: description}
	err := s.DB.QueryRow(
		`INSERT INTO categories (user_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		userID, name, description,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &category, nil
}

// GetCategories lists the user's categories ordered by name.
func (s *Storage) GetCategories(userID int) ([]models.Category, error) {
	rows, err := s.DB.Query(
		`SELECT id, user_id, name, description, created_at, updated_at
		 FROM categories WHERE user_id = $1 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory returns nil without error when the category does not exist
// or belongs to another user.
func (s *Storage) GetCategory(id, userID int) (*models.Category, error) {
	var c models.Category
	err := s.DB.QueryRow(
		`SELECT id, user_id, name, description, created_at, updated_at
		 FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &c, nil
}

func (s *Storage) UpdateCategory(id, userID int, name, description string) (*models.Category, error) {
	category := models.Category{ID: id, UserID: userID, Name: name, Description: description}
	err := s.DB.QueryRow(
		`UPDATE categories SET name = $1, description = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4
		 RETURNING created_at, updated_at`,
		name, description, id, userID,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes the category; transactions that referenced it
// keep existing with a cleared category (ON DELETE SET NULL).
func (s *Storage) DeleteCategory(id, userID int) error {
	res, err := s.DB.Exec("DELETE FROM categories WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
