package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fintrack/backend/models"
)

// appendFilter extends a WHERE clause with the optional list filters.
// Filters compose conjunctively; the date range applies only when both
// bounds are present.
func appendFilter(query string, args []interface{}, f models.TransactionFilter) (string, []interface{}) {
	if f.StartDate != nil && f.EndDate != nil {
		query += fmt.Sprintf(" AND date BETWEEN $%d AND $%d", len(args)+1, len(args)+2)
		args = append(args, f.StartDate.Time, f.EndDate.Time)
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND transaction_type = $%d", len(args)+1)
		args = append(args, f.Type)
	}
	if f.CategoryID != 0 {
		query += fmt.Sprintf(" AND category_id = $%d", len(args)+1)
		args = append(args, f.CategoryID)
	}
	return query, args
}

func (s *Storage) categoryExists(id, userID int) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)",
		id, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return exists, nil
}

// CreateTransaction stores t and fills in its generated fields. The
// category, when set, must belong to the same user.
func (s *Storage) CreateTransaction(t *models.Transaction) error {
	if t.CategoryID != nil {
		ok, err := s.categoryExists(*t.CategoryID, t.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidCategory
		}
	}

	err := s.DB.QueryRow(
		`INSERT INTO transactions
		 (user_id, category_id, amount, description, transaction_type, date, is_recurring, frequency, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.CategoryID, t.Amount, t.Description, t.Type, t.Date, t.IsRecurring, t.Frequency, t.EndDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

const transactionColumns = `id, user_id, category_id, amount, description, transaction_type,
	date, is_recurring, frequency, end_date, last_processed, created_at, updated_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &t.Amount, &t.Description, &t.Type,
		&t.Date, &t.IsRecurring, &t.Frequency, &t.EndDate, &t.LastProcessed,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTransactions lists the user's transactions, newest date first,
// narrowed by the optional filters.
func (s *Storage) GetTransactions(userID int, f models.TransactionFilter) ([]models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions WHERE user_id = $1"
	args := []interface{}{userID}
	query, args = appendFilter(query, args, f)
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// GetTransaction returns nil without error when the transaction does not
// exist or belongs to another user.
func (s *Storage) GetTransaction(id, userID int) (*models.Transaction, error) {
	row := s.DB.QueryRow(
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction persists the mutable fields of t, scoped to its user.
func (s *Storage) UpdateTransaction(t *models.Transaction) error {
	if t.CategoryID != nil {
		ok, err := s.categoryExists(*t.CategoryID, t.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidCategory
		}
	}

	err := s.DB.QueryRow(
		`UPDATE transactions
		 SET category_id = $1, amount = $2, description = $3, transaction_type = $4,
		     date = $5, is_recurring = $6, frequency = $7, end_date = $8, updated_at = now()
		 WHERE id = $9 AND user_id = $10
		 RETURNING updated_at`,
		t.CategoryID, t.Amount, t.Description, t.Type, t.Date, t.IsRecurring,
		t.Frequency, t.EndDate, t.ID, t.UserID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (s *Storage) DeleteTransaction(id, userID int) error {
	res, err := s.DB.Exec("DELETE FROM transactions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) sumAmount(userID int, f models.TransactionFilter, txType string, start, end models.Date) (decimal.Decimal, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1"
	args := []interface{}{userID}
	query, args = appendFilter(query, args, f)
	query += fmt.Sprintf(" AND transaction_type = $%d AND date BETWEEN $%d AND $%d",
		len(args)+1, len(args)+2, len(args)+3)
	args = append(args, txType, start.Time, end.Time)

	var total decimal.Decimal
	if err := s.DB.QueryRow(query, args...).Scan(&total); err != nil {
		return decimal.Decimal{}, fmt.Errorf("sum %s: %w", txType, err)
	}
	return total, nil
}

// Summary computes the income and expense totals over the inclusive date
// range. The list filters from f apply first, so a type filter there
// narrows both sums the same way the list endpoint would.
func (s *Storage) Summary(userID int, f models.TransactionFilter, start, end models.Date) (income, expenses decimal.Decimal, err error) {
	income, err = s.sumAmount(userID, f, models.TypeIncome, start, end)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	expenses, err = s.sumAmount(userID, f, models.TypeExpense, start, end)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return income, expenses, nil
}
