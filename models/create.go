package models

import (
	"errors"
	"net/mail"

	"github.com/shopspring/decimal"
)

// NUMERIC(10, 2) holds values strictly below 10^8.
var maxAmount = decimal.New(1, 8)

func validateAmount(a decimal.Decimal) error {
	if a.Sign() <= 0 {
		return errors.New("amount must be positive")
	}
	if a.Exponent() < -2 {
		return errors.New("amount must have at most 2 decimal places")
	}
	if a.Abs().GreaterThanOrEqual(maxAmount) {
		return errors.New("amount must have at most 10 digits")
	}
	return nil
}

type RegisterRequest struct {
	Username string `json:"username" example:"john_doe"`
	Email    string `json:"email" example:"john@example.com"`
	Password string `json:"password" example:"password123"`
}

// Validate returns per-field error messages, empty when the payload is valid.
func (r *RegisterRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.Username == "" {
		errs["username"] = "this field is required"
	} else if len(r.Username) > 150 {
		errs["username"] = "username must be at most 150 characters"
	}
	if r.Email == "" {
		errs["email"] = "this field is required"
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errs["email"] = "enter a valid email address"
	}
	if r.Password == "" {
		errs["password"] = "this field is required"
	} else if len(r.Password) < 6 {
		errs["password"] = "password must be at least 6 characters"
	}
	return errs
}

type LoginRequest struct {
	Username string `json:"username" example:"john_doe"`
	Password string `json:"password" example:"password123"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" example:"Food"`
	Description string `json:"description" example:"Groceries and dining out"`
}

func (r *CreateCategoryRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(r.Name) > 100 {
		return errors.New("name must be at most 100 characters")
	}
	return nil
}

type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" example:"50.00"`
	Description string          `json:"description" example:"Weekly groceries"`
	Type        string          `json:"transaction_type" example:"expense"`
	CategoryID  *int            `json:"category" example:"1"`
	Date        Date            `json:"date"`
	IsRecurring bool            `json:"is_recurring" example:"false"`
	Frequency   *string         `json:"frequency" example:"monthly"`
	EndDate     *Date           `json:"end_date"`
}

func (r *CreateTransactionRequest) Validate() error {
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if !ValidType(r.Type) {
		return errors.New("type must be 'income' or 'expense'")
	}
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if r.Frequency != nil && !ValidFrequency(*r.Frequency) {
		return errors.New("frequency must be 'daily', 'weekly', 'monthly' or 'yearly'")
	}
	return nil
}

// UpdateTransactionRequest carries a partial update; nil fields keep the
// stored value.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" example:"50.00"`
	Description *string          `json:"description" example:"Weekly groceries"`
	Type        *string          `json:"transaction_type" example:"expense"`
	CategoryID  *int             `json:"category" example:"1"`
	Date        *Date            `json:"date"`
	IsRecurring *bool            `json:"is_recurring" example:"false"`
	Frequency   *string          `json:"frequency" example:"monthly"`
	EndDate     *Date            `json:"end_date"`
}

// Apply overlays the request onto t and validates the result.
func (r *UpdateTransactionRequest) Apply(t *Transaction) error {
	if r.Amount != nil {
		t.Amount = *r.Amount
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Type != nil {
		t.Type = *r.Type
	}
	if r.CategoryID != nil {
		t.CategoryID = r.CategoryID
	}
	if r.Date != nil {
		t.Date = *r.Date
	}
	if r.IsRecurring != nil {
		t.IsRecurring = *r.IsRecurring
	}
	if r.Frequency != nil {
		t.Frequency = r.Frequency
	}
	if r.EndDate != nil {
		t.EndDate = r.EndDate
	}

	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if !ValidType(t.Type) {
		return errors.New("type must be 'income' or 'expense'")
	}
	if t.Frequency != nil && !ValidFrequency(*t.Frequency) {
		return errors.New("frequency must be 'daily', 'weekly', 'monthly' or 'yearly'")
	}
	return nil
}
