package models

import "github.com/shopspring/decimal"

type AuthResponse struct {
	Message  string `json:"message" example:"Login successful"`
	UserID   int    `json:"user_id" example:"1"`
	Username string `json:"username" example:"john_doe"`
	Token    string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type UserResponse struct {
	ID       int    `json:"id" example:"1"`
	Username string `json:"username" example:"john_doe"`
	Email    string `json:"email" example:"john@example.com"`
}

type SummaryResponse struct {
	StartDate     Date            `json:"start_date"`
	EndDate       Date            `json:"end_date"`
	TotalIncome   decimal.Decimal `json:"total_income" example:"50.00"`
	TotalExpenses decimal.Decimal `json:"total_expenses" example:"20.00"`
	NetBalance    decimal.Decimal `json:"net_balance" example:"30.00"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Logout successful"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"error"`
}

type FieldErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}
