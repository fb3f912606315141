package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fintrack/backend/db"
	"github.com/fintrack/backend/models"
)

// setupTestHandler builds the full router over the database named by
// POSTGRES_TEST_URL. Tests are skipped when the variable is unset.
func setupTestHandler(t *testing.T) (*gin.Engine, *db.Storage) {
	_ = godotenv.Load("../.env")
	gin.SetMode(gin.TestMode)

	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}

	storage, err := db.NewStorage(connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = storage.DB.Exec("TRUNCATE TABLE transactions, categories, auth_tokens, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	handler := NewHandler(storage, "test-secret")
	return NewRouter(handler, []string{"http://localhost:3000"}), storage
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// registerUser registers a user through the API and returns its token.
func registerUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doRequest(t, r, "POST", "/api/register", "", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to register %s: status %d, body %s", username, w.Code, w.Body)
	}
	var resp models.AuthResponse
	decodeJSON(t, w, &resp)
	return resp.Token
}

func TestRegister(t *testing.T) {
	r, storage := setupTestHandler(t)
	defer storage.Close()

	w := doRequest(t, r, "POST", "/api/register", "", models.RegisterRequest{
		Username: "testuser", Email: "test@example.com", Password: "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var resp models.AuthResponse
	decodeJSON(t, w, &resp)
	if resp.Username != "testuser" || resp.UserID == 0 || resp.Token == "" {
		t.Errorf("Expected populated auth response, got %+v", resp)
	}
	if resp.Message != "User created successfully" {
		t.Errorf("Expected creation message, got %q", resp.Message)
	}

	// Duplicate username: field error, no token issued.
	w = doRequest(t, r, "POST", "/api/register", "", models.RegisterRequest{
		Username: "testuser", Email: "other@example.com", Password: "password123",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	var fieldErrs models.FieldErrorsResponse
	decodeJSON(t, w, &fieldErrs)
	if fieldErrs.Errors["username"] == "" {
		t.Errorf("Expected username error, got %v", fieldErrs.Errors)
	}

	// Missing fields are reported per field.
	w = doRequest(t, r, "POST", "/api/register", "", models.RegisterRequest{Username: "another"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	decodeJSON(t, w, &fieldErrs)
	if fieldErrs.Errors["email"] == "" || fieldErrs.Errors["password"] == "" {
		t.Errorf("Expected email and password errors, got %v", fieldErrs.Errors)
	}

	// Short password.
	w = doRequest(t, r, "POST", "/api/register", "", models.RegisterRequest{
		Username: "testuser2", Email: "t2@example.com", Password: "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestLogin(t *testing.T) {
	r, storage := setupTestHandler(t)
	defer storage.Close()

	registered := registerUser(t, r, "testuser")

	w := doRequest(t, r, "POST", "/api/login", "", models.LoginRequest{
		Username: "testuser", Password: "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp models.AuthResponse
	decodeJSON(t, w, &resp)
	// Login reuses the token issued at registration.
	if resp.Token != registered {
		t.Errorf("Expected reused token %q, got %q", registered, resp.Token)
	}

	// Wrong password and unknown username get the same generic message.
	for _, creds := range []models.LoginRequest{
		{Username: "testuser", Password: "wrong"},
		{Username: "nosuchuser", Password: "password123"},
	} {
		w = doRequest(t, r, "POST", "/api/login", "", creds)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
		var msg models.MessageResponse
		decodeJSON(t, w, &msg)
		if msg.Message != "Invalid credentials" {
			t.Errorf("Expected generic message, got %q", msg.Message)
		}
	}
}

func TestLogoutAndCurrentUser(t *testing.T) {
	r, storage := setupTestHandler(t)
	defer storage.Close()

	token := registerUser(t, r, "testuser")

	w := doRequest(t, r, "GET", "/api/user", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var user models.UserResponse
	decodeJSON(t, w, &user)
	if user.Username != "testuser" || user.Email != "testuser@example.com" {
		t.Errorf("Expected current user payload, got %+v", user)
	}

	w = doRequest(t, r, "POST", "/api/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	// The bearer token stays valid after logout.
	w = doRequest(t, r, "GET", "/api/user", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d after logout, got %d", http.StatusOK, w.Code)
	}

	// No token at all is rejected.
	w = doRequest(t, r, "POST", "/api/logout", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	r, storage := setupTestHandler(t)
	defer storage.Close()

	tokenA := registerUser(t, r, "alice")
	tokenB := registerUser(t, r, "bob")

	w := doRequest(t, r, "POST", "/api/categories", tokenA, models.CreateCategoryRequest{
		Name: "Food", Description: "groceries",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var food models.Category
	decodeJSON(t, w, &food)
	if food.Name != "Food" || food.ID == 0 {
		t.Errorf("Expected created category, got %+v", food)
	}

	// Duplicate for the same user fails.
	w = doRequest(t, r, "POST", "/api/categories", tokenA, models.CreateCategoryRequest{Name: "Food"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	// Same name under a different user succeeds.
	w = doRequest(t, r, "POST", "/api/categories", tokenB, models.CreateCategoryRequest{Name: "Food"})
	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	// Lists are scoped per user.
	w = doRequest(t, r, "GET", "/api/categories", tokenA, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var categories []models.Category
	decodeJSON(t, w, &categories)
	if len(categories) != 1 {
		t.Errorf("Expected 1 category for alice, got %d", len(categories))
	}

	// Another user's category is not found, not forbidden.
	path := fmt.Sprintf("/api/categories/%d", food.ID)
	w = doRequest(t, r, "GET", path, tokenB, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	w = doRequest(t, r, "PUT", path, tokenB, models.CreateCategoryRequest{Name: "Hijack"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	w = doRequest(t, r, "DELETE", path, tokenB, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	w = doRequest(t, r, "PUT", path, tokenA, models.CreateCategoryRequest{Name: "Dining", Description: "restaurants"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var updated models.Category
	decodeJSON(t, w, &updated)
	if updated.Name != "Dining" {
		t.Errorf("Expected renamed category, got %+v", updated)
	}

	w = doRequest(t, r, "DELETE", path, tokenA, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}

	// Unauthenticated access fails.
	w = doRequest(t, r, "GET", "/api/categories", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	r, storage := setupTestHandler(t)
	defer storage.Close()

	tokenA := registerUser(t, r, "alice")
	tokenB := registerUser(t, r, "bob")

	w := doRequest(t, r, "POST", "/api/categories", tokenA, models.CreateCategoryRequest{Name: "Food"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var food models.Category
	decodeJSON(t, w, &food)

	create := func(token string, payload map[string]interface{}) models.Transaction {
		t.Helper()
		w := doRequest(t, r, "POST", "/api/transactions", token, payload)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body)
		}
		var tx models.Transaction
		decodeJSON(t, w, &tx)
		return tx
	}

	salary := create(tokenA, map[string]interface{}{
		"amount": "1000.00", "transaction_type": "income", "date": "2024-01-05", "description": "salary",
	})
	groceries := create(tokenA, map[string]interface{}{
		"amount": "50.25", "transaction_type": "expense", "date": "2024-01-10", "category": food.ID,
	})
	create(tokenA, map[string]interface{}{
		"amount": "20.00", "transaction_type": "expense", "date": "2024-02-01",
	})

	if !salary.Amount.Equal(decimal.RequireFromString("1000.00")) || salary.UserID == 0 {
		t.Errorf("Expected created salary transaction, got %+v", salary)
	}
	if groceries.CategoryID == nil || *groceries.CategoryID != food.ID {
		t.Errorf("Expected groceries in category %d, got %+v", food.ID, groceries)
	}

	// Validation errors.
	w = doRequest(t, r, "POST", "/api/transactions", tokenA, map[string]interface{}{
		"amount": "-5.00", "transaction_type": "expense", "date": "2024-01-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	var errResp models.ErrorResponse
	decodeJSON(t, w, &errResp)
	if errResp.Error != "amount must be positive" {
		t.Errorf("Expected 'amount must be positive', got %q", errResp.Error)
	}
	w = doRequest(t, r, "POST", "/api/transactions", tokenA, map[string]interface{}{
		"amount": "5.00", "transaction_type": "transfer", "date": "2024-01-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	// Another user's category id is rejected.
	w = doRequest(t, r, "POST", "/api/transactions", tokenB, map[string]interface{}{
		"amount": "5.00", "transaction_type": "expense", "date": "2024-01-01", "category": food.ID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	// List with filters.
	w = doRequest(t, r, "GET", "/api/transactions?start_date=2024-01-01&end_date=2024-01-31", tokenA, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var listed []models.Transaction
	decodeJSON(t, w, &listed)
	if len(listed) != 2 {
		t.Errorf("Expected 2 January transactions, got %d", len(listed))
	}

	w = doRequest(t, r, "GET", "/api/transactions?type=expense", tokenA, nil)
	decodeJSON(t, w, &listed)
	if len(listed) != 2 {
		t.Errorf("Expected 2 expenses, got %d", len(listed))
	}
	for _, tx := range listed {
		if tx.Type != models.TypeExpense {
			t.Errorf("Expected expense, got %s", tx.Type)
		}
	}

	w = doRequest(t, r, "GET", fmt.Sprintf("/api/transactions?category=%d", food.ID), tokenA, nil)
	decodeJSON(t, w, &listed)
	if len(listed) != 1 || listed[0].ID != groceries.ID {
		t.Errorf("Expected only the groceries transaction, got %+v", listed)
	}

	w = doRequest(t, r, "GET", "/api/transactions?type=invalid", tokenA, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	// Cross-user access is not found.
	path := fmt.Sprintf("/api/transactions/%d", salary.ID)
	w = doRequest(t, r, "GET", path, tokenB, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	w = doRequest(t, r, "DELETE", path, tokenB, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	// Partial update keeps omitted fields.
	w = doRequest(t, r, "PATCH", path, tokenA, map[string]interface{}{"amount": "1200.50"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body)
	}
	var patched models.Transaction
	decodeJSON(t, w, &patched)
	if !patched.Amount.Equal(decimal.RequireFromString("1200.50")) {
		t.Errorf("Expected amount 1200.50, got %s", patched.Amount)
	}
	if patched.Type != models.TypeIncome || patched.Description != "salary" {
		t.Errorf("Expected untouched fields to survive, got %+v", patched)
	}

	w = doRequest(t, r, "DELETE", path, tokenA, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	w = doRequest(t, r, "GET", path, tokenA, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	r, storage := setupTestHandler(t)
	defer storage.Close()

	token := registerUser(t, r, "testuser")

	create := func(payload map[string]interface{}) {
		t.Helper()
		w := doRequest(t, r, "POST", "/api/transactions", token, payload)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body)
		}
	}

	create(map[string]interface{}{"amount": "50.00", "transaction_type": "income", "date": "2024-01-05"})
	create(map[string]interface{}{"amount": "20.00", "transaction_type": "expense", "date": "2024-01-10"})

	w := doRequest(t, r, "GET", "/api/transactions/summary?start_date=2024-01-01&end_date=2024-01-31", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var summary models.SummaryResponse
	decodeJSON(t, w, &summary)
	if !summary.TotalIncome.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected income 50.00, got %s", summary.TotalIncome)
	}
	if !summary.TotalExpenses.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("Expected expenses 20.00, got %s", summary.TotalExpenses)
	}
	if !summary.NetBalance.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("Expected net 30.00, got %s", summary.NetBalance)
	}
	if summary.StartDate.String() != "2024-01-01" || summary.EndDate.String() != "2024-01-31" {
		t.Errorf("Expected echoed range, got %s..%s", summary.StartDate, summary.EndDate)
	}

	// Missing params default to the current month, so old rows drop out.
	now := time.Now()
	create(map[string]interface{}{
		"amount": "15.00", "transaction_type": "income",
		"date": models.NewDate(now.Year(), now.Month(), now.Day()).String(),
	})
	w = doRequest(t, r, "GET", "/api/transactions/summary", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	decodeJSON(t, w, &summary)
	if !summary.TotalIncome.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("Expected current-month income 15.00, got %s", summary.TotalIncome)
	}
	if summary.StartDate.Day() != 1 {
		t.Errorf("Expected range to start on the 1st, got %s", summary.StartDate)
	}

	// Base type filter narrows both sums (list-filter interplay).
	w = doRequest(t, r, "GET", "/api/transactions/summary?start_date=2024-01-01&end_date=2024-01-31&type=expense", token, nil)
	decodeJSON(t, w, &summary)
	if !summary.TotalIncome.IsZero() {
		t.Errorf("Expected income 0 under expense filter, got %s", summary.TotalIncome)
	}
	if !summary.TotalExpenses.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("Expected expenses 20.00, got %s", summary.TotalExpenses)
	}

	// Empty range: all totals zero.
	w = doRequest(t, r, "GET", "/api/transactions/summary?start_date=2020-01-01&end_date=2020-01-31", token, nil)
	decodeJSON(t, w, &summary)
	if !summary.TotalIncome.IsZero() || !summary.TotalExpenses.IsZero() || !summary.NetBalance.IsZero() {
		t.Errorf("Expected zero summary, got %+v", summary)
	}
}
