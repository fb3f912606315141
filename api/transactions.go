package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/backend/db"
	"github.com/fintrack/backend/models"
)

// filterFromQuery parses the optional list filters. The date range is
// applied only when both bounds are given; a lone bound is ignored.
func filterFromQuery(c *gin.Context) (models.TransactionFilter, error) {
	var f models.TransactionFilter

	start, end := c.Query("start_date"), c.Query("end_date")
	if start != "" && end != "" {
		startDate, err := models.ParseDate(start)
		if err != nil {
			return f, err
		}
		endDate, err := models.ParseDate(end)
		if err != nil {
			return f, err
		}
		f.StartDate, f.EndDate = &startDate, &endDate
	}

	if t := c.Query("type"); t != "" {
		if !models.ValidType(t) {
			return f, errors.New("type must be 'income' or 'expense'")
		}
		f.Type = t
	}

	if cat := c.Query("category"); cat != "" {
		id, err := strconv.Atoi(cat)
		if err != nil || id <= 0 {
			return f, errors.New("category must be a positive integer")
		}
		f.CategoryID = id
	}

	return f, nil
}

// summaryRange resolves the summary period, defaulting to the first day
// of the current month through today when either bound is missing.
func summaryRange(start, end string, now time.Time) (models.Date, models.Date, error) {
	if start == "" || end == "" {
		today := models.NewDate(now.Year(), now.Month(), now.Day())
		first := models.NewDate(now.Year(), now.Month(), 1)
		return first, today, nil
	}

	startDate, err := models.ParseDate(start)
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	endDate, err := models.ParseDate(end)
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	return startDate, endDate, nil
}

// GetTransactions godoc
// @Summary List the user's transactions
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param start_date query string false "Range start (YYYY-MM-DD), requires end_date"
// @Param end_date query string false "Range end (YYYY-MM-DD), requires start_date"
// @Param type query string false "income or expense"
// @Param category query int false "Category id"
// @Success 200 {array} models.Transaction
// @Failure 400 {object} models.ErrorResponse
// @Router /transactions [get]
func (h *Handler) GetTransactions(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	transactions, err := h.storage.GetTransactions(currentUserID(c), filter)
	if err != nil {
		logrus.WithError(err).Error("list transactions")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateTransactionRequest true "Transaction payload"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} models.ErrorResponse
// @Router /transactions [post]
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	transaction := models.Transaction{
		UserID:      currentUserID(c),
		Amount:      req.Amount,
		Description: req.Description,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
		IsRecurring: req.IsRecurring,
		Frequency:   req.Frequency,
		EndDate:     req.EndDate,
	}

	if err := h.storage.CreateTransaction(&transaction); err != nil {
		if errors.Is(err, db.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		logrus.WithError(err).Error("create transaction")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// GetTransaction godoc
// @Summary Get a transaction by id
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Transaction id"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} models.ErrorResponse
// @Router /transactions/{id} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	transaction, err := h.storage.GetTransaction(id, currentUserID(c))
	if err != nil {
		logrus.WithError(err).Error("get transaction")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	if transaction == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Transaction id"
// @Param request body models.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /transactions/{id} [put]
func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	transaction, err := h.storage.GetTransaction(id, currentUserID(c))
	if err != nil {
		logrus.WithError(err).Error("get transaction")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	if transaction == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "transaction not found"})
		return
	}

	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Apply(transaction); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.storage.UpdateTransaction(transaction); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "transaction not found"})
		case errors.Is(err, db.ErrInvalidCategory):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			logrus.WithError(err).Error("update transaction")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Security ApiKeyAuth
// @Param id path int true "Transaction id"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /transactions/{id} [delete]
func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.storage.DeleteTransaction(id, currentUserID(c)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "transaction not found"})
			return
		}
		logrus.WithError(err).Error("delete transaction")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSummary godoc
// @Summary Income and expense totals over a date range
// @Description Defaults to the first day of the current month through today
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Param type query string false "income or expense"
// @Param category query int false "Category id"
// @Success 200 {object} models.SummaryResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /transactions/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	start, end, err := summaryRange(c.Query("start_date"), c.Query("end_date"), time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	income, expenses, err := h.storage.Summary(currentUserID(c), filter, start, end)
	if err != nil {
		logrus.WithError(err).Error("summary")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.SummaryResponse{
		StartDate:     start,
		EndDate:       end,
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetBalance:    income.Sub(expenses),
	})
}
