package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/backend/db"
	"github.com/fintrack/backend/models"
)

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// GetCategories godoc
// @Summary List the user's categories
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.storage.GetCategories(currentUserID(c))
	if err != nil {
		logrus.WithError(err).Error("list categories")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateCategoryRequest true "Category payload"
// @Success 201 {object} models.Category
// @Failure 400 {object} models.ErrorResponse
// @Router /categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	category, err := h.storage.CreateCategory(currentUserID(c), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateCategory) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		logrus.WithError(err).Error("create category")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetCategory godoc
// @Summary Get a category by id
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category id"
// @Success 200 {object} models.Category
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	category, err := h.storage.GetCategory(id, currentUserID(c))
	if err != nil {
		logrus.WithError(err).Error("get category")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "category not found"})
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category id"
// @Param request body models.CreateCategoryRequest true "Category payload"
// @Success 200 {object} models.Category
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	category, err := h.storage.UpdateCategory(id, currentUserID(c), req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "category not found"})
		case errors.Is(err, db.ErrDuplicateCategory):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			logrus.WithError(err).Error("update category")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags categories
// @Security ApiKeyAuth
// @Param id path int true "Category id"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.storage.DeleteCategory(id, currentUserID(c)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "category not found"})
			return
		}
		logrus.WithError(err).Error("delete category")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
