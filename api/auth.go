package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/backend/db"
	"github.com/fintrack/backend/models"
)

// issueToken returns the user's bearer token, creating and persisting one
// on first use. Later logins hand back the same token.
func (h *Handler) issueToken(userID int) (string, error) {
	token, err := h.storage.GetToken(userID)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}

	token, err = h.signToken(userID)
	if err != nil {
		return "", err
	}
	if err := h.storage.SaveToken(userID, token); err != nil {
		return "", err
	}
	// Re-read in case a concurrent login won the insert.
	return h.storage.GetToken(userID)
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration payload"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.FieldErrorsResponse
// @Router /register [post]
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, models.FieldErrorsResponse{Errors: errs})
		return
	}

	user, err := h.storage.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			c.JSON(http.StatusBadRequest, models.FieldErrorsResponse{
				Errors: map[string]string{"username": err.Error()},
			})
			return
		}
		logrus.WithError(err).Error("register user")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		logrus.WithError(err).Error("issue token")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		Message:  "User created successfully",
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	})
}

// Login godoc
// @Summary Log in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.MessageResponse
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.storage.GetUserByUsername(req.Username)
	if err != nil {
		logrus.WithError(err).Error("login lookup")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	// Same response for unknown username and wrong password.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "Invalid credentials"})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		logrus.WithError(err).Error("issue token")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Message:  "Login successful",
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	})
}

// Logout godoc
// @Summary Log out
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.MessageResponse
// @Router /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	// Acknowledgment only; the bearer token itself stays valid until
	// reissued or deleted out of band.
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logout successful"})
}

// CurrentUser godoc
// @Summary Get the authenticated user
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.UserResponse
// @Router /user [get]
func (h *Handler) CurrentUser(c *gin.Context) {
	user, err := h.storage.GetUserByID(currentUserID(c))
	if err != nil {
		logrus.WithError(err).Error("current user lookup")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token"})
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}
