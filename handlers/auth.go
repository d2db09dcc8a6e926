package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/resumatch/backend/auth"
	"github.com/resumatch/backend/models"
	"github.com/resumatch/backend/storage"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	firestore *storage.FirestoreClient
	jwt       *auth.JWTService
	logger    *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(firestore *storage.FirestoreClient, jwt *auth.JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{firestore: firestore, jwt: jwt, logger: logger}
}

// Register creates a new user account
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration details"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Email, name and password are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to create account",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	if err := h.firestore.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Message: "Email is already registered",
				Code:    http.StatusConflict,
			})
			return
		}
		h.logger.Error("failed to create user", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to create account",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	token, err := h.jwt.GenerateToken(&user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to issue token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{Token: token, User: &user})
}

// Login authenticates a user and issues a token
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Email and password are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	user, err := h.firestore.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Invalid email or password",
				Code:    http.StatusUnauthorized,
			})
			return
		}
		h.logger.Error("failed to load user", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to log in",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Message: "Invalid email or password",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	token, err := h.jwt.GenerateToken(user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to issue token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: user})
}
