package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	authapp "github.com/oksasatya/quiz-auth/internal/application"
	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	repo "github.com/oksasatya/quiz-auth/internal/domain/repository"
	"github.com/oksasatya/quiz-auth/internal/interface/middleware"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
	"github.com/oksasatya/quiz-auth/pkg/response"
	"github.com/oksasatya/quiz-auth/pkg/validation"
)

type AuthHandler struct {
	Svc    *authapp.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *authapp.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type usersResponse struct {
	Count int                 `json:"count"`
	Users []entity.PublicUser `json:"users"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Please provide name, email, password, and role", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), authapp.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		h.fail(c, err, "registration failed")
		return
	}
	response.Success(c, http.StatusCreated, res, "registration successful", map[string]any{"expires_at": res.ExpiresAt})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Please provide email and password", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "login failed")
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", map[string]any{"expires_at": res.ExpiresAt})
}

// ListUsers GET /api/auth/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list users failed")
		return
	}
	response.Success(c, http.StatusOK, usersResponse{Count: len(users), Users: users}, "users", nil)
}

// Me GET /api/auth/me (bearer required)
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.Whoami(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		h.fail(c, err, "whoami failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "current user", nil)
}

// fail maps service errors onto status codes. Anything unrecognised is an
// internal error and its details stay in the log.
func (h *AuthHandler) fail(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, authapp.ErrMissingFields),
		errors.Is(err, authapp.ErrInvalidEmail),
		errors.Is(err, authapp.ErrInvalidRole),
		errors.Is(err, authapp.ErrPasswordTooLong):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, authapp.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, helpers.ErrInvalidToken):
		response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
	case errors.Is(err, repo.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "User already exists", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error(logMsg)
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
