// internal/handlers/auth/handler.go
package auth

import (
	"net/http"
	"strconv"

	"flota-service/internal/domain/user"
	"flota-service/internal/middleware"
	"flota-service/internal/pkg/response"
	authsvc "flota-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authsvc.Service
	logger      *zap.Logger
}

func NewAuthHandler(authService *authsvc.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), c.ClientIP(), &req)
	if err != nil {
		h.logger.Info("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
		)
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	jti, _ := middleware.GetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), p.ID, jti); err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// Profile handles GET /auth/me
func (h *AuthHandler) Profile(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	profile, err := h.authService.Profile(c.Request.Context(), p.ID)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", profile)
}

// RegisterPushToken handles POST /auth/push-token
func (h *AuthHandler) RegisterPushToken(c *gin.Context) {
	var req user.RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	p := middleware.MustGetPrincipal(c)
	if err := h.authService.RegisterPushToken(c.Request.Context(), p.ID, req.Token); err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "push token registered", nil)
}

// --- user management (admin) ---

// CreateUser handles POST /usuarios
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	profile, err := h.authService.CreateUser(c.Request.Context(), *middleware.MustGetPrincipal(c), &req)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "user created", profile)
}

// UpdateUser handles PUT /usuarios/:id
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id", err)
		return
	}

	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	profile, err := h.authService.UpdateUser(c.Request.Context(), *middleware.MustGetPrincipal(c), id, &req)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user updated", profile)
}

// DeleteUser handles DELETE /usuarios/:id
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id", err)
		return
	}

	if err := h.authService.DeleteUser(c.Request.Context(), *middleware.MustGetPrincipal(c), id); err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user deleted", nil)
}

// ListUsers handles GET /usuarios
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context(), *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "users retrieved", users)
}
