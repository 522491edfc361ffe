package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sahilkr01/drcuberstore/internal/auth"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/pkg/jwtutil"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
)

// AuthHandler serves admin login, logout and password changes
type AuthHandler struct {
	Auth *auth.Service
	JWT  *jwtutil.JWTUtil
}

// LoginRequest is the admin login form
type LoginRequest struct {
	Password string `json:"password"`
}

// ChangePasswordRequest is the password change form
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login checks the admin password and returns a token bound to the new session
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	session, err := h.Auth.Login(c.Request().Context(), req.Password)
	if errors.Is(err, auth.ErrInvalidCredential) {
		log.Warn("Admin login rejected")
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"success": false,
			"message": h.Auth.Message(err),
		})
	}
	if err != nil {
		return storageFailure(c, log, err, "failed to save session")
	}

	token, err := h.JWT.GenerateToken(jwtutil.AdminClaims{
		UserID: session.User.ID,
		Email:  session.User.Email,
		Name:   session.User.Name,
		Role:   session.User.Role,
	}, session.ID, session.ExpiresAt().Add(-h.Auth.TTL()), session.ExpiresAt())
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   auth.MsgLoginSuccessful,
		"token":     token,
		"user":      session.User,
		"expiresAt": session.ExpiresAt(),
	})
}

// Logout ends the admin session
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromEcho(c)

	if err := h.Auth.Logout(c.Request().Context()); err != nil {
		return storageFailure(c, log, err, "failed to end session")
	}
	log.Info("Admin logged out")
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out"})
}

// Me returns the admin identity of the current session
func (h *AuthHandler) Me(c echo.Context) error {
	session, ok := c.Get("session").(model.Session)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":      session.User,
		"isAdmin":   session.User.Role == model.RoleAdmin,
		"expiresAt": session.ExpiresAt(),
	})
}

// ChangePassword replaces the admin password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse password change request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	err := h.Auth.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrWrongCurrentPassword), errors.Is(err, auth.ErrPasswordTooShort):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": h.Auth.Message(err),
		})
	case err != nil:
		return storageFailure(c, log, err, "failed to change password")
	}

	log.Info("Admin password changed")
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": auth.MsgPasswordChanged,
	})
}
