package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/middleware"
	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

type RegisterUserRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=patient doctor"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Phone     string `json:"phone" binding:"max=20"`
	Address   string `json:"address" binding:"max=255"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Address   *string `json:"address" binding:"omitempty,max=255"`
}

// RegisterUser creates a patient or doctor account with its profile.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	ctx := c.Request.Context()
	req.Email = strings.TrimSpace(req.Email)

	taken, err := h.users.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		h.fail(c, err, "user")
		return
	}
	if taken {
		utils.SendFieldError(c, "email", "Email already in use")
		return
	}
	if taken, err = h.users.UsernameTaken(ctx, req.Username); err != nil {
		h.fail(c, err, "user")
		return
	}
	if taken {
		utils.SendFieldError(c, "username", "A user with that username already exists.")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		h.log.Error("hash password", zap.Error(err))
		utils.SendError(c, http.StatusInternalServerError, utils.CodeDatabaseError, "Registration failed", "Failed to hash password", nil)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RolePatient
	}
	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		Phone:     req.Phone,
		Address:   req.Address,
		IsActive:  true,
	}
	if err := h.users.Create(ctx, &user); err != nil {
		h.fail(c, err, "user")
		return
	}

	h.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", role))
	c.JSON(http.StatusCreated, toUser(&user))
}

// Login exchanges credentials for an access/refresh token pair.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.fail(c, err, "user")
		return
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeInvalidCredentials,
			"Authentication failed", "Invalid username or password", nil)
		return
	}
	if !user.IsActive {
		utils.SendError(c, http.StatusForbidden, utils.CodeAccountDisabled,
			"Authentication failed", "User account is disabled", nil)
		return
	}

	access, refresh, err := utils.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		h.log.Error("generate tokens", zap.Error(err))
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInvalidToken,
			"Authentication failed", "Could not generate token", nil)
		return
	}
	if err := h.users.TouchLastLogin(ctx, user.ID, h.now()); err != nil {
		h.log.Warn("update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"refresh":  refresh,
		"access":   access,
		"username": user.Username,
		"role":     user.Role,
	})
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	ctx := c.Request.Context()

	claims, err := utils.ValidateJWT(req.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeInvalidToken, "Invalid token", "Token is invalid or expired", nil)
		return
	}
	// Claiming the jti is atomic, so a token can be rotated once.
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = max(time.Until(claims.ExpiresAt.Time), ttl)
	}
	fresh, err := h.cache.SetNX(ctx, revokedKey(claims.ID), true, ttl)
	if err != nil {
		h.log.Warn("revoke refresh token", zap.Error(err))
	} else if !fresh {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeInvalidToken, "Invalid token", "Token is blacklisted", nil)
		return
	}

	user, err := h.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeInvalidToken, "Invalid token", "User not found or inactive", nil)
		return
	}

	access, refresh, err := utils.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		h.log.Error("generate tokens", zap.Error(err))
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInvalidToken, "Invalid token", "Could not generate token", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

// GetCurrentUser returns the authenticated user's account.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

// UpdateCurrentUser patches the authenticated user's contact details.
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.FindByID(ctx, middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err, "user")
		return
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := h.users.EmailTaken(ctx, *req.Email, user.ID)
		if err != nil {
			h.fail(c, err, "user")
			return
		}
		if taken {
			utils.SendFieldError(c, "email", "Email already in use")
			return
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := h.users.Update(ctx, user); err != nil {
		h.fail(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

// AdminUserStats counts new and active users over a dashboard period.
func (h *Handler) AdminUserStats(c *gin.Context) {
	r, err := services.DashboardPeriod(c.Query("period"), h.now())
	if err != nil {
		utils.SendFieldError(c, "period", "Invalid period")
		return
	}
	stats, err := h.analytics.UserStats(c.Request.Context(), r)
	if err != nil {
		h.fail(c, err, "user statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"new_users":    stats.NewUsers,
		"active_users": stats.ActiveUsers,
		"start_date":   r.From.Format(models.DateLayout),
		"end_date":     r.To.Format(models.DateLayout),
	})
}
