package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	apperrors "github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
	"github.com/wuwumall/wuwumall-backend/internal/session"
	"github.com/wuwumall/wuwumall-backend/pkg/util"
)

type AuthController struct {
	authService service.AuthService
	sessions    *session.Manager
	jwtConfig   *config.JWTConfig
}

func NewAuthController(authService service.AuthService, sessions *session.Manager, jwtConfig *config.JWTConfig) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		jwtConfig:   jwtConfig,
	}
}

type RegisterRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

type ResetPasswordRequest struct {
	Account     string `json:"account" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type UpdateProfileRequest struct {
	Username    *string            `json:"username"`
	Email       *string            `json:"email"`
	Avatar      *string            `json:"avatar"`
	Preferences *model.Preferences `json:"preferences"`
}

// Register handles account creation
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "请填写完整信息")
		return
	}

	user, err := ctrl.authService.Register(c.Request.Context(), service.RegisterInput{
		Phone:     req.Phone,
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	// Registration signs the account in right away
	sess, err := ctrl.sessions.Create(c.Request.Context(), user.Public(), false)
	if err != nil {
		log.Error("Failed to create session after registration", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.InternalError(c, "")
		return
	}
	token, err := util.GenerateSessionToken(sess.ID, user.ID, user.Role, ctrl.jwtConfig.Secret, ctrl.jwtConfig.Expiry)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "注册成功！赠送100积分",
		"user":    user.Public(),
		"token":   token,
	})
}

// Login authenticates an account and opens a session
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "请输入账号和密码")
		return
	}

	user, err := ctrl.authService.Login(c.Request.Context(), service.LoginInput{
		Account:   req.Account,
		Password:  req.Password,
		Remember:  req.Remember,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	sess, err := ctrl.sessions.Create(c.Request.Context(), user.Public(), req.Remember)
	if err != nil {
		log.Error("Failed to create session", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.InternalError(c, "")
		return
	}
	token, err := util.GenerateSessionToken(sess.ID, user.ID, user.Role, ctrl.jwtConfig.Secret, ctrl.jwtConfig.Expiry)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "登录成功",
		"user":    user.Public(),
		"token":   token,
	})
}

// Logout tears down the current session
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)
	userID := c.GetString(middleware.UserIDKey)

	if err := ctrl.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		apperrors.InternalError(c, "")
		return
	}
	ctrl.authService.Logout(c.Request.Context(), userID, service.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "已退出登录",
	})
}

// Heartbeat renews the session idle window
// POST /api/v1/auth/heartbeat
func (ctrl *AuthController) Heartbeat(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	if err := ctrl.sessions.Heartbeat(c.Request.Context(), sessionID); err != nil {
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthSessionExpired, "会话已过期，请重新登录")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the current session's user snapshot
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		apperrors.Unauthorized(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"isVip":   user.IsVIP(),
	})
}

// ResetPassword sets a new password for an account
// POST /api/v1/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "请输入账号和新密码")
		return
	}

	if err := ctrl.authService.ResetPassword(c.Request.Context(), req.Account, req.NewPassword, service.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "密码重置成功，请重新登录",
	})
}

// UpdateProfile changes the current user's profile
// PUT /api/v1/auth/me
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "输入信息有误")
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	user, err := ctrl.authService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdates{
		Username:    req.Username,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Preferences: req.Preferences,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	// Keep the session snapshot in step with the account record
	sessionID := c.GetString(middleware.SessionIDKey)
	if err := ctrl.sessions.RefreshUser(c.Request.Context(), sessionID, user.Public()); err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to refresh session snapshot", err, map[string]interface{}{
			"session_id": sessionID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "资料已更新",
		"user":    user.Public(),
	})
}

// Remembered reports whether an account opted into login prefill
// GET /api/v1/auth/remembered?account=...
func (ctrl *AuthController) Remembered(c *gin.Context) {
	account := c.Query("account")
	if account == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "缺少账号参数")
		return
	}

	remembered, err := ctrl.sessions.IsRemembered(c.Request.Context(), account)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"remembered": remembered,
	})
}

// respondAuthError maps auth business errors to error codes and HTTP statuses
func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIncompleteInput),
		errors.Is(err, service.ErrMissingCredentials),
		errors.Is(err, service.ErrNothingToUpdate):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	case errors.Is(err, service.ErrInvalidPhone):
		apperrors.BadRequest(c, apperrors.ValidationInvalidPhone, err.Error())
	case errors.Is(err, service.ErrInvalidEmail):
		apperrors.BadRequest(c, apperrors.ValidationInvalidEmail, err.Error())
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword):
		apperrors.BadRequest(c, apperrors.ValidationInvalidLength, err.Error())
	case errors.Is(err, service.ErrPhoneExists):
		apperrors.Conflict(c, apperrors.AuthPhoneExists, err.Error())
	case errors.Is(err, service.ErrUsernameExists):
		apperrors.Conflict(c, apperrors.AuthUsernameExists, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		apperrors.Conflict(c, apperrors.AuthEmailExists, err.Error())
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
	case errors.Is(err, service.ErrAccountSuspended):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthAccountSuspended, err.Error())
	case errors.Is(err, service.ErrAccountInactive):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthAccountInactive, err.Error())
	case errors.Is(err, service.ErrAccountLocked):
		apperrors.RespondWithError(c, http.StatusLocked, apperrors.AuthAccountLocked, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, err.Error())
	default:
		apperrors.RespondStoreError(c, err, "user")
	}
}
