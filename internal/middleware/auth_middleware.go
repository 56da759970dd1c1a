package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	"github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/session"
	"github.com/wuwumall/wuwumall-backend/pkg/util"
)

// Context keys set after authentication
const (
	SessionIDKey = "session_id"
	UserKey      = "current_user"
	UserIDKey    = "user_id"
	UserRoleKey  = "user_role"
)

type AuthMiddleware struct {
	jwtSecret string
	sessions  *session.Manager
	auth      service.AuthService
}

func NewAuthMiddleware(jwtSecret string, sessions *session.Manager, auth service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		sessions:  sessions,
		auth:      auth,
	}
}

// Authenticate validates the bearer token and loads the live session.
// The token only names the session; the session store stays
// authoritative, so a logged-out or idle-expired token is refused even
// before its JWT expiry.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "认证格式不正确")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			// WebSocket clients pass the token as a query parameter
			token = c.Query("token")
			if token == "" {
				errors.Unauthorized(c, "请先登录")
				c.Abort()
				return
			}
		}

		claims, err := util.ValidateSessionToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "登录已过期，请重新登录")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "无效的认证令牌")
			}
			c.Abort()
			return
		}

		// Loading the session also slides its idle window forward
		sess, err := m.sessions.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			log.Warn("Session lookup failed", map[string]interface{}{
				"session_id": claims.SessionID,
				"error":      err.Error(),
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthSessionExpired, "会话已过期，请重新登录")
			c.Abort()
			return
		}

		if sess.User.Status == model.StatusSuspended {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthAccountSuspended, "账号已被禁用，请联系客服")
			c.Abort()
			return
		}

		c.Set(SessionIDKey, sess.ID)
		c.Set(UserKey, sess.User)
		c.Set(UserIDKey, sess.User.ID)
		c.Set(UserRoleKey, sess.User.Role)

		c.Next()
	}
}

// RequirePermission gates a route on the permission table. Must run
// after Authenticate.
func (m *AuthMiddleware) RequirePermission(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !m.auth.CheckPermission(user, action) {
			GetLoggerFromContext(c).Warn("Permission denied", map[string]interface{}{
				"user_id": user.ID,
				"action":  action,
			})
			errors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user snapshot, nil when absent
func CurrentUser(c *gin.Context) *model.PublicUser {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, ok := value.(model.PublicUser)
	if !ok {
		return nil
	}
	return &user
}
