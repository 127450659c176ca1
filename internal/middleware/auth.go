package middleware

import (
	"context"
	"net/http"
	"strings"

	"Faran/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey    = "user_id"
	ContextSessionIDKey = "session_id"
)

type SessionValidator interface {
	RequireSession(ctx context.Context, accessToken string) (*service.Session, error)
}

func AuthMiddleware(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": service.ErrUnauthorized.Code, "msg": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": service.ErrUnauthorized.Code, "msg": "invalid authorization format"})
			return
		}

		sess, err := sessions.RequireSession(c.Request.Context(), parts[1])
		if err != nil {
			if service.KindOf(err) == service.KindUnauthorized {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": service.ErrUnauthorized.Code, "msg": "invalid or expired token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "msg": "internal server error"})
			return
		}

		// 注入 user_id / session_id
		c.Set(ContextUserIDKey, sess.UserID)
		c.Set(ContextSessionIDKey, sess.SessionID)
		c.Next()
	}
}

func UserID(c *gin.Context) uint64 {
	return c.GetUint64(ContextUserIDKey)
}

func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionIDKey)
}
