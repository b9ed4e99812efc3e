package middleware

import (
	"strings"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/service"
	"thethought-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bearerToken 从 Authorization 头中取出令牌
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware 要求请求携带有效的访问令牌
func AuthMiddleware(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		if userService.IsTokenBlacklisted(token) {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Token has been revoked"))
			c.Abort()
			return
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
			c.Abort()
			return
		}

		objectID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set("user_id", objectID)
		c.Set("token", token)
		c.Next()
	}
}

// OptionalAuthMiddleware 在令牌有效时设置查看者身份，从不拒绝请求
func OptionalAuthMiddleware(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok || userService.IsTokenBlacklisted(token) {
			c.Next()
			return
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}
		if objectID, err := primitive.ObjectIDFromHex(userID); err == nil {
			c.Set("user_id", objectID)
		}
		c.Next()
	}
}

// ViewerID 返回已认证的查看者ID，未认证时返回 nil
func ViewerID(c *gin.Context) *primitive.ObjectID {
	if v, exists := c.Get("user_id"); exists {
		id := v.(primitive.ObjectID)
		return &id
	}
	return nil
}
