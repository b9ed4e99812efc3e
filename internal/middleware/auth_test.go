package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"thethought-backend/config"
	"thethought-backend/internal/service"
	"thethought-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthTestRouter(userService *service.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(userService), func(c *gin.Context) {
		userID := c.MustGet("user_id").(primitive.ObjectID)
		c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
	})
	r.GET("/open", OptionalAuthMiddleware(userService), func(c *gin.Context) {
		if viewerID := ViewerID(c); viewerID != nil {
			c.JSON(http.StatusOK, gin.H{"viewer": viewerID.Hex()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"viewer": nil})
	})
	return r
}

// TestAuthMiddleware 测试必须认证的中间件
func TestAuthMiddleware(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	util.InitLogger("error")
	userService := service.NewUserService(nil, nil, nil, service.NewMemoryBlacklist())
	router := newAuthTestRouter(userService)

	userID := primitive.NewObjectID()
	token, err := util.GenerateToken(userID.Hex())
	assert.NoError(t, err)

	// 无令牌
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 有效令牌
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.Hex())

	// 注销后的令牌被拒绝
	userService.Logout(token)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestOptionalAuthMiddleware 可选认证：无效令牌不拒绝请求，只是不带身份
func TestOptionalAuthMiddleware(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	util.InitLogger("error")
	userService := service.NewUserService(nil, nil, nil, service.NewMemoryBlacklist())
	router := newAuthTestRouter(userService)

	// 无令牌也放行
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/open", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	// 坏令牌同样放行
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	// 有效令牌带上查看者身份
	userID := primitive.NewObjectID()
	token, err := util.GenerateToken(userID.Hex())
	assert.NoError(t, err)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.Hex())
}
