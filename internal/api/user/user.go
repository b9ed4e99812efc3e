package user

import (
	"net/http"
	"strconv"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/middleware"
	"thethought-backend/internal/model"
	"thethought-backend/internal/service"
	"thethought-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserHandler 处理用户主页与关注关系相关的HTTP请求
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService}
}

func parsePage(c *gin.Context, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSize)))
	return model.NormalizePage(page, limit, defaultSize)
}

func (h *UserHandler) viewer(c *gin.Context) *model.User {
	viewerID := middleware.ViewerID(c)
	if viewerID == nil {
		return nil
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), *viewerID)
	if err != nil {
		util.Logger.Warn("加载查看者失败", zap.String("user_id", viewerID.Hex()), zap.Error(err))
		return nil
	}
	return user
}

// GetUserProfile 返回用户主页
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	username := c.Param("username")
	profile, err := h.userService.GetProfile(c.Request.Context(), username, h.viewer(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUserPosts 返回用户的想法列表，私密账号仅本人和关注者可见
func (h *UserHandler) GetUserPosts(c *gin.Context) {
	username := c.Param("username")
	page, limit := parsePage(c, 10)

	posts, pagination, err := h.userService.ListUserPosts(c.Request.Context(), username, h.viewer(c), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":      posts,
		"pagination": pagination,
	})
}

// GetUserReels 返回用户的短视频列表
func (h *UserHandler) GetUserReels(c *gin.Context) {
	username := c.Param("username")
	page, limit := parsePage(c, 10)

	reels, pagination, err := h.userService.ListUserReels(c.Request.Context(), username, h.viewer(c), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reels":      reels,
		"pagination": pagination,
	})
}

// GetFollowers 返回粉丝列表
func (h *UserHandler) GetFollowers(c *gin.Context) {
	username := c.Param("username")
	page, limit := parsePage(c, 20)

	followers, pagination, err := h.userService.ListFollowers(c.Request.Context(), username, page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"followers":  followers,
		"pagination": pagination,
	})
}

// GetFollowing 返回关注列表
func (h *UserHandler) GetFollowing(c *gin.Context) {
	username := c.Param("username")
	page, limit := parsePage(c, 20)

	following, pagination, err := h.userService.ListFollowing(c.Request.Context(), username, page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"following":  following,
		"pagination": pagination,
	})
}

// SearchUsers 按用户名或昵称搜索用户
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Param("query")
	page, limit := parsePage(c, 10)

	users, pagination, err := h.userService.SearchUsers(c.Request.Context(), query, page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": pagination,
	})
}

// FollowUser 关注指定用户
func (h *UserHandler) FollowUser(c *gin.Context) {
	username := c.Param("username")
	userID := c.MustGet("user_id").(primitive.ObjectID)

	if err := h.userService.Follow(c.Request.Context(), userID, username); err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("关注成功",
		zap.String("follower_id", userID.Hex()),
		zap.String("username", username))
	c.JSON(http.StatusOK, gin.H{"message": "Followed"})
}

// UnfollowUser 取消关注指定用户
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	username := c.Param("username")
	userID := c.MustGet("user_id").(primitive.ObjectID)

	if err := h.userService.Unfollow(c.Request.Context(), userID, username); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}
