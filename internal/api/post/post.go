package post

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

// PostHandler 处理与想法（帖子）相关的HTTP请求
type PostHandler struct {
	postService *service.PostService
	userService *service.UserService
}

// NewPostHandler 创建一个新的 PostHandler 实例
func NewPostHandler(postService *service.PostService, userService *service.UserService) *PostHandler {
	return &PostHandler{postService, userService}
}

func parsePage(c *gin.Context, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSize)))
	return model.NormalizePage(page, limit, defaultSize)
}

// viewer 加载当前查看者，未认证时返回 nil
func (h *PostHandler) viewer(c *gin.Context) *model.User {
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

type createPostRequest struct {
	Content    string `json:"content" binding:"required"`
	Visibility string `json:"visibility" binding:"omitempty,visibility"`
}

// CreatePost 处理发布新想法的请求
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Content is required", err))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	post, err := h.postService.Create(c.Request.Context(), userID, req.Content, req.Visibility)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("想法发布成功",
		zap.String("post_id", post.ID.Hex()),
		zap.String("author_id", userID.Hex()))
	c.JSON(http.StatusCreated, post)
}

// GetFeed 返回查看者可见的分页信息流
func (h *PostHandler) GetFeed(c *gin.Context) {
	page, limit := parsePage(c, 10)
	viewer := h.viewer(c)

	posts, pagination, err := h.postService.ListFeed(c.Request.Context(), viewer, page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      posts,
		"pagination": pagination,
	})
}

// GetPost 返回单条想法
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid post id"))
		return
	}

	post, err := h.postService.GetByID(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ToggleLike 点赞或取消点赞
func (h *PostHandler) ToggleLike(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid post id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	liked, likeCount, err := h.postService.ToggleLike(c.Request.Context(), id, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   message,
		"isLiked":   liked,
		"likeCount": likeCount,
	})
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment 为想法添加评论
func (h *PostHandler) AddComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid post id"))
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Comment content is required", err))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	comment, err := h.postService.AddComment(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// SharePost 记录一次分享，同一用户重复分享不计数
func (h *PostHandler) SharePost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid post id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	shareCount, err := h.postService.Share(c.Request.Context(), id, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Post shared",
		"shareCount": shareCount,
	})
}

// DeletePost 删除自己的想法
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid post id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	if err := h.postService.Delete(c.Request.Context(), id, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("想法已删除", zap.String("post_id", id.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// SearchPosts 按内容或话题标签搜索公开想法
func (h *PostHandler) SearchPosts(c *gin.Context) {
	query := c.Param("query")
	page, limit := parsePage(c, 10)

	posts, pagination, err := h.postService.Search(c.Request.Context(), query, middleware.ViewerID(c), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      posts,
		"pagination": pagination,
	})
}
