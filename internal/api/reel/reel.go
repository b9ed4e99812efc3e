package reel

import (
	"net/http"
	"strconv"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/middleware"
	"thethought-backend/internal/model"
	"thethought-backend/internal/service"
	"thethought-backend/internal/storage"
	"thethought-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// 视频上传限制
const maxVideoSize = 50 << 20 // 50 MB

var allowedVideoTypes = map[string]bool{
	"video/mp4":  true,
	"video/avi":  true,
	"video/mov":  true,
	"video/wmv":  true,
	"video/webm": true,
}

// ReelHandler 处理与短视频相关的HTTP请求
type ReelHandler struct {
	reelService *service.ReelService
	userService *service.UserService
	storage     storage.Storage
}

// NewReelHandler 创建一个新的 ReelHandler 实例
func NewReelHandler(reelService *service.ReelService, userService *service.UserService, storage storage.Storage) *ReelHandler {
	return &ReelHandler{reelService, userService, storage}
}

func parsePage(c *gin.Context, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSize)))
	return model.NormalizePage(page, limit, defaultSize)
}

func (h *ReelHandler) viewer(c *gin.Context) *model.User {
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

// CreateReel 处理发布短视频的请求，multipart 表单携带视频文件
func (h *ReelHandler) CreateReel(c *gin.Context) {
	util.Logger.Info("开始处理发布短视频请求")

	file, err := c.FormFile("video")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Video file is required", err))
		return
	}

	if file.Size > maxVideoSize {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Video exceeds the 50MB size limit"))
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !allowedVideoTypes[contentType] {
		util.Logger.Warn("不支持的视频格式", zap.String("content_type", contentType))
		errors.HandleError(c, errors.New(errors.ErrValidation, "Unsupported video format"))
		return
	}

	caption := c.PostForm("caption")
	visibility := c.PostForm("visibility")
	duration, _ := strconv.Atoi(c.PostForm("duration"))

	videoPath := "reels/" + util.GenerateUniqueFilename(file.Filename)
	videoURL, err := h.storage.UploadFile(file, videoPath)
	if err != nil {
		util.Logger.Error("上传视频失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrStorage, "Failed to store video", err))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	reel, err := h.reelService.Create(c.Request.Context(), userID, caption, videoURL, videoPath, visibility, duration)
	if err != nil {
		// 创建失败时清理已上传的视频文件
		if delErr := h.storage.DeleteFile(videoPath); delErr != nil {
			util.Logger.Warn("清理视频文件失败", zap.String("path", videoPath), zap.Error(delErr))
		}
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("短视频发布成功",
		zap.String("reel_id", reel.ID.Hex()),
		zap.String("author_id", userID.Hex()))
	c.JSON(http.StatusCreated, reel)
}

// GetFeed 返回查看者可见的短视频信息流
func (h *ReelHandler) GetFeed(c *gin.Context) {
	page, limit := parsePage(c, 10)
	viewer := h.viewer(c)

	reels, pagination, err := h.reelService.ListFeed(c.Request.Context(), viewer, page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reels":      reels,
		"pagination": pagination,
	})
}

// GetReel 返回单条短视频并累加浏览数
func (h *ReelHandler) GetReel(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid reel id"))
		return
	}

	reel, err := h.reelService.GetByID(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, reel)
}

// ToggleLike 点赞或取消点赞
func (h *ReelHandler) ToggleLike(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid reel id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	liked, likeCount, err := h.reelService.ToggleLike(c.Request.Context(), id, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	message := "Reel unliked"
	if liked {
		message = "Reel liked"
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

// AddComment 为短视频添加评论
func (h *ReelHandler) AddComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid reel id"))
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Comment content is required", err))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	comment, err := h.reelService.AddComment(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ShareReel 记录一次分享
func (h *ReelHandler) ShareReel(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid reel id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	shareCount, err := h.reelService.Share(c.Request.Context(), id, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Reel shared",
		"shareCount": shareCount,
	})
}

// DeleteReel 删除自己的短视频，同时清理视频文件
func (h *ReelHandler) DeleteReel(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid reel id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	reel, err := h.reelService.Delete(c.Request.Context(), id, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	// 按存储键清理，访问URL在远端存储上不是对象键。
	// 清理失败不影响删除结果。
	videoKey := reel.VideoKey
	if videoKey == "" {
		// 早期记录没有存储键，本地存储的URL即相对路径
		videoKey = reel.VideoURL
	}
	if videoKey != "" {
		if delErr := h.storage.DeleteFile(videoKey); delErr != nil {
			util.Logger.Warn("清理视频文件失败", zap.String("path", videoKey), zap.Error(delErr))
		}
	}

	util.Logger.Info("短视频已删除", zap.String("reel_id", id.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Reel deleted"})
}

// SearchReels 按描述或话题标签搜索公开短视频
func (h *ReelHandler) SearchReels(c *gin.Context) {
	query := c.Param("query")
	page, limit := parsePage(c, 10)

	reels, pagination, err := h.reelService.Search(c.Request.Context(), query, middleware.ViewerID(c), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reels":      reels,
		"pagination": pagination,
	})
}
