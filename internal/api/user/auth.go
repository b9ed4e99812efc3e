package user

import (
	"net/http"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/model"
	"thethought-backend/internal/service"
	"thethought-backend/internal/storage"
	"thethought-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// 头像上传限制
const maxAvatarSize = 5 << 20 // 5 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AuthHandler 处理注册、登录与个人资料相关的HTTP请求
type AuthHandler struct {
	userService *service.UserService
	storage     storage.Storage
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService *service.UserService, storage storage.Storage) *AuthHandler {
	return &AuthHandler{userService, storage}
}

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName"`
}

// Register 注册新用户并返回访问令牌
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid registration payload", err))
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.Password, // 注册时先存明文，服务层负责哈希
		DisplayName:  req.DisplayName,
	}
	if err := h.userService.Register(c.Request.Context(), user); err != nil {
		errors.HandleError(c, err)
		return
	}

	token, err := util.GenerateToken(user.ID.Hex())
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "Failed to issue token", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 校验凭证并签发访问令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Email and password are required", err))
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	token, err := util.GenerateToken(user.ID.Hex())
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "Failed to issue token", err))
		return
	}

	util.Logger.Info("用户登录成功", zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout 注销当前令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.MustGet("token").(string)
	h.userService.Logout(token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile 返回当前登录用户的资料
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)
	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"omitempty,max=50"`
	Bio         string `json:"bio" binding:"omitempty,max=200"`
	Privacy     string `json:"privacy"`
}

// UpdateProfile 更新当前登录用户的资料
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid profile payload", err))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.DisplayName, req.Bio, req.Privacy)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar 上传头像图片
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Avatar file is required", err))
		return
	}
	if file.Size > maxAvatarSize {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Avatar exceeds the 5MB size limit"))
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Unsupported image format"))
		return
	}

	avatarURL, err := h.storage.UploadFile(file, "avatars/"+util.GenerateUniqueFilename(file.Filename))
	if err != nil {
		util.Logger.Error("上传头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrStorage, "Failed to store avatar", err))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	user, err := h.userService.SetProfilePic(c.Request.Context(), userID, avatarURL)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
