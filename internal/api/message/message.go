package message

import (
	"net/http"
	"strconv"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/model"
	"thethought-backend/internal/service"
	"thethought-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MessageHandler 处理私信相关的HTTP请求
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 创建一个新的 MessageHandler 实例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService}
}

func parsePage(c *gin.Context, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSize)))
	return model.NormalizePage(page, limit, defaultSize)
}

type sendMessageRequest struct {
	RecipientID string             `json:"recipientId" binding:"required"`
	Content     string             `json:"content" binding:"required"`
	MessageType string             `json:"messageType"`
	Attachments []model.Attachment `json:"attachments"`
	ReplyTo     string             `json:"replyTo"`
}

// SendMessage 发送一条私信
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Recipient and content are required", err))
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid recipient id"))
		return
	}

	var replyTo *primitive.ObjectID
	if req.ReplyTo != "" {
		id, err := primitive.ObjectIDFromHex(req.ReplyTo)
		if err != nil {
			errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid replyTo id"))
			return
		}
		replyTo = &id
	}

	senderID := c.MustGet("user_id").(primitive.ObjectID)
	message, err := h.messageService.Send(c.Request.Context(), senderID, recipientID, req.Content, req.MessageType, req.Attachments, replyTo)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("私信发送成功",
		zap.String("message_id", message.ID.Hex()),
		zap.String("conversation_id", message.ConversationID))
	c.JSON(http.StatusCreated, message)
}

// GetConversations 返回所有会话，按最近消息排序并带未读数
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)
	conversations, err := h.messageService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetThread 返回与某个用户的会话消息，读取时顺带把未读消息标记为已读
func (h *MessageHandler) GetThread(c *gin.Context) {
	otherUserID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid user id"))
		return
	}

	page, limit := parsePage(c, 20)
	userID := c.MustGet("user_id").(primitive.ObjectID)

	messages, pagination, err := h.messageService.ListThread(c.Request.Context(), userID, otherUserID, page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":   messages,
		"pagination": pagination,
	})
}

// MarkRead 将单条消息标记为已读，仅收件人可操作
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid message id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	if err := h.messageService.MarkRead(c.Request.Context(), id, userID); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

// DeleteMessage 删除自己发送的消息
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "Invalid message id"))
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)
	if err := h.messageService.Delete(c.Request.Context(), id, userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("私信已删除", zap.String("message_id", id.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

// GetUnreadCount 返回未读消息总数
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)
	count, err := h.messageService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": count})
}
