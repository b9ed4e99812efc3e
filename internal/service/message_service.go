package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/model"
	"thethought-backend/internal/repository/interfaces"
	"thethought-backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MessageService 处理私信与会话相关的业务逻辑
type MessageService struct {
	messageRepo interfaces.MessageRepository
	userRepo    interfaces.UserRepository
}

// NewMessageService 创建一个新的 MessageService 实例
func NewMessageService(messageRepo interfaces.MessageRepository, userRepo interfaces.UserRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

// Send 发送私信。会话标识在此派生并随消息一次性落库。
func (s *MessageService) Send(ctx context.Context, senderID, recipientID primitive.ObjectID, content, messageType string, attachments []model.Attachment, replyTo *primitive.ObjectID) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New(errors.ErrValidation, "Recipient and content are required")
	}
	// 长度上限按字符数计，多字节字符算一个字符
	if utf8.RuneCountInString(content) > model.MaxMessageContentLen {
		return nil, errors.New(errors.ErrValidation, "Content too long")
	}
	if messageType == "" {
		messageType = model.MessageTypeText
	}
	if !model.IsValidMessageType(messageType) {
		return nil, errors.New(errors.ErrValidation, "Invalid message type")
	}

	recipient, err := s.userRepo.FindByID(ctx, recipientID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询接收方失败", err)
	}
	if recipient == nil {
		return nil, errors.New(errors.ErrUserNotFound, "Recipient not found")
	}

	message := &model.Message{
		Sender:         senderID,
		Recipient:      recipientID,
		Content:        content,
		MessageType:    messageType,
		Attachments:    attachments,
		ReplyTo:        replyTo,
		ConversationID: ConversationID(senderID, recipientID),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "发送消息失败", err)
	}

	util.Logger.Info("消息已发送",
		zap.String("message_id", message.ID.Hex()),
		zap.String("conversation_id", message.ConversationID))

	if err := decorateMessages(ctx, s.userRepo, []*model.Message{message}); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充消息信息失败", err)
	}
	return message, nil
}

// ListConversations 返回用户的会话列表：
// 取全部相关消息后在服务层做显式分组归约，并解析对方用户摘要
func (s *MessageService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]*model.Conversation, error) {
	messages, err := s.messageRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取会话列表失败", err)
	}

	conversations := GroupConversations(messages, userID)

	var otherIDs []primitive.ObjectID
	for _, conv := range conversations {
		otherIDs = append(otherIDs, conv.LastMessage.OtherParticipant(userID))
	}
	if len(otherIDs) > 0 {
		summaries, err := summarizeUsers(ctx, s.userRepo, otherIDs)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "解析会话参与者失败", err)
		}
		for _, conv := range conversations {
			conv.OtherUser = summaries[conv.LastMessage.OtherParticipant(userID)]
		}
	}
	return conversations, nil
}

// ListThread 返回与对方的会话消息。
// 分页按最新在前取出后反转为时间顺序；作为副作用，
// 该会话中发给查看者的未读消息全部置为已读——每次读取都执行，不可选。
func (s *MessageService) ListThread(ctx context.Context, userID, otherUserID primitive.ObjectID, page, pageSize int) ([]*model.Message, model.Pagination, error) {
	page, pageSize = model.NormalizePage(page, pageSize, 20)
	conversationID := ConversationID(userID, otherUserID)

	messages, total, err := s.messageRepo.ListByConversation(ctx, conversationID, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "获取会话消息失败", err)
	}

	if err := s.messageRepo.MarkThreadRead(ctx, conversationID, userID); err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "标记会话已读失败", err)
	}

	// 反转为时间顺序用于展示
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if err := decorateMessages(ctx, s.userRepo, messages); err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "填充消息信息失败", err)
	}
	return messages, model.NewPagination(page, pageSize, total), nil
}

// MarkRead 将单条消息置为已读，仅接收方可操作
func (s *MessageService) MarkRead(ctx context.Context, id, requester primitive.ObjectID) error {
	message, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "获取消息失败", err)
	}
	if message == nil {
		return errors.New(errors.ErrMessageNotFound, "Message not found")
	}
	if message.Recipient != requester {
		return errors.New(errors.ErrForbidden, "Not authorized to mark this message as read")
	}
	if err := s.messageRepo.MarkRead(ctx, id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "标记消息已读失败", err)
	}
	return nil
}

// Delete 删除消息，仅发送方可操作
func (s *MessageService) Delete(ctx context.Context, id, requester primitive.ObjectID) error {
	message, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "获取消息失败", err)
	}
	if message == nil {
		return errors.New(errors.ErrMessageNotFound, "Message not found")
	}
	if message.Sender != requester {
		return errors.New(errors.ErrForbidden, "Not authorized to delete this message")
	}
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除消息失败", err)
	}
	return nil
}

// UnreadCount 返回发给用户的未读消息总数
func (s *MessageService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int, error) {
	count, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "统计未读消息失败", err)
	}
	return count, nil
}
