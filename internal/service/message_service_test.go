package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestSendMessage 测试发送私信并派生会话标识
func TestSendMessage(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	senderID := primitive.NewObjectID()
	recipientID := primitive.NewObjectID()
	sender := &model.User{ID: senderID, Username: "alice"}
	recipient := &model.User{ID: recipientID, Username: "bob"}

	mockUserRepo.On("FindByID", mock.Anything, recipientID).Return(recipient, nil)
	mockMessageRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Message")).Return(nil)
	mockUserRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*model.User{sender, recipient}, nil)

	message, err := messageService.Send(context.Background(), senderID, recipientID, "你好", "", nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, model.MessageTypeText, message.MessageType)
	assert.Equal(t, ConversationID(senderID, recipientID), message.ConversationID)
	assert.False(t, message.IsRead)
	mockMessageRepo.AssertExpectations(t)
}

// TestSendMessageUnknownRecipient 接收方不存在时报错
func TestSendMessageUnknownRecipient(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	recipientID := primitive.NewObjectID()
	mockUserRepo.On("FindByID", mock.Anything, recipientID).Return(nil, nil)

	_, err := messageService.Send(context.Background(), primitive.NewObjectID(), recipientID, "hi", "", nil, nil)

	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrUserNotFound, appErr.Code)
	mockMessageRepo.AssertNotCalled(t, "Create")
}

// TestSendMessageValidation 测试内容与类型校验
func TestSendMessageValidation(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	senderID := primitive.NewObjectID()
	recipientID := primitive.NewObjectID()

	_, err := messageService.Send(context.Background(), senderID, recipientID, "   ", "", nil, nil)
	assert.Error(t, err)

	_, err = messageService.Send(context.Background(), senderID, recipientID, "hi", "carrier-pigeon", nil, nil)
	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
}

// TestSendMessageMultibyteLength 消息长度上限按字符数计，不按字节数
func TestSendMessageMultibyteLength(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	senderID := primitive.NewObjectID()
	recipientID := primitive.NewObjectID()
	sender := &model.User{ID: senderID, Username: "alice"}
	recipient := &model.User{ID: recipientID, Username: "bob"}

	mockUserRepo.On("FindByID", mock.Anything, recipientID).Return(recipient, nil)
	mockMessageRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Message")).Return(nil)
	mockUserRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*model.User{sender, recipient}, nil)

	// 恰好达到上限的多字节内容可以发送
	_, err := messageService.Send(context.Background(), senderID, recipientID, strings.Repeat("念", model.MaxMessageContentLen), "", nil, nil)
	assert.NoError(t, err)

	// 超出一个字符被拒绝
	_, err = messageService.Send(context.Background(), senderID, recipientID, strings.Repeat("念", model.MaxMessageContentLen+1), "", nil, nil)
	assert.Error(t, err)
}

// TestListThreadMarksRead 读取会话时未读消息被无条件置为已读
func TestListThreadMarksRead(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	user := &model.User{ID: userID, Username: "alice"}
	other := &model.User{ID: otherID, Username: "bob"}
	conversationID := ConversationID(userID, otherID)

	now := time.Now()
	// 仓库按最新在前返回
	newestFirst := []*model.Message{
		{ID: primitive.NewObjectID(), Sender: otherID, Recipient: userID, ConversationID: conversationID, CreatedAt: now},
		{ID: primitive.NewObjectID(), Sender: userID, Recipient: otherID, ConversationID: conversationID, CreatedAt: now.Add(-time.Minute)},
	}

	mockMessageRepo.On("ListByConversation", mock.Anything, conversationID, 1, 20).Return(newestFirst, 2, nil)
	mockMessageRepo.On("MarkThreadRead", mock.Anything, conversationID, userID).Return(nil)
	mockUserRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*model.User{user, other}, nil)

	messages, pagination, err := messageService.ListThread(context.Background(), userID, otherID, 1, 20)

	assert.NoError(t, err)
	assert.Equal(t, 2, pagination.TotalItems)
	// 展示顺序为时间正序
	assert.Len(t, messages, 2)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))
	// 已读标记是读取的必然副作用
	mockMessageRepo.AssertCalled(t, "MarkThreadRead", mock.Anything, conversationID, userID)
}

// TestMarkReadRecipientOnly 仅接收方能标记已读
func TestMarkReadRecipientOnly(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	messageID := primitive.NewObjectID()
	senderID := primitive.NewObjectID()
	recipientID := primitive.NewObjectID()

	mockMessageRepo.On("FindByID", mock.Anything, messageID).
		Return(&model.Message{ID: messageID, Sender: senderID, Recipient: recipientID}, nil)

	// 发送方不能标记
	err := messageService.MarkRead(context.Background(), messageID, senderID)
	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	// 接收方可以
	mockMessageRepo.On("MarkRead", mock.Anything, messageID).Return(nil)
	err = messageService.MarkRead(context.Background(), messageID, recipientID)
	assert.NoError(t, err)
}

// TestDeleteMessageSenderOnly 仅发送方能删除消息
func TestDeleteMessageSenderOnly(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	messageID := primitive.NewObjectID()
	senderID := primitive.NewObjectID()
	recipientID := primitive.NewObjectID()

	mockMessageRepo.On("FindByID", mock.Anything, messageID).
		Return(&model.Message{ID: messageID, Sender: senderID, Recipient: recipientID}, nil)

	err := messageService.Delete(context.Background(), messageID, recipientID)
	assert.Error(t, err)

	mockMessageRepo.On("Delete", mock.Anything, messageID).Return(nil)
	err = messageService.Delete(context.Background(), messageID, senderID)
	assert.NoError(t, err)
}

// TestListConversations 测试会话列表解析对方用户摘要
func TestListConversations(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	messageService := NewMessageService(mockMessageRepo, mockUserRepo)

	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	other := &model.User{ID: otherID, Username: "bob", DisplayName: "Bob"}

	messages := []*model.Message{
		{
			ID: primitive.NewObjectID(), Sender: otherID, Recipient: userID,
			ConversationID: ConversationID(userID, otherID),
			IsRead:         false, CreatedAt: time.Now(),
		},
	}

	mockMessageRepo.On("ListByParticipant", mock.Anything, userID).Return(messages, nil)
	mockUserRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*model.User{other}, nil)

	conversations, err := messageService.ListConversations(context.Background(), userID)

	assert.NoError(t, err)
	assert.Len(t, conversations, 1)
	assert.Equal(t, 1, conversations[0].UnreadCount)
	assert.Equal(t, "bob", conversations[0].OtherUser.Username)
}
