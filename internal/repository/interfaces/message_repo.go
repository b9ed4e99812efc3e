package interfaces

import (
	"context"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageRepository 定义了私信集合的数据库操作接口
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ListByParticipant 返回用户作为发送方或接收方的全部消息，
	// 会话分组在服务层完成
	ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*model.Message, error)

	// ListByConversation 按创建时间倒序分页返回会话内消息
	ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]*model.Message, int, error)

	// MarkThreadRead 将会话内发给 recipientID 的未读消息全部置为已读
	MarkThreadRead(ctx context.Context, conversationID string, recipientID primitive.ObjectID) error
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int, error)
}
