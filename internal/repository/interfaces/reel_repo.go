package interfaces

import (
	"context"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReelRepository 定义了短视频集合的数据库操作接口
type ReelRepository interface {
	Create(ctx context.Context, reel *model.Reel) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Reel, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AddLike/RemoveLike/AddShare 返回更新后文档的集合大小
	AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error)
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error)
	AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error
	AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error

	ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Reel, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*model.Reel, int, error)
	ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Reel, int, error)
	RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Reel, error)
	CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error)
}
