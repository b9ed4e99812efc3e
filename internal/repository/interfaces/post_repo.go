package interfaces

import (
	"context"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository 定义了帖子集合的数据库操作接口。
// 点赞、评论、转发都是针对持久化文档的原子更新，
// 不允许整读整写（并发请求不能丢失更新）。
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AddLike/RemoveLike/AddShare 返回更新后文档的集合大小，
	// 调用方不得用读快照推算计数。
	AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error)
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error)
	AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error
	AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error)

	// ListFeed 按可见性规则返回按创建时间倒序的分页列表；
	// viewer 为 nil 时只返回公开内容。
	ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Post, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*model.Post, int, error)
	ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Post, int, error)
	RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Post, error)
	CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error)
}
