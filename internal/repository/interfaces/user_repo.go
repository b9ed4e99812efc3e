package interfaces

import (
	"context"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository 定义了用户与社交关系的数据库操作接口。
// 查询方法在记录不存在时返回 (nil, nil)。
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Search(ctx context.Context, query string, page, pageSize int) ([]*model.User, int, error)

	// 关注关系必须作为原子集合更新应用到两个用户文档
	AddFollow(ctx context.Context, followerID, followedID primitive.ObjectID) error
	RemoveFollow(ctx context.Context, followerID, followedID primitive.ObjectID) error
}
