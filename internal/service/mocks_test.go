package service

import (
	"context"

	"thethought-backend/internal/model"
	"thethought-backend/internal/repository/interfaces"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.User, int, error) {
	args := m.Called(ctx, query, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) AddFollow(ctx context.Context, followerID, followedID primitive.ObjectID) error {
	args := m.Called(ctx, followerID, followedID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveFollow(ctx context.Context, followerID, followedID primitive.ObjectID) error {
	args := m.Called(ctx, followerID, followedID)
	return args.Error(0)
}

var _ interfaces.UserRepository = (*MockUserRepository)(nil)

// MockPostRepository 是 PostRepository 接口的模拟实现
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	args := m.Called(ctx, id, comment)
	return args.Error(0)
}

func (m *MockPostRepository) AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(ctx, viewer, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockPostRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(ctx, query, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockPostRepository) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(ctx, authorID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockPostRepository) RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Post, error) {
	args := m.Called(ctx, authorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, authorID)
	return args.Int(0), args.Error(1)
}

var _ interfaces.PostRepository = (*MockPostRepository)(nil)

// MockReelRepository 是 ReelRepository 接口的模拟实现
type MockReelRepository struct {
	mock.Mock
}

func (m *MockReelRepository) Create(ctx context.Context, reel *model.Reel) error {
	args := m.Called(ctx, reel)
	return args.Error(0)
}

func (m *MockReelRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Reel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reel), args.Error(1)
}

func (m *MockReelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReelRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockReelRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockReelRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	args := m.Called(ctx, id, comment)
	return args.Error(0)
}

func (m *MockReelRepository) AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockReelRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReelRepository) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Reel, int, error) {
	args := m.Called(ctx, viewer, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Reel), args.Int(1), args.Error(2)
}

func (m *MockReelRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.Reel, int, error) {
	args := m.Called(ctx, query, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Reel), args.Int(1), args.Error(2)
}

func (m *MockReelRepository) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Reel, int, error) {
	args := m.Called(ctx, authorID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Reel), args.Int(1), args.Error(2)
}

func (m *MockReelRepository) RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Reel, error) {
	args := m.Called(ctx, authorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reel), args.Error(1)
}

func (m *MockReelRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, authorID)
	return args.Int(0), args.Error(1)
}

var _ interfaces.ReelRepository = (*MockReelRepository)(nil)

// MockMessageRepository 是 MessageRepository 接口的模拟实现
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *model.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageRepository) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*model.Message, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]*model.Message, int, error) {
	args := m.Called(ctx, conversationID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Message), args.Int(1), args.Error(2)
}

func (m *MockMessageRepository) MarkThreadRead(ctx context.Context, conversationID string, recipientID primitive.ObjectID) error {
	args := m.Called(ctx, conversationID, recipientID)
	return args.Error(0)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

var _ interfaces.MessageRepository = (*MockMessageRepository)(nil)
