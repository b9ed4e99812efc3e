package service

import (
	"context"
	"testing"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(userRepo *MockUserRepository, postRepo *MockPostRepository, reelRepo *MockReelRepository) *UserService {
	return NewUserService(userRepo, postRepo, reelRepo, NewMemoryBlacklist())
}

// TestRegister 测试用户注册
func TestRegister(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newUserService(mockUserRepo, new(MockPostRepository), new(MockReelRepository))

	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, nil)
	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, nil)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "password123",
	}
	err := userService.Register(context.Background(), user)

	assert.NoError(t, err)
	// 密码已被哈希
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	// 显示名和可见性有默认值
	assert.Equal(t, "alice", user.DisplayName)
	assert.Equal(t, model.PrivacyPublic, user.Privacy)
	mockUserRepo.AssertExpectations(t)
}

// TestRegisterDuplicateUsername 用户名重复时注册失败
func TestRegisterDuplicateUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newUserService(mockUserRepo, new(MockPostRepository), new(MockReelRepository))

	existing := &model.User{ID: primitive.NewObjectID(), Username: "alice"}
	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(existing, nil)

	err := userService.Register(context.Background(), &model.User{Username: "alice", Email: "new@example.com", PasswordHash: "pw"})

	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrUserExists, appErr.Code)
	mockUserRepo.AssertNotCalled(t, "Create")
}

// TestLogin 测试登录凭证校验
func TestLogin(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newUserService(mockUserRepo, new(MockPostRepository), new(MockReelRepository))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	user := &model.User{
		ID:           primitive.NewObjectID(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}
	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(user, nil)

	got, err := userService.Login(context.Background(), "alice@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// 错误密码
	_, err = userService.Login(context.Background(), "alice@example.com", "wrong")
	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrInvalidCredentials, appErr.Code)
}

// TestLogoutBlacklistsToken 注销后的令牌被黑名单拦截
func TestLogoutBlacklistsToken(t *testing.T) {
	userService := newUserService(new(MockUserRepository), new(MockPostRepository), new(MockReelRepository))

	assert.False(t, userService.IsTokenBlacklisted("some-token"))
	userService.Logout("some-token")
	assert.True(t, userService.IsTokenBlacklisted("some-token"))
}

// TestListUserPostsPrivateGate 私密账号的内容只有本人和粉丝可见
func TestListUserPostsPrivateGate(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockPostRepo := new(MockPostRepository)
	userService := newUserService(mockUserRepo, mockPostRepo, new(MockReelRepository))

	followerID := primitive.NewObjectID()
	target := &model.User{
		ID:        primitive.NewObjectID(),
		Username:  "bob",
		Privacy:   model.PrivacyPrivate,
		Followers: []primitive.ObjectID{followerID},
	}
	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(target, nil)

	// 未认证查看者
	_, _, err := userService.ListUserPosts(context.Background(), "bob", nil, 1, 10)
	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrPrivateProfile, appErr.Code)

	// 陌生人
	stranger := &model.User{ID: primitive.NewObjectID()}
	_, _, err = userService.ListUserPosts(context.Background(), "bob", stranger, 1, 10)
	assert.Error(t, err)

	// 粉丝可见
	follower := &model.User{ID: followerID}
	mockPostRepo.On("ListByAuthor", mock.Anything, target.ID, 1, 10).Return([]*model.Post{}, 0, nil)
	_, _, err = userService.ListUserPosts(context.Background(), "bob", follower, 1, 10)
	assert.NoError(t, err)
}

// TestGetProfileFollowState 已认证查看者的主页带关注状态
func TestGetProfileFollowState(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockPostRepo := new(MockPostRepository)
	mockReelRepo := new(MockReelRepository)
	userService := newUserService(mockUserRepo, mockPostRepo, mockReelRepo)

	target := &model.User{ID: primitive.NewObjectID(), Username: "bob"}
	viewer := &model.User{
		ID:        primitive.NewObjectID(),
		Following: []primitive.ObjectID{target.ID},
	}

	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(target, nil)
	mockPostRepo.On("RecentPublicByAuthor", mock.Anything, target.ID, 10).Return([]*model.Post{}, nil)
	mockReelRepo.On("RecentPublicByAuthor", mock.Anything, target.ID, 10).Return([]*model.Reel{}, nil)
	mockPostRepo.On("CountByAuthor", mock.Anything, target.ID).Return(3, nil)
	mockReelRepo.On("CountByAuthor", mock.Anything, target.ID).Return(1, nil)

	profile, err := userService.GetProfile(context.Background(), "bob", viewer)

	assert.NoError(t, err)
	assert.Equal(t, 3, profile.PostsCount)
	assert.Equal(t, 1, profile.ReelsCount)
	assert.NotNil(t, profile.IsFollowing)
	assert.True(t, *profile.IsFollowing)

	// 未认证时不带关注状态
	anonymous, err := userService.GetProfile(context.Background(), "bob", nil)
	assert.NoError(t, err)
	assert.Nil(t, anonymous.IsFollowing)
}

// TestFollowSelf 不允许关注自己
func TestFollowSelf(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newUserService(mockUserRepo, new(MockPostRepository), new(MockReelRepository))

	me := &model.User{ID: primitive.NewObjectID(), Username: "alice"}
	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(me, nil)

	err := userService.Follow(context.Background(), me.ID, "alice")

	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	mockUserRepo.AssertNotCalled(t, "AddFollow")
}

// TestListFollowersPagination 粉丝列表对ID集合分页
func TestListFollowersPagination(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	userService := newUserService(mockUserRepo, new(MockPostRepository), new(MockReelRepository))

	followers := make([]primitive.ObjectID, 15)
	followerUsers := make([]*model.User, 15)
	for i := range followers {
		followers[i] = primitive.NewObjectID()
		followerUsers[i] = &model.User{ID: followers[i], Username: "u"}
	}
	target := &model.User{ID: primitive.NewObjectID(), Username: "bob", Followers: followers}

	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(target, nil)
	mockUserRepo.On("FindByIDs", mock.Anything, mock.Anything).Return(followerUsers, nil)

	page2, pagination, err := userService.ListFollowers(context.Background(), "bob", 2, 10)

	assert.NoError(t, err)
	assert.Len(t, page2, 5)
	assert.Equal(t, 15, pagination.TotalItems)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
}

// TestDeletedUserPlaceholder 已注销作者解析为占位摘要
func TestDeletedUserPlaceholder(t *testing.T) {
	mockPostRepo := new(MockPostRepository)
	mockUserRepo := new(MockUserRepository)
	postService := NewPostService(mockPostRepo, mockUserRepo)

	ghostID := primitive.NewObjectID()
	post := &model.Post{ID: primitive.NewObjectID(), Author: ghostID, Visibility: model.VisibilityPublic}

	mockPostRepo.On("FindByID", mock.Anything, post.ID).Return(post, nil)
	// 作者记录已不存在
	mockUserRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*model.User{}, nil)

	got, err := postService.GetByID(context.Background(), post.ID, nil)

	assert.NoError(t, err)
	assert.NotNil(t, got.AuthorInfo)
	assert.Equal(t, "deleted", got.AuthorInfo.Username)
}
