package service

import (
	"context"
	"time"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/model"
	"thethought-backend/internal/repository/interfaces"
	"thethought-backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 处理用户、认证与社交关系相关的业务逻辑
type UserService struct {
	userRepo       interfaces.UserRepository
	postRepo       interfaces.PostRepository
	reelRepo       interfaces.ReelRepository
	tokenBlacklist TokenBlacklist
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, postRepo interfaces.PostRepository, reelRepo interfaces.ReelRepository, blacklist TokenBlacklist) *UserService {
	return &UserService{
		userRepo:       userRepo,
		postRepo:       postRepo,
		reelRepo:       reelRepo,
		tokenBlacklist: blacklist,
	}
}

// Register 注册新用户
func (s *UserService) Register(ctx context.Context, user *model.User) error {
	existing, err := s.userRepo.FindByUsername(ctx, user.Username)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if existing != nil {
		return errors.New(errors.ErrUserExists, "Username already exists")
	}
	existing, err = s.userRepo.FindByEmail(ctx, user.Email)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if existing != nil {
		return errors.New(errors.ErrUserExists, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "生成密码哈希失败", err)
	}
	user.PasswordHash = string(hashedPassword)
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.Privacy == "" {
		user.Privacy = model.PrivacyPublic
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建用户失败", err)
	}
	util.Logger.Info("用户注册成功", zap.String("username", user.Username))
	return nil
}

// Login 校验凭证并返回用户
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "Invalid email or password")
	}
	return user, nil
}

// Logout 将令牌加入黑名单，有效期与令牌寿命一致
func (s *UserService) Logout(token string) {
	s.tokenBlacklist.Add(token, 24*time.Hour)
}

// IsTokenBlacklisted 判断令牌是否已注销
func (s *UserService) IsTokenBlacklisted(token string) bool {
	return s.tokenBlacklist.Contains(token)
}

// GetUserByID 按ID获取用户
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "User not found")
	}
	return user, nil
}

// UpdateProfile 更新用户可自行修改的资料字段
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, displayName, bio, privacy string) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if displayName != "" {
		user.DisplayName = displayName
	}
	if bio != "" {
		user.Bio = bio
	}
	if privacy != "" {
		if privacy != model.PrivacyPublic && privacy != model.PrivacyPrivate {
			return nil, errors.New(errors.ErrValidation, "Invalid privacy value")
		}
		user.Privacy = privacy
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新用户资料失败", err)
	}
	return user, nil
}

// SetProfilePic 更新头像地址
func (s *UserService) SetProfilePic(ctx context.Context, userID primitive.ObjectID, picURL string) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfilePic = picURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新头像失败", err)
	}
	return user, nil
}

// GetProfile 返回个人主页：最近10条公开帖子与短视频、内容总数，
// 以及查看者已认证时的关注状态
func (s *UserService) GetProfile(ctx context.Context, username string, viewer *model.User) (*model.UserProfile, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "User not found")
	}

	posts, err := s.postRepo.RecentPublicByAuthor(ctx, user.ID, 10)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取用户帖子失败", err)
	}
	reels, err := s.reelRepo.RecentPublicByAuthor(ctx, user.ID, 10)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取用户短视频失败", err)
	}

	var viewerID *primitive.ObjectID
	if viewer != nil {
		viewerID = &viewer.ID
	}
	if err := decoratePosts(ctx, s.userRepo, posts, viewerID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充帖子信息失败", err)
	}
	if err := decorateReels(ctx, s.userRepo, reels, viewerID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充短视频信息失败", err)
	}

	postsCount, err := s.postRepo.CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计帖子数失败", err)
	}
	reelsCount, err := s.reelRepo.CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计短视频数失败", err)
	}

	profile := &model.UserProfile{
		UserSummary:    user.Summary(),
		Bio:            user.Bio,
		Privacy:        user.Privacy,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
		Posts:          posts,
		Reels:          reels,
		PostsCount:     postsCount,
		ReelsCount:     reelsCount,
	}
	if viewer != nil {
		isFollowing := viewer.IsFollowing(user.ID)
		profile.IsFollowing = &isFollowing
	}
	return profile, nil
}

// checkProfileAccess 执行私密账号的访问控制：
// 私密账号的内容只有本人和粉丝可见
func (s *UserService) checkProfileAccess(user *model.User, viewer *model.User) error {
	if user.Privacy != model.PrivacyPrivate {
		return nil
	}
	if viewer != nil && (viewer.ID == user.ID || user.IsFollowedBy(viewer.ID)) {
		return nil
	}
	return errors.New(errors.ErrPrivateProfile, "This user's content is private")
}

// ListUserPosts 分页返回某用户的帖子，受私密账号规则约束
func (s *UserService) ListUserPosts(ctx context.Context, username string, viewer *model.User, page, pageSize int) ([]*model.Post, model.Pagination, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, model.Pagination{}, errors.New(errors.ErrUserNotFound, "User not found")
	}
	if err := s.checkProfileAccess(user, viewer); err != nil {
		return nil, model.Pagination{}, err
	}

	page, pageSize = model.NormalizePage(page, pageSize, 10)
	posts, total, err := s.postRepo.ListByAuthor(ctx, user.ID, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "获取用户帖子失败", err)
	}

	var viewerID *primitive.ObjectID
	if viewer != nil {
		viewerID = &viewer.ID
	}
	if err := decoratePosts(ctx, s.userRepo, posts, viewerID); err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "填充帖子信息失败", err)
	}
	return posts, model.NewPagination(page, pageSize, total), nil
}

// ListUserReels 分页返回某用户的短视频，受私密账号规则约束
func (s *UserService) ListUserReels(ctx context.Context, username string, viewer *model.User, page, pageSize int) ([]*model.Reel, model.Pagination, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, model.Pagination{}, errors.New(errors.ErrUserNotFound, "User not found")
	}
	if err := s.checkProfileAccess(user, viewer); err != nil {
		return nil, model.Pagination{}, err
	}

	page, pageSize = model.NormalizePage(page, pageSize, 10)
	reels, total, err := s.reelRepo.ListByAuthor(ctx, user.ID, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "获取用户短视频失败", err)
	}

	var viewerID *primitive.ObjectID
	if viewer != nil {
		viewerID = &viewer.ID
	}
	if err := decorateReels(ctx, s.userRepo, reels, viewerID); err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "填充短视频信息失败", err)
	}
	return reels, model.NewPagination(page, pageSize, total), nil
}

// listFollowSet 对ID集合分页并解析为用户摘要
func (s *UserService) listFollowSet(ctx context.Context, ids []primitive.ObjectID, page, pageSize int) ([]*model.UserSummary, model.Pagination, error) {
	page, pageSize = model.NormalizePage(page, pageSize, 20)
	total := len(ids)

	lo := (page - 1) * pageSize
	if lo > total {
		lo = total
	}
	hi := lo + pageSize
	if hi > total {
		hi = total
	}

	summaries, err := summarizeUsers(ctx, s.userRepo, ids[lo:hi])
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "解析用户摘要失败", err)
	}

	out := make([]*model.UserSummary, 0, hi-lo)
	for _, id := range ids[lo:hi] {
		out = append(out, summaries[id])
	}
	return out, model.NewPagination(page, pageSize, total), nil
}

// ListFollowers 分页返回粉丝列表
func (s *UserService) ListFollowers(ctx context.Context, username string, page, pageSize int) ([]*model.UserSummary, model.Pagination, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, model.Pagination{}, errors.New(errors.ErrUserNotFound, "User not found")
	}
	return s.listFollowSet(ctx, user.Followers, page, pageSize)
}

// ListFollowing 分页返回关注列表
func (s *UserService) ListFollowing(ctx context.Context, username string, page, pageSize int) ([]*model.UserSummary, model.Pagination, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, model.Pagination{}, errors.New(errors.ErrUserNotFound, "User not found")
	}
	return s.listFollowSet(ctx, user.Following, page, pageSize)
}

// SearchUsers 按用户名或显示名做大小写不敏感的子串匹配
func (s *UserService) SearchUsers(ctx context.Context, query string, page, pageSize int) ([]*model.UserSummary, model.Pagination, error) {
	page, pageSize = model.NormalizePage(page, pageSize, 10)
	users, total, err := s.userRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "搜索用户失败", err)
	}

	summaries := make([]*model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, model.NewPagination(page, pageSize, total), nil
}

// Follow 关注用户
func (s *UserService) Follow(ctx context.Context, followerID primitive.ObjectID, username string) error {
	target, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if target == nil {
		return errors.New(errors.ErrUserNotFound, "User not found")
	}
	if target.ID == followerID {
		return errors.New(errors.ErrValidation, "Cannot follow yourself")
	}
	if err := s.userRepo.AddFollow(ctx, followerID, target.ID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "关注用户失败", err)
	}
	return nil
}

// Unfollow 取消关注
func (s *UserService) Unfollow(ctx context.Context, followerID primitive.ObjectID, username string) error {
	target, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if target == nil {
		return errors.New(errors.ErrUserNotFound, "User not found")
	}
	if err := s.userRepo.RemoveFollow(ctx, followerID, target.ID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "取消关注失败", err)
	}
	return nil
}
