package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"thethought-backend/internal/errors"
	"thethought-backend/internal/model"
	"thethought-backend/internal/repository/interfaces"
	"thethought-backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PostService 处理与帖子相关的业务逻辑
type PostService struct {
	postRepo interfaces.PostRepository
	userRepo interfaces.UserRepository
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(postRepo interfaces.PostRepository, userRepo interfaces.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// Create 发布一条新帖子，话题标签从正文派生
func (s *PostService) Create(ctx context.Context, authorID primitive.ObjectID, content, visibility string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New(errors.ErrValidation, "Content is required")
	}
	// 长度上限按字符数计，多字节字符算一个字符
	if utf8.RuneCountInString(content) > model.MaxPostContentLen {
		return nil, errors.New(errors.ErrValidation, "Content too long")
	}
	if visibility == "" {
		visibility = model.VisibilityPublic
	}

	post := &model.Post{
		Author:     authorID,
		Content:    content,
		Visibility: visibility,
		Hashtags:   util.ExtractHashtags(content),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建帖子失败", err)
	}

	util.Logger.Info("帖子创建成功", zap.String("post_id", post.ID.Hex()))
	if err := decoratePosts(ctx, s.userRepo, []*model.Post{post}, &authorID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充帖子信息失败", err)
	}
	return post, nil
}

// GetByID 获取单条帖子
func (s *PostService) GetByID(ctx context.Context, id primitive.ObjectID, viewer *primitive.ObjectID) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取帖子失败", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post not found")
	}
	if err := decoratePosts(ctx, s.userRepo, []*model.Post{post}, viewer); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充帖子信息失败", err)
	}
	return post, nil
}

// ToggleLike 点赞开关：已点赞则取消，未点赞则添加。
// 集合变更是针对持久化文档的原子更新，并发请求不会丢失。
func (s *PostService) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (bool, int, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return false, 0, errors.Wrap(errors.ErrDatabase, "获取帖子失败", err)
	}
	if post == nil {
		return false, 0, errors.New(errors.ErrPostNotFound, "Post not found")
	}

	isLiked := model.ContainsID(post.Likes, userID)
	var likeCount int
	if isLiked {
		likeCount, err = s.postRepo.RemoveLike(ctx, id, userID)
	} else {
		likeCount, err = s.postRepo.AddLike(ctx, id, userID)
	}
	if err != nil {
		return false, 0, errors.Wrap(errors.ErrDatabase, "更新点赞失败", err)
	}
	// 计数取自更新后的文档，并发点赞不会返回过期值
	return !isLiked, likeCount, nil
}

// AddComment 追加一条评论到有序评论列表
func (s *PostService) AddComment(ctx context.Context, id, authorID primitive.ObjectID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New(errors.ErrValidation, "Comment content is required")
	}
	if utf8.RuneCountInString(content) > model.MaxCommentContentLen {
		return nil, errors.New(errors.ErrValidation, "Comment too long")
	}

	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取帖子失败", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post not found")
	}

	comment := &model.Comment{
		ID:        primitive.NewObjectID(),
		Author:    authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.postRepo.AddComment(ctx, id, comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "添加评论失败", err)
	}

	summaries, err := summarizeUsers(ctx, s.userRepo, []primitive.ObjectID{authorID})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充评论信息失败", err)
	}
	comment.AuthorInfo = summaries[authorID]
	return comment, nil
}

// Share 单向转发：只添加，不可撤销
func (s *PostService) Share(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "获取帖子失败", err)
	}
	if post == nil {
		return 0, errors.New(errors.ErrPostNotFound, "Post not found")
	}

	if model.ContainsID(post.Shares, userID) {
		return len(post.Shares), nil
	}
	shareCount, err := s.postRepo.AddShare(ctx, id, userID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "转发帖子失败", err)
	}
	return shareCount, nil
}

// Delete 删除帖子，仅作者本人可操作
func (s *PostService) Delete(ctx context.Context, id, requester primitive.ObjectID) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "获取帖子失败", err)
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "Post not found")
	}
	if post.Author != requester {
		return errors.New(errors.ErrForbidden, "Not authorized to delete this post")
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除帖子失败", err)
	}
	util.Logger.Info("帖子已删除", zap.String("post_id", id.Hex()))
	return nil
}

// ListFeed 返回信息流：公开内容加上已关注作者的 public/followers 内容
func (s *PostService) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Post, model.Pagination, error) {
	page, pageSize = model.NormalizePage(page, pageSize, 10)
	posts, total, err := s.postRepo.ListFeed(ctx, viewer, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "获取帖子列表失败", err)
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

// Search 在公开帖子中做大小写不敏感的子串或话题标签匹配
func (s *PostService) Search(ctx context.Context, query string, viewer *primitive.ObjectID, page, pageSize int) ([]*model.Post, model.Pagination, error) {
	page, pageSize = model.NormalizePage(page, pageSize, 10)
	posts, total, err := s.postRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "搜索帖子失败", err)
	}
	if err := decoratePosts(ctx, s.userRepo, posts, viewer); err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "填充帖子信息失败", err)
	}
	return posts, model.NewPagination(page, pageSize, total), nil
}
