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

// ReelService 处理与短视频相关的业务逻辑
type ReelService struct {
	reelRepo interfaces.ReelRepository
	userRepo interfaces.UserRepository
}

// NewReelService 创建一个新的 ReelService 实例
func NewReelService(reelRepo interfaces.ReelRepository, userRepo interfaces.UserRepository) *ReelService {
	return &ReelService{reelRepo: reelRepo, userRepo: userRepo}
}

// Create 发布一条短视频，话题标签从配文派生。
// videoKey 是存储层的对象键，随记录保存，删除时按键清理文件。
func (s *ReelService) Create(ctx context.Context, authorID primitive.ObjectID, caption, videoURL, videoKey, visibility string, duration int) (*model.Reel, error) {
	caption = strings.TrimSpace(caption)
	// 长度上限按字符数计，多字节字符算一个字符
	if utf8.RuneCountInString(caption) > model.MaxReelCaptionLen {
		return nil, errors.New(errors.ErrValidation, "Caption too long")
	}
	if videoURL == "" {
		return nil, errors.New(errors.ErrValidation, "Video file is required")
	}
	if duration <= 0 {
		return nil, errors.New(errors.ErrValidation, "Video duration is required")
	}
	if visibility == "" {
		visibility = model.VisibilityPublic
	}

	reel := &model.Reel{
		Author:     authorID,
		Caption:    caption,
		VideoURL:   videoURL,
		VideoKey:   videoKey,
		Duration:   duration,
		Visibility: visibility,
		Hashtags:   util.ExtractHashtags(caption),
	}
	if err := s.reelRepo.Create(ctx, reel); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建短视频失败", err)
	}

	util.Logger.Info("短视频创建成功", zap.String("reel_id", reel.ID.Hex()))
	if err := decorateReels(ctx, s.userRepo, []*model.Reel{reel}, &authorID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充短视频信息失败", err)
	}
	return reel, nil
}

// GetByID 获取单条短视频并累加播放计数
func (s *ReelService) GetByID(ctx context.Context, id primitive.ObjectID, viewer *primitive.ObjectID) (*model.Reel, error) {
	reel, err := s.reelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取短视频失败", err)
	}
	if reel == nil {
		return nil, errors.New(errors.ErrReelNotFound, "Reel not found")
	}

	if err := s.reelRepo.IncrementViews(ctx, id); err != nil {
		// 播放计数失败不影响读取
		util.Logger.Warn("更新播放计数失败", zap.String("reel_id", id.Hex()), zap.Error(err))
	} else {
		reel.Views++
	}

	if err := decorateReels(ctx, s.userRepo, []*model.Reel{reel}, viewer); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充短视频信息失败", err)
	}
	return reel, nil
}

// ToggleLike 点赞开关，语义与帖子一致
func (s *ReelService) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (bool, int, error) {
	reel, err := s.reelRepo.FindByID(ctx, id)
	if err != nil {
		return false, 0, errors.Wrap(errors.ErrDatabase, "获取短视频失败", err)
	}
	if reel == nil {
		return false, 0, errors.New(errors.ErrReelNotFound, "Reel not found")
	}

	isLiked := model.ContainsID(reel.Likes, userID)
	var likeCount int
	if isLiked {
		likeCount, err = s.reelRepo.RemoveLike(ctx, id, userID)
	} else {
		likeCount, err = s.reelRepo.AddLike(ctx, id, userID)
	}
	if err != nil {
		return false, 0, errors.Wrap(errors.ErrDatabase, "更新点赞失败", err)
	}
	// 计数取自更新后的文档，并发点赞不会返回过期值
	return !isLiked, likeCount, nil
}

// AddComment 追加一条评论
func (s *ReelService) AddComment(ctx context.Context, id, authorID primitive.ObjectID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New(errors.ErrValidation, "Comment content is required")
	}
	if utf8.RuneCountInString(content) > model.MaxCommentContentLen {
		return nil, errors.New(errors.ErrValidation, "Comment too long")
	}

	reel, err := s.reelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取短视频失败", err)
	}
	if reel == nil {
		return nil, errors.New(errors.ErrReelNotFound, "Reel not found")
	}

	comment := &model.Comment{
		ID:        primitive.NewObjectID(),
		Author:    authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.reelRepo.AddComment(ctx, id, comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "添加评论失败", err)
	}

	summaries, err := summarizeUsers(ctx, s.userRepo, []primitive.ObjectID{authorID})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "填充评论信息失败", err)
	}
	comment.AuthorInfo = summaries[authorID]
	return comment, nil
}

// Share 单向转发
func (s *ReelService) Share(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	reel, err := s.reelRepo.FindByID(ctx, id)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "获取短视频失败", err)
	}
	if reel == nil {
		return 0, errors.New(errors.ErrReelNotFound, "Reel not found")
	}

	if model.ContainsID(reel.Shares, userID) {
		return len(reel.Shares), nil
	}
	shareCount, err := s.reelRepo.AddShare(ctx, id, userID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "转发短视频失败", err)
	}
	return shareCount, nil
}

// Delete 删除短视频，仅作者本人可操作。
// 返回被删除的记录，调用方负责清理视频文件。
func (s *ReelService) Delete(ctx context.Context, id, requester primitive.ObjectID) (*model.Reel, error) {
	reel, err := s.reelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取短视频失败", err)
	}
	if reel == nil {
		return nil, errors.New(errors.ErrReelNotFound, "Reel not found")
	}
	if reel.Author != requester {
		return nil, errors.New(errors.ErrForbidden, "Not authorized to delete this reel")
	}
	if err := s.reelRepo.Delete(ctx, id); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "删除短视频失败", err)
	}
	util.Logger.Info("短视频已删除", zap.String("reel_id", id.Hex()))
	return reel, nil
}

// ListFeed 返回短视频信息流
func (s *ReelService) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Reel, model.Pagination, error) {
	page, pageSize = model.NormalizePage(page, pageSize, 10)
	reels, total, err := s.reelRepo.ListFeed(ctx, viewer, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "获取短视频列表失败", err)
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

// Search 在公开短视频中做配文子串或话题标签匹配
func (s *ReelService) Search(ctx context.Context, query string, viewer *primitive.ObjectID, page, pageSize int) ([]*model.Reel, model.Pagination, error) {
	page, pageSize = model.NormalizePage(page, pageSize, 10)
	reels, total, err := s.reelRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "搜索短视频失败", err)
	}
	if err := decorateReels(ctx, s.userRepo, reels, viewer); err != nil {
		return nil, model.Pagination{}, errors.Wrap(errors.ErrDatabase, "填充短视频信息失败", err)
	}
	return reels, model.NewPagination(page, pageSize, total), nil
}
