package service

import (
	"context"

	"thethought-backend/internal/model"
	"thethought-backend/internal/repository/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// summarizeUsers 批量解析用户摘要。
// 找不到的用户返回占位摘要：删除用户不级联清理内容，悬空引用必须可读。
func summarizeUsers(ctx context.Context, repo interfaces.UserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.UserSummary, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	users, err := repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	summaries := make(map[primitive.ObjectID]*model.UserSummary, len(unique))
	for _, u := range users {
		summaries[u.ID] = u.Summary()
	}
	for _, id := range unique {
		if summaries[id] == nil {
			summaries[id] = model.DeletedUserSummary(id)
		}
	}
	return summaries, nil
}

// decoratePosts 填充帖子及其评论的作者摘要、统计和查看者点赞状态
func decoratePosts(ctx context.Context, repo interfaces.UserRepository, posts []*model.Post, viewer *primitive.ObjectID) error {
	var ids []primitive.ObjectID
	for _, p := range posts {
		ids = append(ids, p.Author)
		for _, c := range p.Comments {
			ids = append(ids, c.Author)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	summaries, err := summarizeUsers(ctx, repo, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.AuthorInfo = summaries[p.Author]
		for i := range p.Comments {
			p.Comments[i].AuthorInfo = summaries[p.Comments[i].Author]
		}
		p.FillCounts()
		if viewer != nil {
			p.IsLiked = model.ContainsID(p.Likes, *viewer)
		}
	}
	return nil
}

// decorateReels 填充短视频及其评论的作者摘要、统计和查看者点赞状态
func decorateReels(ctx context.Context, repo interfaces.UserRepository, reels []*model.Reel, viewer *primitive.ObjectID) error {
	var ids []primitive.ObjectID
	for _, r := range reels {
		ids = append(ids, r.Author)
		for _, c := range r.Comments {
			ids = append(ids, c.Author)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	summaries, err := summarizeUsers(ctx, repo, ids)
	if err != nil {
		return err
	}
	for _, r := range reels {
		r.AuthorInfo = summaries[r.Author]
		for i := range r.Comments {
			r.Comments[i].AuthorInfo = summaries[r.Comments[i].Author]
		}
		r.FillCounts()
		if viewer != nil {
			r.IsLiked = model.ContainsID(r.Likes, *viewer)
		}
	}
	return nil
}

// decorateMessages 填充消息的发送方与接收方摘要
func decorateMessages(ctx context.Context, repo interfaces.UserRepository, messages []*model.Message) error {
	var ids []primitive.ObjectID
	for _, m := range messages {
		ids = append(ids, m.Sender, m.Recipient)
	}
	if len(ids) == 0 {
		return nil
	}

	summaries, err := summarizeUsers(ctx, repo, ids)
	if err != nil {
		return err
	}
	for _, m := range messages {
		m.SenderInfo = summaries[m.Sender]
		m.RecipientInfo = summaries[m.Recipient]
	}
	return nil
}
