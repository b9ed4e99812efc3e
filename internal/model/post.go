package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 内容可见性级别
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// 内容长度上限
const (
	MaxPostContentLen    = 1000
	MaxReelCaptionLen    = 500
	MaxCommentContentLen = 500
	MaxMessageContentLen = 1000
)

// Comment 是帖子和短视频下的有序评论
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`

	// 读取侧填充的作者摘要，不入库
	AuthorInfo *UserSummary `json:"authorInfo,omitempty" bson:"-"`
}

// Post 结构体表示一条帖子
type Post struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Author     primitive.ObjectID   `json:"author" bson:"author"`
	Content    string               `json:"content" bson:"content"`
	Visibility string               `json:"visibility" bson:"visibility"`
	Likes      []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments   []Comment            `json:"comments" bson:"comments"`
	Shares     []primitive.ObjectID `json:"shares" bson:"shares"`
	Hashtags   []string             `json:"hashtags" bson:"hashtags"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updatedAt"`

	// 读取侧填充字段，不入库
	AuthorInfo   *UserSummary `json:"authorInfo,omitempty" bson:"-"`
	LikeCount    int          `json:"likeCount" bson:"-"`
	CommentCount int          `json:"commentCount" bson:"-"`
	ShareCount   int          `json:"shareCount" bson:"-"`
	IsLiked      bool         `json:"isLiked" bson:"-"`
}

// FillCounts 根据集合长度填充统计字段
func (p *Post) FillCounts() {
	p.LikeCount = len(p.Likes)
	p.CommentCount = len(p.Comments)
	p.ShareCount = len(p.Shares)
}
