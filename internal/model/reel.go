package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reel 结构体表示一条短视频
type Reel struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Author       primitive.ObjectID   `json:"author" bson:"author"`
	Caption      string               `json:"caption" bson:"caption"`
	VideoURL     string               `json:"videoUrl" bson:"videoUrl"`
	VideoKey     string               `json:"videoKey,omitempty" bson:"videoKey,omitempty"` // 存储层对象键，删除时据此清理文件
	ThumbnailURL string               `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	Duration     int                  `json:"duration" bson:"duration"` // 单位：秒
	Likes        []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments     []Comment            `json:"comments" bson:"comments"`
	Shares       []primitive.ObjectID `json:"shares" bson:"shares"`
	Hashtags     []string             `json:"hashtags" bson:"hashtags"`
	Views        int64                `json:"views" bson:"views"`
	Visibility   string               `json:"visibility" bson:"visibility"`
	IsProcessed  bool                 `json:"isProcessed" bson:"isProcessed"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`

	// 读取侧填充字段，不入库
	AuthorInfo   *UserSummary `json:"authorInfo,omitempty" bson:"-"`
	LikeCount    int          `json:"likeCount" bson:"-"`
	CommentCount int          `json:"commentCount" bson:"-"`
	ShareCount   int          `json:"shareCount" bson:"-"`
	IsLiked      bool         `json:"isLiked" bson:"-"`
}

// FillCounts 根据集合长度填充统计字段
func (r *Reel) FillCounts() {
	r.LikeCount = len(r.Likes)
	r.CommentCount = len(r.Comments)
	r.ShareCount = len(r.Shares)
}
