package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 用户隐私级别
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// User 结构体表示用户模型
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	DisplayName  string               `json:"displayName" bson:"displayName"`
	Email        string               `json:"email" bson:"email"`
	PasswordHash string               `json:"-" bson:"passwordHash"` // 密码哈希不应在JSON中暴露
	Bio          string               `json:"bio" bson:"bio"`
	ProfilePic   string               `json:"profilePic" bson:"profilePic"`
	Privacy      string               `json:"privacy" bson:"privacy"`
	IsVerified   bool                 `json:"isVerified" bson:"isVerified"`
	Followers    []primitive.ObjectID `json:"followers" bson:"followers"`
	Following    []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary 是列表和嵌套场景下的用户摘要投影
type UserSummary struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Username    string             `json:"username" bson:"username"`
	DisplayName string             `json:"displayName" bson:"displayName"`
	ProfilePic  string             `json:"profilePic" bson:"profilePic"`
	IsVerified  bool               `json:"isVerified" bson:"isVerified"`
}

// Summary 返回用户的摘要投影
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		ProfilePic:  u.ProfilePic,
		IsVerified:  u.IsVerified,
	}
}

// IsFollowedBy 判断 userID 是否在粉丝集合中
func (u *User) IsFollowedBy(userID primitive.ObjectID) bool {
	return ContainsID(u.Followers, userID)
}

// IsFollowing 判断该用户是否关注了 userID
func (u *User) IsFollowing(userID primitive.ObjectID) bool {
	return ContainsID(u.Following, userID)
}

// DeletedUserSummary 返回已删除用户的占位摘要。
// 删除用户不会级联清理其内容，读取侧需要容忍悬空引用。
func DeletedUserSummary(id primitive.ObjectID) *UserSummary {
	return &UserSummary{
		ID:          id,
		Username:    "deleted",
		DisplayName: "已注销用户",
	}
}

// ContainsID 判断 id 是否属于集合
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// UserProfile 是个人主页响应，附带最近内容与统计
type UserProfile struct {
	*UserSummary
	Bio            string  `json:"bio"`
	Privacy        string  `json:"privacy"`
	FollowersCount int     `json:"followersCount"`
	FollowingCount int     `json:"followingCount"`
	Posts          []*Post `json:"posts"`
	Reels          []*Reel `json:"reels"`
	PostsCount     int     `json:"postsCount"`
	ReelsCount     int     `json:"reelsCount"`
	IsFollowing    *bool   `json:"isFollowing,omitempty"` // 仅在查看者已认证时返回
}
