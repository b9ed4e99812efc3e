package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 消息类型
const (
	MessageTypeText      = "text"
	MessageTypeImage     = "image"
	MessageTypeVideo     = "video"
	MessageTypePostShare = "post_share"
	MessageTypeReelShare = "reel_share"
)

// IsValidMessageType 校验消息类型枚举
func IsValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypePostShare, MessageTypeReelShare:
		return true
	}
	return false
}

// Attachment 是消息附件
type Attachment struct {
	URL      string `json:"url" bson:"url"`
	Filename string `json:"filename,omitempty" bson:"filename,omitempty"`
	Mimetype string `json:"mimetype,omitempty" bson:"mimetype,omitempty"`
	Size     int64  `json:"size,omitempty" bson:"size,omitempty"`
}

// Message 结构体表示一条私信。
// ConversationID 在创建时派生一次，之后不再重算。
type Message struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Sender         primitive.ObjectID  `json:"sender" bson:"sender"`
	Recipient      primitive.ObjectID  `json:"recipient" bson:"recipient"`
	Content        string              `json:"content" bson:"content"`
	MessageType    string              `json:"messageType" bson:"messageType"`
	Attachments    []Attachment        `json:"attachments" bson:"attachments"`
	IsRead         bool                `json:"isRead" bson:"isRead"`
	ReadAt         *time.Time          `json:"readAt,omitempty" bson:"readAt,omitempty"`
	IsEdited       bool                `json:"isEdited" bson:"isEdited"`
	EditedAt       *time.Time          `json:"editedAt,omitempty" bson:"editedAt,omitempty"`
	ReplyTo        *primitive.ObjectID `json:"replyTo,omitempty" bson:"replyTo,omitempty"`
	ConversationID string              `json:"conversationId" bson:"conversationId"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`

	// 读取侧填充字段，不入库
	SenderInfo    *UserSummary `json:"senderInfo,omitempty" bson:"-"`
	RecipientInfo *UserSummary `json:"recipientInfo,omitempty" bson:"-"`
}

// OtherParticipant 返回会话中不是 userID 的另一方
func (m *Message) OtherParticipant(userID primitive.ObjectID) primitive.ObjectID {
	if m.Sender == userID {
		return m.Recipient
	}
	return m.Sender
}

// Conversation 是会话列表中的一个条目
type Conversation struct {
	ID          string       `json:"id"`
	LastMessage *Message     `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
	OtherUser   *UserSummary `json:"otherUser,omitempty"`
}
