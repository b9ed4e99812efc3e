package service

import (
	"sort"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversationID 根据两个参与者派生确定性的会话标识：
// 两个ID按字典序排序后用下划线连接，与谁先发起无关。
// 会话标识在消息创建时赋值一次，之后不再重算。
func ConversationID(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	return x + "_" + y
}

// GroupConversations 把一个用户的全部消息按会话分组并归约：
// 每组取最新一条消息作为代表，统计发给 viewer 的未读数，
// 最后按代表消息的时间倒序排列。
// 这是一个显式的分组归约算法，不依赖数据库聚合。
func GroupConversations(messages []*model.Message, viewer primitive.ObjectID) []*model.Conversation {
	groups := make(map[string]*model.Conversation)

	for _, m := range messages {
		conv, ok := groups[m.ConversationID]
		if !ok {
			conv = &model.Conversation{ID: m.ConversationID}
			groups[m.ConversationID] = conv
		}
		if conv.LastMessage == nil || m.CreatedAt.After(conv.LastMessage.CreatedAt) {
			conv.LastMessage = m
		}
		if m.Recipient == viewer && !m.IsRead {
			conv.UnreadCount++
		}
	}

	conversations := make([]*model.Conversation, 0, len(groups))
	for _, conv := range groups {
		conversations = append(conversations, conv)
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations
}
