package service

import (
	"testing"
	"time"

	"thethought-backend/internal/model"
	"thethought-backend/internal/util"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	m.Run()
}

// TestConversationID 测试会话标识的确定性推导
func TestConversationID(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	// 与参与者顺序无关
	assert.Equal(t, ConversationID(a, b), ConversationID(b, a))

	// 小的十六进制串在前
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	assert.Equal(t, x+"_"+y, ConversationID(a, b))
}

// TestGroupConversations 测试会话分组归约
func TestGroupConversations(t *testing.T) {
	viewer := primitive.NewObjectID()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	now := time.Now()
	messages := []*model.Message{
		// 与 alice 的会话：两条未读，一条已读
		{
			ID: primitive.NewObjectID(), Sender: alice, Recipient: viewer,
			ConversationID: ConversationID(viewer, alice),
			IsRead:         false, CreatedAt: now.Add(-3 * time.Hour),
		},
		{
			ID: primitive.NewObjectID(), Sender: alice, Recipient: viewer,
			ConversationID: ConversationID(viewer, alice),
			IsRead:         false, CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID: primitive.NewObjectID(), Sender: viewer, Recipient: alice,
			ConversationID: ConversationID(viewer, alice),
			IsRead:         true, CreatedAt: now.Add(-4 * time.Hour),
		},
		// 与 bob 的会话：最近一条，viewer 发出的未读不计入
		{
			ID: primitive.NewObjectID(), Sender: viewer, Recipient: bob,
			ConversationID: ConversationID(viewer, bob),
			IsRead:         false, CreatedAt: now.Add(-1 * time.Hour),
		},
	}

	conversations := GroupConversations(messages, viewer)

	assert.Len(t, conversations, 2)

	// 按最新消息时间倒序：bob 的会话在前
	assert.Equal(t, ConversationID(viewer, bob), conversations[0].ID)
	assert.Equal(t, ConversationID(viewer, alice), conversations[1].ID)

	// viewer 发出的消息不计入未读
	assert.Equal(t, 0, conversations[0].UnreadCount)
	assert.Equal(t, 2, conversations[1].UnreadCount)

	// 代表消息是组内最新的一条
	assert.Equal(t, messages[3].ID, conversations[0].LastMessage.ID)
	assert.Equal(t, messages[1].ID, conversations[1].LastMessage.ID)
}

// TestGroupConversationsEmpty 没有消息时返回空列表
func TestGroupConversationsEmpty(t *testing.T) {
	conversations := GroupConversations(nil, primitive.NewObjectID())
	assert.Empty(t, conversations)
}
