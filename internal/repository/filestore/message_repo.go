package filestore

import (
	"context"
	"time"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type messageRepository struct {
	store *Store
}

func NewMessageRepository(store *Store) *messageRepository {
	return &messageRepository{store: store}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	message.CreatedAt = time.Now()
	if message.Attachments == nil {
		message.Attachments = []model.Attachment{}
	}

	r.store.data.Messages = append(r.store.data.Messages, cloneMessage(message))
	return r.store.save()
}

func (r *messageRepository) find(id primitive.ObjectID) *model.Message {
	for _, m := range r.store.data.Messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *messageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if m := r.find(id); m != nil {
		return cloneMessage(m), nil
	}
	return nil, nil
}

func (r *messageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	messages := r.store.data.Messages
	for i, m := range messages {
		if m.ID == id {
			r.store.data.Messages = append(messages[:i], messages[i+1:]...)
			return r.store.save()
		}
	}
	return nil
}

func (r *messageRepository) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*model.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Message
	for _, m := range r.store.data.Messages {
		if m.Sender == userID || m.Recipient == userID {
			matched = append(matched, cloneMessage(m))
		}
	}
	sortMessagesNewestFirst(matched)
	return matched, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]*model.Message, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Message
	for _, m := range r.store.data.Messages {
		if m.ConversationID == conversationID {
			matched = append(matched, m)
		}
	}
	sortMessagesNewestFirst(matched)

	total := len(matched)
	lo, hi := paginate(total, page, pageSize)
	out := make([]*model.Message, 0, hi-lo)
	for _, m := range matched[lo:hi] {
		out = append(out, cloneMessage(m))
	}
	return out, total, nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, conversationID string, recipientID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	changed := false
	for _, m := range r.store.data.Messages {
		if m.ConversationID == conversationID && m.Recipient == recipientID && !m.IsRead {
			m.IsRead = true
			readAt := now
			m.ReadAt = &readAt
			changed = true
		}
	}
	if changed {
		return r.store.save()
	}
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := r.find(id)
	if m == nil || m.IsRead {
		return nil
	}
	now := time.Now()
	m.IsRead = true
	m.ReadAt = &now
	return r.store.save()
}

func (r *messageRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, m := range r.store.data.Messages {
		if m.Recipient == userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}
