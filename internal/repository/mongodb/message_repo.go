package mongodb

import (
	"context"
	"time"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *messageRepository {
	return &messageRepository{coll: db.Collection("messages")}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	message.CreatedAt = time.Now()
	if message.Attachments == nil {
		message.Attachments = []model.Attachment{}
	}
	_, err := r.coll.InsertOne(ctx, message)
	return err
}

func (r *messageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	var message model.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *messageRepository) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*model.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": userID},
		bson.M{"recipient": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]*model.Message, int, error) {
	filter := bson.M{"conversationId": conversationID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, filter, findPageOpts(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	return messages, int(total), nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, conversationID string, recipientID primitive.ObjectID) error {
	filter := bson.M{
		"conversationId": conversationID,
		"recipient":      recipientID,
		"isRead":         false,
	}
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": time.Now()}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *messageRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": time.Now()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *messageRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{"recipient": userID, "isRead": false})
	return int(total), err
}
