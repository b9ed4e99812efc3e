package mongodb

import (
	"context"
	"strings"
	"time"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reelRepository struct {
	coll *mongo.Collection
}

func NewReelRepository(db *mongo.Database) *reelRepository {
	return &reelRepository{coll: db.Collection("reels")}
}

func (r *reelRepository) Create(ctx context.Context, reel *model.Reel) error {
	if reel.ID.IsZero() {
		reel.ID = primitive.NewObjectID()
	}
	now := time.Now()
	reel.CreatedAt = now
	reel.UpdatedAt = now
	if reel.Likes == nil {
		reel.Likes = []primitive.ObjectID{}
	}
	if reel.Comments == nil {
		reel.Comments = []model.Comment{}
	}
	if reel.Shares == nil {
		reel.Shares = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, reel)
	return err
}

func (r *reelRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Reel, error) {
	var reel model.Reel
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&reel)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &reel, nil
}

func (r *reelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// mutate 执行更新并返回更新后的文档，文档已不存在时返回 nil
func (r *reelRepository) mutate(ctx context.Context, id primitive.ObjectID, update bson.M) (*model.Reel, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var reel model.Reel
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&reel)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &reel, nil
}

func (r *reelRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	reel, err := r.mutate(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil || reel == nil {
		return 0, err
	}
	return len(reel.Likes), nil
}

func (r *reelRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	reel, err := r.mutate(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil || reel == nil {
		return 0, err
	}
	return len(reel.Likes), nil
}

func (r *reelRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": comment}})
	return err
}

func (r *reelRepository) AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	reel, err := r.mutate(ctx, id, bson.M{"$addToSet": bson.M{"shares": userID}})
	if err != nil || reel == nil {
		return 0, err
	}
	return len(reel.Shares), nil
}

func (r *reelRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}})
	return err
}

func (r *reelRepository) list(ctx context.Context, filter bson.M, page, pageSize int) ([]*model.Reel, int, error) {
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, filter, findPageOpts(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reels []*model.Reel
	if err := cursor.All(ctx, &reels); err != nil {
		return nil, 0, err
	}
	return reels, int(total), nil
}

func (r *reelRepository) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Reel, int, error) {
	return r.list(ctx, feedFilter(viewer), page, pageSize)
}

func (r *reelRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.Reel, int, error) {
	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"caption": containsRegex(query)},
				bson.M{"hashtags": strings.ToLower(query)},
			}},
			bson.M{"visibility": model.VisibilityPublic},
		},
	}
	return r.list(ctx, filter, page, pageSize)
}

func (r *reelRepository) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Reel, int, error) {
	return r.list(ctx, bson.M{"author": authorID}, page, pageSize)
}

func (r *reelRepository) RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Reel, error) {
	filter := bson.M{"author": authorID, "visibility": model.VisibilityPublic}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reels []*model.Reel
	if err := cursor.All(ctx, &reels); err != nil {
		return nil, err
	}
	return reels, nil
}

func (r *reelRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{"author": authorID})
	return int(total), err
}
