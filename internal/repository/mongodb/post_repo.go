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

type postRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *postRepository {
	return &postRepository{coll: db.Collection("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	if post.Shares == nil {
		post.Shares = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, post)
	return err
}

func (r *postRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var post model.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// mutate 执行更新并返回更新后的文档，文档已不存在时返回 nil
func (r *postRepository) mutate(ctx context.Context, id primitive.ObjectID, update bson.M) (*model.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post model.Post
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	post, err := r.mutate(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil || post == nil {
		return 0, err
	}
	return len(post.Likes), nil
}

func (r *postRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	post, err := r.mutate(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil || post == nil {
		return 0, err
	}
	return len(post.Likes), nil
}

func (r *postRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": comment}})
	return err
}

func (r *postRepository) AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	post, err := r.mutate(ctx, id, bson.M{"$addToSet": bson.M{"shares": userID}})
	if err != nil || post == nil {
		return 0, err
	}
	return len(post.Shares), nil
}

func (r *postRepository) list(ctx context.Context, filter bson.M, page, pageSize int) ([]*model.Post, int, error) {
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, filter, findPageOpts(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []*model.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, int(total), nil
}

func (r *postRepository) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Post, int, error) {
	return r.list(ctx, feedFilter(viewer), page, pageSize)
}

func (r *postRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.Post, int, error) {
	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"content": containsRegex(query)},
				bson.M{"hashtags": strings.ToLower(query)},
			}},
			bson.M{"visibility": model.VisibilityPublic},
		},
	}
	return r.list(ctx, filter, page, pageSize)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Post, int, error) {
	return r.list(ctx, bson.M{"author": authorID}, page, pageSize)
}

func (r *postRepository) RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Post, error) {
	filter := bson.M{"author": authorID, "visibility": model.VisibilityPublic}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []*model.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{"author": authorID})
	return int(total), err
}
