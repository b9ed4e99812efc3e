package filestore

import (
	"context"
	"strings"
	"time"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postRepository struct {
	store *Store
}

func NewPostRepository(store *Store) *postRepository {
	return &postRepository{store: store}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

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

	r.store.data.Posts = append(r.store.data.Posts, clonePost(post))
	return r.store.save()
}

func (r *postRepository) find(id primitive.ObjectID) *model.Post {
	for _, p := range r.store.data.Posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if p := r.find(id); p != nil {
		return clonePost(p), nil
	}
	return nil, nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	posts := r.store.data.Posts
	for i, p := range posts {
		if p.ID == id {
			r.store.data.Posts = append(posts[:i], posts[i+1:]...)
			return r.store.save()
		}
	}
	return nil
}

func (r *postRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.find(id)
	if p == nil {
		return 0, nil
	}
	if !model.ContainsID(p.Likes, userID) {
		p.Likes = append(p.Likes, userID)
		return len(p.Likes), r.store.save()
	}
	return len(p.Likes), nil
}

func (r *postRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.find(id)
	if p == nil {
		return 0, nil
	}
	for i, v := range p.Likes {
		if v == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return len(p.Likes), r.store.save()
		}
	}
	return len(p.Likes), nil
}

func (r *postRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.find(id)
	if p == nil {
		return nil
	}
	p.Comments = append(p.Comments, *comment)
	return r.store.save()
}

func (r *postRepository) AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.find(id)
	if p == nil {
		return 0, nil
	}
	if !model.ContainsID(p.Shares, userID) {
		p.Shares = append(p.Shares, userID)
		return len(p.Shares), r.store.save()
	}
	return len(p.Shares), nil
}

func (r *postRepository) page(matched []*model.Post, page, pageSize int) ([]*model.Post, int) {
	sortPostsNewestFirst(matched)
	total := len(matched)
	lo, hi := paginate(total, page, pageSize)

	out := make([]*model.Post, 0, hi-lo)
	for _, p := range matched[lo:hi] {
		out = append(out, clonePost(p))
	}
	return out, total
}

func (r *postRepository) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Post, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Post
	for _, p := range r.store.data.Posts {
		if p.Visibility == model.VisibilityPublic {
			matched = append(matched, p)
			continue
		}
		if viewer != nil && p.Visibility == model.VisibilityFollowers && viewer.IsFollowing(p.Author) {
			matched = append(matched, p)
		}
	}
	posts, total := r.page(matched, page, pageSize)
	return posts, total, nil
}

func (r *postRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.Post, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tag := strings.ToLower(query)
	var matched []*model.Post
	for _, p := range r.store.data.Posts {
		if p.Visibility != model.VisibilityPublic {
			continue
		}
		if containsFold(p.Content, query) || containsTag(p.Hashtags, tag) {
			matched = append(matched, p)
		}
	}
	posts, total := r.page(matched, page, pageSize)
	return posts, total, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Post, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Post
	for _, p := range r.store.data.Posts {
		if p.Author == authorID {
			matched = append(matched, p)
		}
	}
	posts, total := r.page(matched, page, pageSize)
	return posts, total, nil
}

func (r *postRepository) RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Post
	for _, p := range r.store.data.Posts {
		if p.Author == authorID && p.Visibility == model.VisibilityPublic {
			matched = append(matched, p)
		}
	}
	posts, _ := r.page(matched, 1, limit)
	return posts, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, p := range r.store.data.Posts {
		if p.Author == authorID {
			count++
		}
	}
	return count, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
