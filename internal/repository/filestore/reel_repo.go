package filestore

import (
	"context"
	"strings"
	"time"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reelRepository struct {
	store *Store
}

func NewReelRepository(store *Store) *reelRepository {
	return &reelRepository{store: store}
}

func (r *reelRepository) Create(ctx context.Context, reel *model.Reel) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

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

	r.store.data.Reels = append(r.store.data.Reels, cloneReel(reel))
	return r.store.save()
}

func (r *reelRepository) find(id primitive.ObjectID) *model.Reel {
	for _, reel := range r.store.data.Reels {
		if reel.ID == id {
			return reel
		}
	}
	return nil
}

func (r *reelRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Reel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if reel := r.find(id); reel != nil {
		return cloneReel(reel), nil
	}
	return nil, nil
}

func (r *reelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reels := r.store.data.Reels
	for i, reel := range reels {
		if reel.ID == id {
			r.store.data.Reels = append(reels[:i], reels[i+1:]...)
			return r.store.save()
		}
	}
	return nil
}

func (r *reelRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reel := r.find(id)
	if reel == nil {
		return 0, nil
	}
	if !model.ContainsID(reel.Likes, userID) {
		reel.Likes = append(reel.Likes, userID)
		return len(reel.Likes), r.store.save()
	}
	return len(reel.Likes), nil
}

func (r *reelRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reel := r.find(id)
	if reel == nil {
		return 0, nil
	}
	for i, v := range reel.Likes {
		if v == userID {
			reel.Likes = append(reel.Likes[:i], reel.Likes[i+1:]...)
			return len(reel.Likes), r.store.save()
		}
	}
	return len(reel.Likes), nil
}

func (r *reelRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment *model.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reel := r.find(id)
	if reel == nil {
		return nil
	}
	reel.Comments = append(reel.Comments, *comment)
	return r.store.save()
}

func (r *reelRepository) AddShare(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reel := r.find(id)
	if reel == nil {
		return 0, nil
	}
	if !model.ContainsID(reel.Shares, userID) {
		reel.Shares = append(reel.Shares, userID)
		return len(reel.Shares), r.store.save()
	}
	return len(reel.Shares), nil
}

func (r *reelRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reel := r.find(id)
	if reel == nil {
		return nil
	}
	reel.Views++
	return r.store.save()
}

func (r *reelRepository) page(matched []*model.Reel, page, pageSize int) ([]*model.Reel, int) {
	sortReelsNewestFirst(matched)
	total := len(matched)
	lo, hi := paginate(total, page, pageSize)

	out := make([]*model.Reel, 0, hi-lo)
	for _, reel := range matched[lo:hi] {
		out = append(out, cloneReel(reel))
	}
	return out, total
}

func (r *reelRepository) ListFeed(ctx context.Context, viewer *model.User, page, pageSize int) ([]*model.Reel, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Reel
	for _, reel := range r.store.data.Reels {
		if reel.Visibility == model.VisibilityPublic {
			matched = append(matched, reel)
			continue
		}
		if viewer != nil && reel.Visibility == model.VisibilityFollowers && viewer.IsFollowing(reel.Author) {
			matched = append(matched, reel)
		}
	}
	reels, total := r.page(matched, page, pageSize)
	return reels, total, nil
}

func (r *reelRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.Reel, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tag := strings.ToLower(query)
	var matched []*model.Reel
	for _, reel := range r.store.data.Reels {
		if reel.Visibility != model.VisibilityPublic {
			continue
		}
		if containsFold(reel.Caption, query) || containsTag(reel.Hashtags, tag) {
			matched = append(matched, reel)
		}
	}
	reels, total := r.page(matched, page, pageSize)
	return reels, total, nil
}

func (r *reelRepository) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, page, pageSize int) ([]*model.Reel, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Reel
	for _, reel := range r.store.data.Reels {
		if reel.Author == authorID {
			matched = append(matched, reel)
		}
	}
	reels, total := r.page(matched, page, pageSize)
	return reels, total, nil
}

func (r *reelRepository) RecentPublicByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]*model.Reel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Reel
	for _, reel := range r.store.data.Reels {
		if reel.Author == authorID && reel.Visibility == model.VisibilityPublic {
			matched = append(matched, reel)
		}
	}
	reels, _ := r.page(matched, 1, limit)
	return reels, nil
}

func (r *reelRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, reel := range r.store.data.Reels {
		if reel.Author == authorID {
			count++
		}
	}
	return count, nil
}
