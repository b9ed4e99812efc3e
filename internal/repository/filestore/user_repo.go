package filestore

import (
	"context"
	"sort"
	"time"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *userRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	r.store.data.Users = append(r.store.data.Users, userRecord{
		User:         cloneUser(user),
		PasswordHash: user.PasswordHash,
	})
	return r.store.save()
}

func (r *userRepository) find(match func(*model.User) bool) *model.User {
	for _, rec := range r.store.data.Users {
		if match(rec.User) {
			return rec.User
		}
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if u := r.find(func(u *model.User) bool { return u.ID == id }); u != nil {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if u := r.find(func(u *model.User) bool { return u.Username == username }); u != nil {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if u := r.find(func(u *model.User) bool { return u.Email == email }); u != nil {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var users []*model.User
	for _, rec := range r.store.data.Users {
		if model.ContainsID(ids, rec.User.ID) {
			users = append(users, cloneUser(rec.User))
		}
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u := r.find(func(u *model.User) bool { return u.ID == user.ID })
	if u == nil {
		return nil
	}
	u.DisplayName = user.DisplayName
	u.Bio = user.Bio
	u.ProfilePic = user.ProfilePic
	u.Privacy = user.Privacy
	u.UpdatedAt = time.Now()
	return r.store.save()
}

func (r *userRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*model.User, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.User
	for _, rec := range r.store.data.Users {
		if containsFold(rec.User.Username, query) || containsFold(rec.User.DisplayName, query) {
			matched = append(matched, rec.User)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Username < matched[j].Username
	})

	total := len(matched)
	lo, hi := paginate(total, page, pageSize)
	out := make([]*model.User, 0, hi-lo)
	for _, u := range matched[lo:hi] {
		out = append(out, cloneUser(u))
	}
	return out, total, nil
}

func (r *userRepository) AddFollow(ctx context.Context, followerID, followedID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	follower := r.find(func(u *model.User) bool { return u.ID == followerID })
	followed := r.find(func(u *model.User) bool { return u.ID == followedID })
	if follower == nil || followed == nil {
		return nil
	}
	changed := false
	if !model.ContainsID(follower.Following, followedID) {
		follower.Following = append(follower.Following, followedID)
		changed = true
	}
	if !model.ContainsID(followed.Followers, followerID) {
		followed.Followers = append(followed.Followers, followerID)
		changed = true
	}
	if changed {
		return r.store.save()
	}
	return nil
}

func (r *userRepository) RemoveFollow(ctx context.Context, followerID, followedID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	follower := r.find(func(u *model.User) bool { return u.ID == followerID })
	followed := r.find(func(u *model.User) bool { return u.ID == followedID })
	if follower == nil || followed == nil {
		return nil
	}
	follower.Following = removeID(follower.Following, followedID)
	followed.Followers = removeID(followed.Followers, followerID)
	return r.store.save()
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
