// Package filestore 是独立运行模式的状态存储：
// 整个应用状态保存在一个 JSON 文件中，启动时全量读入，
// 每次变更后全量写回。实现与 MongoDB 仓库相同的接口，
// 以便在没有数据库的环境下运行完整的 API。
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userRecord 持久化用户及其密码哈希。
// model.User 的 JSON 序列化有意不输出哈希，这里单独保存。
type userRecord struct {
	User         *model.User `json:"user"`
	PasswordHash string      `json:"passwordHash"`
}

type state struct {
	Users    []userRecord     `json:"users"`
	Posts    []*model.Post    `json:"posts"`
	Reels    []*model.Reel    `json:"reels"`
	Messages []*model.Message `json:"messages"`
}

// Store 是文件状态存储，所有仓库共享同一把锁
type Store struct {
	mu   sync.RWMutex
	path string
	data state
}

// Open 打开状态文件并全量加载，文件不存在时从空状态开始
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("读取状态文件失败: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("解析状态文件失败: %w", err)
	}
	for _, rec := range s.data.Users {
		rec.User.PasswordHash = rec.PasswordHash
	}
	return s, nil
}

// save 将全部状态写回文件，调用方必须持有写锁。
// 先写临时文件再改名，避免写入中断留下半个状态文件。
func (s *Store) save() error {
	for i, rec := range s.data.Users {
		s.data.Users[i].PasswordHash = rec.User.PasswordHash
	}

	raw, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化状态失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("创建状态目录失败: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("写入状态文件失败: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// containsFold 判断 s 是否包含子串 sub（大小写不敏感）
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// paginate 返回长度为 n 的序列在指定页上的区间
func paginate(n, page, pageSize int) (int, int) {
	lo := (page - 1) * pageSize
	if lo > n {
		lo = n
	}
	hi := lo + pageSize
	if hi > n {
		hi = n
	}
	return lo, hi
}

// sortNewestFirst 按创建时间倒序排列
func sortPostsNewestFirst(posts []*model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func sortReelsNewestFirst(reels []*model.Reel) {
	sort.SliceStable(reels, func(i, j int) bool {
		return reels[i].CreatedAt.After(reels[j].CreatedAt)
	})
}

func sortMessagesNewestFirst(messages []*model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
}

// feedVisible 判断内容对查看者是否出现在信息流中
func feedVisible(author *model.User, visibility string, viewer *model.User) bool {
	if visibility == model.VisibilityPublic {
		return true
	}
	if viewer == nil || author == nil {
		return false
	}
	if visibility == model.VisibilityFollowers {
		return viewer.IsFollowing(author.ID)
	}
	return false
}

// 仓库方法统一返回副本，调用方的读取侧装饰不会污染内存状态
func clonePost(p *model.Post) *model.Post {
	cp := *p
	cp.Likes = append([]primitive.ObjectID{}, p.Likes...)
	cp.Comments = append([]model.Comment{}, p.Comments...)
	cp.Shares = append([]primitive.ObjectID{}, p.Shares...)
	return &cp
}

func cloneReel(r *model.Reel) *model.Reel {
	cr := *r
	cr.Likes = append([]primitive.ObjectID{}, r.Likes...)
	cr.Comments = append([]model.Comment{}, r.Comments...)
	cr.Shares = append([]primitive.ObjectID{}, r.Shares...)
	return &cr
}

func cloneMessage(m *model.Message) *model.Message {
	cm := *m
	cm.Attachments = append([]model.Attachment{}, m.Attachments...)
	return &cm
}

func cloneUser(u *model.User) *model.User {
	cu := *u
	cu.Followers = append([]primitive.ObjectID{}, u.Followers...)
	cu.Following = append([]primitive.ObjectID{}, u.Following...)
	return &cu
}
