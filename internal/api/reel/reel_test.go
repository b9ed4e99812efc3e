package reel

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"thethought-backend/internal/model"
	"thethought-backend/internal/repository/filestore"
	"thethought-backend/internal/service"
	"thethought-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeCloudStorage 模拟返回完整访问URL的远端存储，对象按存储键记录
type fakeCloudStorage struct {
	objects map[string]bool
}

func newFakeCloudStorage() *fakeCloudStorage {
	return &fakeCloudStorage{objects: map[string]bool{}}
}

func (s *fakeCloudStorage) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	s.objects[path] = true
	return "https://thethought-media.s3.amazonaws.com/" + path, nil
}

func (s *fakeCloudStorage) DeleteFile(path string) error {
	delete(s.objects, path)
	return nil
}

func newReelTestRouter(t *testing.T, st *fakeCloudStorage) (*gin.Engine, primitive.ObjectID) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")

	store, err := filestore.Open(filepath.Join(t.TempDir(), "state.json"))
	assert.NoError(t, err)

	userRepo := filestore.NewUserRepository(store)
	postRepo := filestore.NewPostRepository(store)
	reelRepo := filestore.NewReelRepository(store)

	author := &model.User{Username: "alice", Email: "alice@example.com"}
	assert.NoError(t, userRepo.Create(context.Background(), author))

	userService := service.NewUserService(userRepo, postRepo, reelRepo, service.NewMemoryBlacklist())
	reelService := service.NewReelService(reelRepo, userRepo)
	handler := NewReelHandler(reelService, userService, st)

	r := gin.New()
	authed := r.Group("", func(c *gin.Context) {
		c.Set("user_id", author.ID)
	})
	authed.POST("/reels", handler.CreateReel)
	authed.DELETE("/reels/:id", handler.DeleteReel)
	return r, author.ID
}

func uploadReel(t *testing.T, router *gin.Engine) *model.Reel {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="video"; filename="clip.mp4"`)
	header.Set("Content-Type", "video/mp4")
	part, err := form.CreatePart(header)
	assert.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	assert.NoError(t, err)
	assert.NoError(t, form.WriteField("caption", "海边的一天 #sunset"))
	assert.NoError(t, form.WriteField("duration", "12"))
	assert.NoError(t, form.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/reels", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var reel model.Reel
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &reel))
	return &reel
}

// TestDeleteReelCleansRemoteObject 远端存储返回完整访问URL时，
// 删除短视频仍要按对象键清理文件，不能把URL当键用
func TestDeleteReelCleansRemoteObject(t *testing.T) {
	st := newFakeCloudStorage()
	router, _ := newReelTestRouter(t, st)

	reel := uploadReel(t, router)
	assert.True(t, strings.HasPrefix(reel.VideoURL, "https://"))
	assert.True(t, strings.HasPrefix(reel.VideoKey, "reels/"))
	assert.True(t, st.objects[reel.VideoKey])

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/reels/"+reel.ID.Hex(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 对象键下的文件已被清理
	assert.Empty(t, st.objects)
}

// TestCreateReelCleansUploadOnFailure 创建失败时已上传的文件同样按键回收
func TestCreateReelCleansUploadOnFailure(t *testing.T) {
	st := newFakeCloudStorage()
	router, _ := newReelTestRouter(t, st)

	// 缺少 duration，服务层校验失败
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="video"; filename="clip.mp4"`)
	header.Set("Content-Type", "video/mp4")
	part, err := form.CreatePart(header)
	assert.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	assert.NoError(t, err)
	assert.NoError(t, form.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/reels", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, st.objects)
}
