package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"reactgram/internal/db/dbtest"
	"reactgram/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	cache    *PostCache
	log      *zap.Logger
	metrics  *Metrics
	store    *memStorage
	posts    *PostService
	likes    *LikeService
	comments *CommentService
	sync     *ProfileSync
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	cache, err := NewPostCache(64, time.Minute)
	require.NoError(t, err)
	metrics, err := NewMetrics(nil)
	require.NoError(t, err)

	f := &fixture{
		db:      conn,
		cache:   cache,
		log:     zap.NewNop(),
		metrics: metrics,
		store:   newMemStorage(),
	}
	f.posts = NewPostService(conn, cache, f.store, f.log)
	f.likes = NewLikeService(conn, cache, f.log, f.metrics)
	f.comments = NewCommentService(conn, cache, f.log, f.metrics)
	f.sync = NewProfileSync(conn, cache, f.log, f.metrics, FanOutOptions{PageSize: 2, Concurrency: 3})
	f.users = NewUserService(conn, f.store, PublisherFunc(f.sync.Handle), f.log)
	return f
}

func (f *fixture) mustUser(t *testing.T, username, name string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Name:     name,
		PhotoURL: "https://img.test/" + username + ".png",
	}
	require.NoError(t, f.db.Create(&user).Error)
	return &user
}

func (f *fixture) mustPost(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post, err := f.posts.Create(context.Background(), CallerFromUser(author), CreatePostInput{Text: text})
	require.NoError(t, err)
	return post
}

func (f *fixture) reload(t *testing.T, pid string) models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, f.db.Where("pid = ?", pid).First(&post).Error)
	return post
}

func (f *fixture) countLikes(t *testing.T, postID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error)
	return n
}

// countPostUpdates counts UPDATE statements against the posts table.
func countPostUpdates(t *testing.T, conn *gorm.DB) func() int {
	t.Helper()
	var (
		mu sync.Mutex
		n  int
	)
	err := conn.Callback().Update().After("gorm:update").Register("test:count_post_updates", func(tx *gorm.DB) {
		if tx.Statement.Table == "posts" {
			mu.Lock()
			n++
			mu.Unlock()
		}
	})
	require.NoError(t, err)
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return n
	}
}

// failPostUpdates makes every UPDATE against the posts table fail with err.
func failPostUpdates(t *testing.T, conn *gorm.DB, err error) {
	t.Helper()
	require.NoError(t, conn.Callback().Update().Before("gorm:update").Register("test:fail_post_updates", func(tx *gorm.DB) {
		if tx.Statement.Table == "posts" {
			tx.AddError(err)
		}
	}))
}

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (m *memStorage) Save(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.files[path] = buf.Bytes()
	return fmt.Sprintf("https://files.test/%s", path), nil
}
