package services

import (
	"context"
	"io"
	"time"

	"reactgram/internal/apperrors"
	"reactgram/internal/models"
	"reactgram/internal/storage"
	"reactgram/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostCache holds post rows by pid for the detail read path.
type PostCache = utils.Cache[models.Post]

func postCacheKey(pid string) string {
	return "post:" + pid
}

func evictPost(cache *PostCache, pid string) {
	if cache != nil && pid != "" {
		cache.Delete(postCacheKey(pid))
	}
}

// Upload is a file handed to object storage.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// ListOptions pages a newest-first listing.
type ListOptions struct {
	Page  int
	Limit int
}

func (o ListOptions) offsetLimit() (int, int) {
	limit := utils.ClampLimit(o.Limit, 20, 100)
	page := o.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}

type PostService struct {
	db      *gorm.DB
	cache   *PostCache
	storage storage.Storage
	log     *zap.Logger
}

func NewPostService(db *gorm.DB, cache *PostCache, store storage.Storage, log *zap.Logger) *PostService {
	return &PostService{db: db, cache: cache, storage: store, log: log}
}

// CreatePostInput is the body of a new post. At least one of Text or Image is required.
type CreatePostInput struct {
	Text  string
	Image *Upload
}

// Create stores a post authored by caller. The author's name and photo are copied
// from the user row at this moment; later profile edits reach the post through the
// profile fan-out.
func (s *PostService) Create(ctx context.Context, caller Caller, in CreatePostInput) (*models.Post, error) {
	if !caller.Authenticated() {
		return nil, apperrors.New(apperrors.ErrUnauthenticated, "login required")
	}

	text := utils.CleanText(in.Text)
	if utils.RuneLen(text) > PostTextMaxLength {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "text: maximum length of 280")
	}
	if text == "" && in.Image == nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "text: required")
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, caller.UserID).Error; err != nil {
		return nil, apperrors.FromDB("author not found", err)
	}

	post := models.Post{
		Pid:            utils.RandomID(8),
		UserID:         author.ID,
		Username:       author.Username,
		AuthorName:     author.Name,
		AuthorPhotoURL: author.PhotoURL,
		Text:           text,
	}

	if in.Image != nil {
		if s.storage == nil {
			return nil, apperrors.New(apperrors.ErrUnavailable, "image storage is not configured")
		}
		url, err := s.storage.Save(ctx, "postImages/"+post.Pid, in.Image.Reader, in.Image.Size, in.Image.ContentType)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrUnavailable, "image upload failed", err)
		}
		post.ImageURL = url
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, apperrors.FromDB("create post", err)
	}

	s.log.Info("post created", zap.String("pid", post.Pid), zap.Uint("user_id", author.ID))
	return &post, nil
}

// Get returns a post by its public id.
func (s *PostService) Get(ctx context.Context, pid string) (*models.Post, error) {
	if s.cache != nil {
		if post, ok := s.cache.Get(postCacheKey(pid)); ok {
			return &post, nil
		}
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Where("pid = ?", pid).First(&post).Error; err != nil {
		return nil, apperrors.FromDB("post not found", err)
	}

	if s.cache != nil {
		s.cache.Set(postCacheKey(pid), post)
	}
	return &post, nil
}

// Feed lists every post, newest first.
func (s *PostService) Feed(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	offset, limit := opts.offsetLimit()
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, apperrors.FromDB("list posts", err)
	}
	return posts, nil
}

// ListByAuthor lists one user's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, username string, opts ListOptions) ([]models.Post, error) {
	var author models.User
	if err := s.db.WithContext(ctx).Select("id").Where("username = ?", username).First(&author).Error; err != nil {
		return nil, apperrors.FromDB("user not found", err)
	}

	offset, limit := opts.offsetLimit()
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("user_id = ?", author.ID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, apperrors.FromDB("list posts", err)
	}
	return posts, nil
}

// Delete removes a post together with its likes and comments. Only the author may
// delete a post.
func (s *PostService) Delete(ctx context.Context, caller Caller, pid string) error {
	if !caller.Authenticated() {
		return apperrors.New(apperrors.ErrUnauthenticated, "login required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id").Where("pid = ?", pid).First(&post).Error; err != nil {
			return apperrors.FromDB("post not found", err)
		}
		if post.UserID != caller.UserID {
			return apperrors.New(apperrors.ErrForbidden, "only the author can delete a post")
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return apperrors.FromDB("delete likes", err)
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return apperrors.FromDB("delete comments", err)
		}
		if err := tx.Delete(&models.Post{}, post.ID).Error; err != nil {
			return apperrors.FromDB("delete post", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	evictPost(s.cache, pid)
	s.log.Info("post deleted", zap.String("pid", pid), zap.Uint("user_id", caller.UserID))
	return nil
}

// NewPostCache creates the post cache shared by the services that read or mutate posts.
func NewPostCache(size int, ttl time.Duration) (*PostCache, error) {
	return utils.NewCache[models.Post](size, ttl)
}
