package services

import (
	"context"

	"reactgram/internal/apperrors"
	"reactgram/internal/models"
	"reactgram/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CommentService struct {
	db      *gorm.DB
	cache   *PostCache
	log     *zap.Logger
	metrics *Metrics
}

func NewCommentService(db *gorm.DB, cache *PostCache, log *zap.Logger, metrics *Metrics) *CommentService {
	if metrics == nil {
		metrics = noopMetrics()
	}
	return &CommentService{db: db, cache: cache, log: log, metrics: metrics}
}

// AddComment appends a comment to a post and bumps the post's comment counter in the
// same transaction. The author fields are copied from the caller's profile.
func (s *CommentService) AddComment(ctx context.Context, caller Caller, pid, text string) (*models.Comment, error) {
	if !caller.Authenticated() {
		return nil, apperrors.New(apperrors.ErrUnauthenticated, "login required")
	}
	if pid == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "postId: required")
	}

	text = utils.CleanText(text)
	if text == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "comment: required")
	}
	if utils.RuneLen(text) > PostTextMaxLength {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "comment: maximum length of 280")
	}

	comment := models.Comment{
		Cid:            utils.RandomID(8),
		UserID:         caller.UserID,
		AuthorName:     caller.Name,
		AuthorUsername: caller.Username,
		AuthorPhotoURL: caller.PhotoURL,
		Text:           text,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("pid = ?", pid).First(&post).Error; err != nil {
			return apperrors.FromDB("post not found", err)
		}
		comment.PostID = post.ID

		if err := tx.Create(&comment).Error; err != nil {
			return apperrors.FromDB("create comment", err)
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error; err != nil {
			return apperrors.FromDB("update comment count", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("comment failed", zap.String("pid", pid), zap.Uint("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	evictPost(s.cache, pid)
	s.metrics.CommentsCreated.Add(ctx, 1)
	return &comment, nil
}

// ListComments returns a post's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, pid string, opts ListOptions) ([]models.Comment, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").Where("pid = ?", pid).First(&post).Error; err != nil {
		return nil, apperrors.FromDB("post not found", err)
	}

	offset, limit := opts.offsetLimit()
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", post.ID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, apperrors.FromDB("list comments", err)
	}
	return comments, nil
}
