package services

import (
	"context"
	"errors"

	"reactgram/internal/apperrors"
	"reactgram/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LikeService struct {
	db      *gorm.DB
	cache   *PostCache
	log     *zap.Logger
	metrics *Metrics
}

func NewLikeService(db *gorm.DB, cache *PostCache, log *zap.Logger, metrics *Metrics) *LikeService {
	if metrics == nil {
		metrics = noopMetrics()
	}
	return &LikeService{db: db, cache: cache, log: log, metrics: metrics}
}

// LikeResult is the post's state right after a like or unlike committed.
type LikeResult struct {
	Pid       string `json:"post_id"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likes"`
}

// SetLiked moves the caller's like on a post to the requested state. The membership
// record and the post's like counter change in one transaction, the counter by a
// relative delta computed by the database.
//
// This is a set, not a toggle: liking a post that is already liked fails with
// ErrConflict, as does unliking a post that is not liked, and neither touches the
// counter. Clients holding optimistic state should re-read it via Liked.
func (s *LikeService) SetLiked(ctx context.Context, caller Caller, pid string, liked bool) (*LikeResult, error) {
	if !caller.Authenticated() {
		return nil, apperrors.New(apperrors.ErrUnauthenticated, "login required")
	}
	if pid == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "postId: required")
	}

	delta := 1
	if !liked {
		delta = -1
	}
	result := &LikeResult{Pid: pid, Liked: liked}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("pid = ?", pid).First(&post).Error; err != nil {
			return apperrors.FromDB("post not found", err)
		}

		if liked {
			like := models.Like{PostID: post.ID, UserID: caller.UserID}
			if err := tx.Create(&like).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperrors.Wrap(apperrors.ErrConflict, "post already liked", err)
				}
				return apperrors.FromDB("create like", err)
			}
		} else {
			res := tx.Where("post_id = ? AND user_id = ?", post.ID, caller.UserID).Delete(&models.Like{})
			if res.Error != nil {
				return apperrors.FromDB("delete like", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.New(apperrors.ErrConflict, "post is not liked")
			}
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
			return apperrors.FromDB("update like count", err)
		}

		row := tx.Model(&models.Post{}).Select("like_count").Where("id = ?", post.ID).Row()
		if err := row.Scan(&result.LikeCount); err != nil {
			return apperrors.FromDB("read like count", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			s.metrics.LikeConflicts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("liked", liked)))
		}
		s.log.Warn("like failed",
			zap.String("pid", pid),
			zap.Uint("user_id", caller.UserID),
			zap.Bool("liked", liked),
			zap.Error(err))
		return nil, err
	}

	evictPost(s.cache, pid)
	return result, nil
}

// Liked reports whether userID has a like recorded on the post.
func (s *LikeService) Liked(ctx context.Context, userID uint, pid string) (bool, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").Where("pid = ?", pid).First(&post).Error; err != nil {
		return false, apperrors.FromDB("post not found", err)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", post.ID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.FromDB("read like", err)
	}
	return count > 0, nil
}

// ListLikedPosts lists the posts userID likes, most recently liked first.
func (s *LikeService) ListLikedPosts(ctx context.Context, userID uint, opts ListOptions) ([]models.Post, error) {
	offset, limit := opts.offsetLimit()
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Joins("JOIN likes ON likes.post_id = posts.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC, posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, apperrors.FromDB("list liked posts", err)
	}
	return posts, nil
}
