package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"reactgram/internal/apperrors"
	"reactgram/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// FanOutOptions bounds the profile fan-out.
type FanOutOptions struct {
	PageSize    int // posts fetched per query
	Concurrency int // post writes in flight at once
}

// ProfileSync keeps the author fields copied onto posts in step with the user rows
// they came from.
type ProfileSync struct {
	db          *gorm.DB
	cache       *PostCache
	log         *zap.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	pageSize    int
	concurrency int
}

func NewProfileSync(db *gorm.DB, cache *PostCache, log *zap.Logger, metrics *Metrics, opts FanOutOptions) *ProfileSync {
	if metrics == nil {
		metrics = noopMetrics()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &ProfileSync{
		db:          db,
		cache:       cache,
		log:         log,
		metrics:     metrics,
		tracer:      otel.Tracer(instrumentationName),
		pageSize:    opts.PageSize,
		concurrency: opts.Concurrency,
	}
}

// PostFailure is one post the fan-out could not rewrite.
type PostFailure struct {
	PostID uint
	Pid    string
	Err    error
}

// FanOutResult summarizes one fan-out run.
type FanOutResult struct {
	UserID  uint
	Pages   int
	Matched int
	Updated int
	Skipped int // matched, but gone by the time its write ran
	Failed  []PostFailure
}

// DenormalizedFieldsChanged reports whether an update touched any field copied onto posts.
func DenormalizedFieldsChanged(before, after *models.User) bool {
	return before.Name != after.Name || before.PhotoURL != after.PhotoURL
}

// HandleUserChange is the observer for user writes. Creates and deletes, and updates
// that leave name and photo alone, return (nil, nil) without touching the store.
func (s *ProfileSync) HandleUserChange(ctx context.Context, change models.UserChange) (*FanOutResult, error) {
	if change.Before == nil || change.After == nil {
		return nil, nil
	}
	if !DenormalizedFieldsChanged(change.Before, change.After) {
		return nil, nil
	}
	return s.FanOut(ctx, change.After.ID, change.After.ProfileFields())
}

// Handle adapts HandleUserChange to the change feed.
func (s *ProfileSync) Handle(ctx context.Context, change models.UserChange) error {
	_, err := s.HandleUserChange(ctx, change)
	return err
}

// FanOut rewrites author_name and author_photo_url on every post by userID.
//
// Posts are walked in id order one page at a time. A failed write is recorded and the
// walk continues; the returned error then joins every per-post failure. A failed page
// query ends the walk early. Writes are plain overwrites, so running the fan-out again
// converges.
func (s *ProfileSync) FanOut(ctx context.Context, userID uint, fields models.ProfileFields) (*FanOutResult, error) {
	ctx, span := s.tracer.Start(ctx, "profile_sync.fan_out",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	result := &FanOutResult{UserID: userID}
	err := s.walk(ctx, userID, fields, result)

	span.SetAttributes(
		attribute.Int("fanout.matched", result.Matched),
		attribute.Int("fanout.updated", result.Updated),
		attribute.Int("fanout.failed", len(result.Failed)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fan-out incomplete")
		s.log.Warn("profile fan-out incomplete",
			zap.Uint("user_id", userID),
			zap.Int("matched", result.Matched),
			zap.Int("updated", result.Updated),
			zap.Int("failed", len(result.Failed)),
			zap.Error(err))
		return result, err
	}

	s.log.Info("profile fan-out finished",
		zap.Uint("user_id", userID),
		zap.Int("pages", result.Pages),
		zap.Int("updated", result.Updated))
	return result, nil
}

func (s *ProfileSync) walk(ctx context.Context, userID uint, fields models.ProfileFields, result *FanOutResult) error {
	var cursor uint
	for {
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(apperrors.ErrUnavailable, "fan-out interrupted", errors.Join(append(failureErrors(result), err)...))
		}

		var page []models.Post
		err := s.db.WithContext(ctx).Model(&models.Post{}).
			Select("id", "pid").
			Where("user_id = ? AND id > ?", userID, cursor).
			Order("id").
			Limit(s.pageSize).
			Find(&page).Error
		if err != nil {
			queryErr := fmt.Errorf("list posts after id %d: %w", cursor, err)
			return apperrors.Wrap(apperrors.ErrUnavailable, "fan-out interrupted", errors.Join(append(failureErrors(result), queryErr)...))
		}
		if len(page) == 0 {
			break
		}

		result.Pages++
		result.Matched += len(page)
		s.writePage(ctx, page, fields, result)

		cursor = page[len(page)-1].ID
		if len(page) < s.pageSize {
			break
		}
	}

	if len(result.Failed) > 0 {
		return apperrors.Wrap(apperrors.ErrUnavailable,
			fmt.Sprintf("fan-out failed for %d of %d posts", len(result.Failed), result.Matched),
			errors.Join(failureErrors(result)...))
	}
	return nil
}

// writePage updates each post of one page independently; no write waits on another
// beyond the concurrency limit.
func (s *ProfileSync) writePage(ctx context.Context, page []models.Post, fields models.ProfileFields, result *FanOutResult) {
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(s.concurrency)

	for _, post := range page {
		g.Go(func() error {
			res := s.db.WithContext(ctx).Model(&models.Post{}).
				Where("id = ?", post.ID).
				UpdateColumns(map[string]interface{}{
					"author_name":      fields.Name,
					"author_photo_url": fields.PhotoURL,
				})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case res.Error != nil:
				result.Failed = append(result.Failed, PostFailure{PostID: post.ID, Pid: post.Pid, Err: res.Error})
				s.metrics.FanOutFailed.Add(ctx, 1)
			case res.RowsAffected == 0:
				result.Skipped++
			default:
				result.Updated++
				s.metrics.FanOutUpdated.Add(ctx, 1)
			}
			evictPost(s.cache, post.Pid)
			return nil
		})
	}
	_ = g.Wait()
}

func failureErrors(result *FanOutResult) []error {
	errs := make([]error, 0, len(result.Failed))
	for _, f := range result.Failed {
		errs = append(errs, fmt.Errorf("post %s: %w", f.Pid, f.Err))
	}
	return errs
}
