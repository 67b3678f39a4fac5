package services

import (
	"context"
	"strings"
	"time"

	"reactgram/internal/apperrors"
	"reactgram/internal/models"
	"reactgram/internal/storage"
	"reactgram/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChangePublisher receives every committed write to a user row.
type ChangePublisher interface {
	Publish(ctx context.Context, change models.UserChange) error
}

// PublisherFunc delivers changes synchronously to a function.
type PublisherFunc func(ctx context.Context, change models.UserChange) error

func (f PublisherFunc) Publish(ctx context.Context, change models.UserChange) error {
	return f(ctx, change)
}

type UserService struct {
	db        *gorm.DB
	storage   storage.Storage
	publisher ChangePublisher
	log       *zap.Logger
}

func NewUserService(db *gorm.DB, store storage.Storage, publisher ChangePublisher, log *zap.Logger) *UserService {
	return &UserService{db: db, storage: store, publisher: publisher, log: log}
}

// SignUpInput is a new account request.
type SignUpInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required,max=70,personname"`
	Username string `validate:"required,max=70,alphanum"`
	Password string `validate:"required,min=6,max=100"`
}

// SignUp creates an account. Email and username must both be unused.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "hash password", err)
	}

	user := models.User{
		Email:    in.Email,
		Name:     in.Name,
		Username: in.Username,
		Password: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		err = apperrors.FromDB("create user", err)
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.New(apperrors.ErrConflict, "email or username already registered")
		}
		return nil, err
	}

	s.publish(ctx, models.UserChange{UserID: user.ID, After: &user})
	return &user, nil
}

// Authenticate checks an email/password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, apperrors.New(apperrors.ErrUnauthenticated, "invalid email or password")
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperrors.FromDB("user not found", err)
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, apperrors.FromDB("user not found", err)
	}
	return &user, nil
}

// ProfileUpdate is an edit of the caller's own profile.
type ProfileUpdate struct {
	Name      string     `validate:"required,max=70,personname"`
	Bio       string     `validate:"max=160"`
	Location  string     `validate:"max=30"`
	BirthDate *time.Time `validate:"-"`
}

// UpdateProfile saves profile edits and publishes the before/after pair so posts
// carrying the old name can be refreshed.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.User, error) {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Bio = strings.TrimSpace(upd.Bio)
	upd.Location = strings.TrimSpace(upd.Location)
	if err := validateStruct(upd); err != nil {
		return nil, err
	}

	return s.update(ctx, userID, map[string]interface{}{
		"name":       upd.Name,
		"bio":        upd.Bio,
		"location":   upd.Location,
		"birth_date": upd.BirthDate,
	})
}

// UpdatePhoto uploads a new profile photo and points the user at it. Every upload gets
// a fresh path so the URL always changes.
func (s *UserService) UpdatePhoto(ctx context.Context, userID uint, photo Upload) (*models.User, error) {
	if s.storage == nil {
		return nil, apperrors.New(apperrors.ErrUnavailable, "image storage is not configured")
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	path := "profileImages/" + utils.StringFromUint(userID) + "/" + utils.RandomID(12)
	url, err := s.storage.Save(ctx, path, photo.Reader, photo.Size, photo.ContentType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, "photo upload failed", err)
	}

	return s.update(ctx, userID, map[string]interface{}{"photo_url": url})
}

func (s *UserService) update(ctx context.Context, userID uint, updates map[string]interface{}) (*models.User, error) {
	var before, after models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&before, userID).Error; err != nil {
			return apperrors.FromDB("user not found", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return apperrors.FromDB("update user", err)
		}
		if err := tx.First(&after, userID).Error; err != nil {
			return apperrors.FromDB("reload user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.UserChange{UserID: userID, Before: &before, After: &after})
	return &after, nil
}

// publish hands a committed change to the publisher. The write itself already
// succeeded, so a publish failure is logged rather than returned.
func (s *UserService) publish(ctx context.Context, change models.UserChange) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.log.Error("publish user change failed", zap.Uint("user_id", change.UserID), zap.Error(err))
	}
}
