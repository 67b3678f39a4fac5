package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reactgram/internal/apperrors"
	"reactgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	changes []models.UserChange
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, change models.UserChange) error {
	p.changes = append(p.changes, change)
	return p.err
}

func validSignUp() SignUpInput {
	return SignUpInput{
		Email:    "Ada@Example.com",
		Name:     "Ada Lovelace",
		Username: "ada",
		Password: "secret1",
	}
}

func TestSignUpCreatesUserAndPublishes(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}
	f.users = NewUserService(f.db, f.store, pub, f.log)

	user, err := f.users.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.Password)

	require.Len(t, pub.changes, 1)
	assert.Nil(t, pub.changes[0].Before)
	assert.Equal(t, user.ID, pub.changes[0].After.ID)

	authed, err := f.users.Authenticate(context.Background(), "ADA@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = f.users.Authenticate(context.Background(), "ada@example.com", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
	_, err = f.users.Authenticate(context.Background(), "nobody@example.com", "secret1")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
}

func TestSignUpValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*SignUpInput)
	}{
		{"bad email", func(in *SignUpInput) { in.Email = "not-an-email" }},
		{"digits in name", func(in *SignUpInput) { in.Name = "R2D2" }},
		{"long name", func(in *SignUpInput) { in.Name = strings.Repeat("a", NameMaxLength+1) }},
		{"username with space", func(in *SignUpInput) { in.Username = "ada l" }},
		{"short password", func(in *SignUpInput) { in.Password = "12345" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSignUp()
			tc.mutate(&in)
			_, err := f.users.SignUp(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestSignUpDuplicate(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	again := validSignUp()
	again.Username = "ada2"
	_, err = f.users.SignUp(context.Background(), again)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	again = validSignUp()
	again.Email = "other@example.com"
	_, err = f.users.SignUp(context.Background(), again)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestUpdateProfilePublishesBeforeAndAfter(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{err: errors.New("feed closed")}
	f.users = NewUserService(f.db, f.store, pub, f.log)
	alice := f.mustUser(t, "alice", "Alice")

	// A publish failure does not undo the committed write.
	updated, err := f.users.UpdateProfile(context.Background(), alice.ID, ProfileUpdate{Name: " Alice B ", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "hi", updated.Bio)

	require.Len(t, pub.changes, 1)
	assert.Equal(t, "Alice", pub.changes[0].Before.Name)
	assert.Equal(t, "Alice B", pub.changes[0].After.Name)

	_, err = f.users.UpdateProfile(context.Background(), alice.ID, ProfileUpdate{Name: ""})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	_, err = f.users.UpdateProfile(context.Background(), alice.ID, ProfileUpdate{Name: "Ok", Bio: strings.Repeat("b", BioMaxLength+1)})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	_, err = f.users.UpdateProfile(context.Background(), 9999, ProfileUpdate{Name: "Ghost"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdatePhotoRefreshesPosts(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	post := f.mustPost(t, alice, "hello")

	updated, err := f.users.UpdatePhoto(context.Background(), alice.ID, Upload{
		Reader: strings.NewReader("jpeg"), Size: 4, ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.PhotoURL, "https://files.test/profileImages/"))
	assert.NotEqual(t, alice.PhotoURL, updated.PhotoURL)

	assert.Equal(t, updated.PhotoURL, f.reload(t, post.Pid).AuthorPhotoURL)
}

func TestUpdatePhotoUploadFailureKeepsProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	f.store.err = errors.New("disk full")

	_, err := f.users.UpdatePhoto(context.Background(), alice.ID, Upload{Reader: strings.NewReader("x"), Size: 1})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))

	got, err := f.users.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.PhotoURL, got.PhotoURL)
}

func TestGetByUsername(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")

	got, err := f.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = f.users.GetByUsername(context.Background(), "nobody")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
