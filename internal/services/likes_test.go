package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"reactgram/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLikedIncrementsCounterAndRecordsMembership(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	post := f.mustPost(t, alice, "hello")

	result, err := f.likes.SetLiked(context.Background(), CallerFromUser(bob), post.Pid, true)
	require.NoError(t, err)
	assert.Equal(t, post.Pid, result.Pid)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikeCount)

	assert.Equal(t, 1, f.reload(t, post.Pid).LikeCount)
	assert.Equal(t, int64(1), f.countLikes(t, post.ID))

	liked, err := f.likes.Liked(context.Background(), bob.ID, post.Pid)
	require.NoError(t, err)
	assert.True(t, liked)
}

// Liking twice is rejected so the counter stays equal to the number of likes.
func TestSetLikedTwiceIsConflict(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	post := f.mustPost(t, alice, "hello")
	ctx := context.Background()

	_, err := f.likes.SetLiked(ctx, CallerFromUser(bob), post.Pid, true)
	require.NoError(t, err)

	_, err = f.likes.SetLiked(ctx, CallerFromUser(bob), post.Pid, true)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	assert.Equal(t, 1, f.reload(t, post.Pid).LikeCount)
	assert.Equal(t, int64(1), f.countLikes(t, post.ID))
}

func TestSetLikedFalseDecrements(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	post := f.mustPost(t, alice, "hello")
	ctx := context.Background()

	_, err := f.likes.SetLiked(ctx, CallerFromUser(bob), post.Pid, true)
	require.NoError(t, err)

	result, err := f.likes.SetLiked(ctx, CallerFromUser(bob), post.Pid, false)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.LikeCount)
	assert.Equal(t, 0, f.reload(t, post.Pid).LikeCount)
	assert.Equal(t, int64(0), f.countLikes(t, post.ID))

	liked, err := f.likes.Liked(ctx, bob.ID, post.Pid)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestSetLikedFalseWithoutLikeIsConflict(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	post := f.mustPost(t, alice, "hello")

	_, err := f.likes.SetLiked(context.Background(), CallerFromUser(bob), post.Pid, false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, 0, f.reload(t, post.Pid).LikeCount)
}

func TestSetLikedRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	post := f.mustPost(t, alice, "hello")

	_, err := f.likes.SetLiked(context.Background(), Caller{}, post.Pid, true)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
	assert.Equal(t, 0, f.reload(t, post.Pid).LikeCount)
	assert.Equal(t, int64(0), f.countLikes(t, post.ID))
}

func TestSetLikedUnknownPost(t *testing.T) {
	f := newFixture(t)
	bob := f.mustUser(t, "bob", "Bob")

	_, err := f.likes.SetLiked(context.Background(), CallerFromUser(bob), "missing1", true)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	var n int64
	require.NoError(t, f.db.Table("likes").Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestSetLikedConcurrentLikersOnlyTouchTheirPost(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	postA := f.mustPost(t, alice, "post a")
	postB := f.mustPost(t, alice, "post b")

	const likers = 10
	callers := make([]Caller, likers)
	for i := range callers {
		callers[i] = CallerFromUser(f.mustUser(t, fmt.Sprintf("liker%d", i), "Liker"))
	}

	var wg sync.WaitGroup
	errs := make([]error, likers)
	for i, caller := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.likes.SetLiked(context.Background(), caller, postA.Pid, true)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, likers, f.reload(t, postA.Pid).LikeCount)
	assert.Equal(t, int64(likers), f.countLikes(t, postA.ID))

	b := f.reload(t, postB.Pid)
	assert.Equal(t, 0, b.LikeCount)
	assert.Equal(t, int64(0), f.countLikes(t, postB.ID))
}

func TestSetLikedEvictsCachedPost(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	post := f.mustPost(t, alice, "hello")
	ctx := context.Background()

	cached, err := f.posts.Get(ctx, post.Pid)
	require.NoError(t, err)
	require.Equal(t, 0, cached.LikeCount)

	_, err = f.likes.SetLiked(ctx, CallerFromUser(bob), post.Pid, true)
	require.NoError(t, err)

	fresh, err := f.posts.Get(ctx, post.Pid)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.LikeCount)
}

func TestListLikedPosts(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	first := f.mustPost(t, alice, "first")
	second := f.mustPost(t, alice, "second")
	f.mustPost(t, alice, "not liked")
	ctx := context.Background()

	_, err := f.likes.SetLiked(ctx, CallerFromUser(bob), first.Pid, true)
	require.NoError(t, err)
	_, err = f.likes.SetLiked(ctx, CallerFromUser(bob), second.Pid, true)
	require.NoError(t, err)

	posts, err := f.likes.ListLikedPosts(ctx, bob.ID, ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	pids := []string{posts[0].Pid, posts[1].Pid}
	assert.ElementsMatch(t, []string{first.Pid, second.Pid}, pids)

	none, err := f.likes.ListLikedPosts(ctx, alice.ID, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSetLikedRollsBackWhenCounterUpdateFails(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	post := f.mustPost(t, alice, "hello")
	failPostUpdates(t, f.db, errors.New("counter write failed"))

	_, err := f.likes.SetLiked(context.Background(), CallerFromUser(bob), post.Pid, true)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
	assert.ErrorContains(t, err, "counter write failed")

	assert.Equal(t, int64(0), f.countLikes(t, post.ID))
	assert.Equal(t, 0, f.reload(t, post.Pid).LikeCount)

	liked, err := f.likes.Liked(context.Background(), bob.ID, post.Pid)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestUnlikeRollsBackWhenCounterUpdateFails(t *testing.T) {
	f := newFixture(t)
	alice := f.mustUser(t, "alice", "Alice")
	bob := f.mustUser(t, "bob", "Bob")
	post := f.mustPost(t, alice, "hello")

	_, err := f.likes.SetLiked(context.Background(), CallerFromUser(bob), post.Pid, true)
	require.NoError(t, err)
	failPostUpdates(t, f.db, errors.New("counter write failed"))

	_, err = f.likes.SetLiked(context.Background(), CallerFromUser(bob), post.Pid, false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))

	assert.Equal(t, int64(1), f.countLikes(t, post.ID))
	assert.Equal(t, 1, f.reload(t, post.Pid).LikeCount)
}
