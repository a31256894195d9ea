package community

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
	"github.com/ukydev/vehiclemate/internal/repository"
	"github.com/ukydev/vehiclemate/internal/store"
)

func newTestService(t *testing.T) (*Service, *datasource.Seed[models.ForumPost], *connectivity.Observer) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	source := NewSeedSource(datasource.Config{}, logger)
	feed := notify.NewFeed(0, logger)
	observer := connectivity.NewObserver(true, feed, logger)
	st := store.New(store.NewMemoryBackend(), logger)
	return NewService(source, st, observer, feed, nil, logger), source, observer
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Data, 3)
	assert.Equal(t, "post-1", res.Data[0].ID)
	assert.Len(t, res.Data[0].Comments, 2)
}

func TestCreatePost_PrependsAndIsReadable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	created, err := svc.CreatePost(ctx, models.PostInput{
		UserID:   "user-1",
		UserName: "Asha",
		Title:    "Fuel stations open late near Panipat?",
		Content:  "Heading north tonight.",
	})
	require.NoError(t, err)
	post := created.Data
	assert.Regexp(t, `^post-`, post.ID)
	assert.Zero(t, post.Likes)
	assert.NotNil(t, post.Comments)
	assert.NotNil(t, post.Tags)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list.Data, 4)
	assert.Equal(t, post.ID, list.Data[0].ID)

	got, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Data.Title)
}

func TestCreatePost_Validation(t *testing.T) {
	svc, source, _ := newTestService(t)

	_, err := svc.CreatePost(context.Background(), models.PostInput{UserID: "user-1", UserName: "Asha", Title: "No content"})
	assert.ErrorIs(t, err, ErrInvalidPost)
	assert.Zero(t, source.Calls())
}

func TestCreatePost_Offline(t *testing.T) {
	svc, source, observer := newTestService(t)
	observer.HandleOffline()

	_, err := svc.CreatePost(context.Background(), models.PostInput{UserID: "u", UserName: "n", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, repository.ErrOffline)
	assert.Zero(t, source.Calls())
}

func TestAddComment(t *testing.T) {
	svc, _, observer := newTestService(t)
	ctx := context.Background()

	res, err := svc.AddComment(ctx, "post-3", models.CommentInput{UserID: "user-9", UserName: "Ravi", Content: "Check the brake fluid too."})
	require.NoError(t, err)
	assert.Regexp(t, `^comment-`, res.Data.ID)

	post, err := svc.Get(ctx, "post-3")
	require.NoError(t, err)
	require.Len(t, post.Data.Comments, 1)
	assert.Equal(t, res.Data, post.Data.Comments[0])

	_, err = svc.AddComment(ctx, "post-404", models.CommentInput{UserID: "u", UserName: "n", Content: "c"})
	assert.ErrorIs(t, err, datasource.ErrNotFound)

	_, err = svc.AddComment(ctx, "post-3", models.CommentInput{UserID: "u", UserName: "n"})
	assert.ErrorIs(t, err, ErrInvalidComment)

	observer.HandleOffline()
	_, err = svc.AddComment(ctx, "post-3", models.CommentInput{UserID: "u", UserName: "n", Content: "c"})
	assert.ErrorIs(t, err, repository.ErrOffline)
}

func TestToggleLike(t *testing.T) {
	svc, source, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "user-1", "post-404")
	assert.ErrorIs(t, err, datasource.ErrNotFound)

	// Nothing listed yet: the post is fetched and cached.
	state, err := svc.ToggleLike(ctx, "user-1", "post-2")
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 57, state.Likes)
	calls := source.Calls()

	state, err = svc.ToggleLike(ctx, "user-1", "post-2")
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 56, state.Likes)

	// Another user's like is tracked separately.
	state, err = svc.ToggleLike(ctx, "user-2", "post-2")
	require.NoError(t, err)
	assert.True(t, state.Liked)

	// Likes never reach the forum.
	assert.Equal(t, calls, source.Calls())
	post, err := source.Get(ctx, "post-2")
	require.NoError(t, err)
	assert.Equal(t, 56, post.Likes)
}
