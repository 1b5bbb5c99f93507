package repository

import (
	"context"
	"testing"
	"time"

	"postboard/internal/db/dbtest"
	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repos *Repositories, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "x"}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	repos := New(dbtest.New(t))
	ctx := context.Background()

	u := seedUser(t, repos, "leo")

	got, err := repos.Users.GetByUsername(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repos.Users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := repos.Users.UsernameExists(ctx, "leo")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGroupSlugUnique(t *testing.T) {
	repos := New(dbtest.New(t))
	ctx := context.Background()

	require.NoError(t, repos.Groups.Create(ctx, &models.Group{Title: "Cats", Slug: "cats"}))
	err := repos.Groups.Create(ctx, &models.Group{Title: "Other cats", Slug: "cats"})
	assert.Error(t, err)

	g, err := repos.Groups.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Cats", g.Title)
}

func TestPostListNewestFirst(t *testing.T) {
	repos := New(dbtest.New(t))
	ctx := context.Background()
	author := seedUser(t, repos, "leo")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		p := &models.Post{Text: "post", AuthorID: author.ID, PubDate: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repos.Posts.Create(ctx, p))
	}

	total, err := repos.Posts.Count(ctx, PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)

	first, err := repos.Posts.List(ctx, PostFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.True(t, first[0].PubDate.After(first[9].PubDate))
	assert.Equal(t, "leo", first[0].Author.Username)

	second, err := repos.Posts.List(ctx, PostFilter{}, 10, 10)
	require.NoError(t, err)
	assert.Len(t, second, 5)
	assert.True(t, first[9].PubDate.After(second[0].PubDate))
}

func TestPostDeleteRemovesComments(t *testing.T) {
	repos := New(dbtest.New(t))
	ctx := context.Background()
	author := seedUser(t, repos, "leo")

	p := &models.Post{Text: "doomed", AuthorID: author.ID}
	require.NoError(t, repos.Posts.Create(ctx, p))
	require.NoError(t, repos.Comments.Create(ctx, &models.Comment{PostID: p.ID, AuthorID: author.ID, Text: "hi"}))

	listed, err := repos.Posts.List(ctx, PostFilter{AuthorID: author.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].CommentCount)

	require.NoError(t, repos.Posts.Delete(ctx, p.ID))

	_, err = repos.Posts.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	comments, err := repos.Comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, repos.Posts.Delete(ctx, p.ID), ErrNotFound)
}

func TestFollowPairIsUnique(t *testing.T) {
	repos := New(dbtest.New(t))
	ctx := context.Background()
	reader := seedUser(t, repos, "reader")
	writer := seedUser(t, repos, "writer")

	require.NoError(t, repos.Follows.Create(ctx, reader.ID, writer.ID))
	require.NoError(t, repos.Follows.Create(ctx, reader.ID, writer.ID))

	n, err := repos.Follows.CountFollowers(ctx, writer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repos.Follows.Delete(ctx, reader.ID, writer.ID))
	require.NoError(t, repos.Follows.Delete(ctx, reader.ID, writer.ID))
	ok, err := repos.Follows.Exists(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowFeedFilter(t *testing.T) {
	repos := New(dbtest.New(t))
	ctx := context.Background()
	reader := seedUser(t, repos, "reader")
	followed := seedUser(t, repos, "followed")
	stranger := seedUser(t, repos, "stranger")

	require.NoError(t, repos.Posts.Create(ctx, &models.Post{Text: "from followed", AuthorID: followed.ID}))
	require.NoError(t, repos.Posts.Create(ctx, &models.Post{Text: "from stranger", AuthorID: stranger.ID}))
	require.NoError(t, repos.Follows.Create(ctx, reader.ID, followed.ID))

	posts, err := repos.Posts.List(ctx, PostFilter{FollowerID: reader.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "from followed", posts[0].Text)
}
