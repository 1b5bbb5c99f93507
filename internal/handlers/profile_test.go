package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	a := newApp(t)
	leo := &models.User{Username: "leo", FirstName: "Leo", LastName: "Tolstoy", Password: "x"}
	require.NoError(t, a.repos.Users.Create(context.Background(), leo))
	a.post(t, leo, "one", nil)
	a.post(t, leo, "two", nil)
	a.post(t, a.user(t, "mia"), "not mine", nil)
	c := a.client(t)

	page := c.get("/leo/")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Equal(t, "Leo Tolstoy", page.Doc.Find(".profile-name").Text())
	assert.Equal(t, "2", page.Doc.Find("#post-count").Text())
	assert.Equal(t, []string{"two", "one"}, postTexts(page))
	assert.Equal(t, 0, page.Doc.Find("#follow").Length(), "anonymous visitors see no follow button")
}

func TestFollowAndUnfollow(t *testing.T) {
	a := newApp(t)
	leo := a.user(t, "leo")
	a.user(t, "mia")
	a.post(t, leo, "news from leo", nil)
	c := a.client(t)
	c.login("mia")

	assert.Empty(t, postTexts(c.get("/follow/")))
	assert.Equal(t, 1, c.get("/leo/").Doc.Find("#follow").Length())

	for i := 0; i < 2; i++ {
		page := c.get("/leo/follow/")
		require.Equal(t, http.StatusFound, page.Code)
		assert.Equal(t, "/leo/", page.Location)
	}
	profile := c.get("/leo/")
	assert.Equal(t, "1", profile.Doc.Find("#followers-count").Text(), "following twice creates one edge")
	assert.Equal(t, 1, profile.Doc.Find("#unfollow").Length())
	assert.Equal(t, []string{"news from leo"}, postTexts(c.get("/follow/")))

	page := c.post("/leo/unfollow/", nil)
	require.Equal(t, http.StatusFound, page.Code)
	assert.Equal(t, "/leo/", page.Location)
	assert.Equal(t, http.StatusFound, c.get("/leo/unfollow/").Code)
	assert.Equal(t, "0", c.get("/leo/").Doc.Find("#followers-count").Text())
	assert.Empty(t, postTexts(c.get("/follow/")))
}

func TestSelfFollowIsIgnored(t *testing.T) {
	a := newApp(t)
	a.user(t, "leo")
	c := a.client(t)
	c.login("leo")

	page := c.get("/leo/follow/")
	require.Equal(t, http.StatusFound, page.Code)
	assert.Equal(t, "/leo/", page.Location)

	profile := c.get("/leo/")
	assert.Equal(t, "0", profile.Doc.Find("#followers-count").Text())
	assert.Equal(t, "0", profile.Doc.Find("#following-count").Text())
}

func TestFollowUnknownUser(t *testing.T) {
	a := newApp(t)
	a.user(t, "mia")
	c := a.client(t)
	c.login("mia")

	assert.Equal(t, http.StatusNotFound, c.get("/ghost/follow/").Code)
	assert.Equal(t, http.StatusNotFound, c.get("/ghost/unfollow/").Code)
}
