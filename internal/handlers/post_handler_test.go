package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listPostsResponse struct {
	Posts []models.EnrichedPost `json:"posts"`
	Meta  struct {
		TotalItems  int64 `json:"totalItems"`
		HasNextPage bool  `json:"hasNextPage"`
	} `json:"meta"`
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "alice")

	rec := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: env.token(t, a), body: models.CreatePostRequest{Content: "hello world"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	decode(t, rec, &post)
	assert.False(t, post.ID.IsZero())
	assert.Equal(t, a.ID, post.AuthorID)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/posts", token: env.token(t, a), body: models.CreatePostRequest{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAllPosts(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "alice")
	b := env.createUser(t, "bob")
	first := env.createPost(t, a, "first")
	env.createPost(t, b, "second")
	require.NoError(t, env.likes.CreateLike(context.Background(), &models.Like{PostID: first.ID.Hex(), UserID: b.ID}))

	rec := env.do(t, request{method: http.MethodGet, path: "/api/posts?limit=1", token: env.token(t, b)})
	require.Equal(t, http.StatusOK, rec.Code)
	var page listPostsResponse
	decode(t, rec, &page)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "second", page.Posts[0].Content)
	assert.Equal(t, "bob", page.Posts[0].Author.Name)
	assert.False(t, page.Posts[0].LikedByUser)
	assert.Equal(t, int64(2), page.Meta.TotalItems)
	assert.True(t, page.Meta.HasNextPage)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/posts?page=2&limit=1", token: env.token(t, b)})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "first", page.Posts[0].Content)
	assert.Equal(t, "alice", page.Posts[0].Author.Name)
	assert.True(t, page.Posts[0].LikedByUser)
}

func TestGetPostByID(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "alice")
	b := env.createUser(t, "bob")
	post := env.createPost(t, a, "with comments")
	require.NoError(t, env.comments.CreateComment(context.Background(), &models.Comment{PostID: post.ID.Hex(), UserID: b.ID, Content: "nice"}))

	rec := env.do(t, request{method: http.MethodGet, path: "/api/posts/" + post.ID.Hex(), token: env.token(t, a)})
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.EnrichedPost
	decode(t, rec, &got)
	assert.Equal(t, "alice", got.Author.Name)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "nice", got.Comments[0].Content)
	assert.Equal(t, "bob", got.Comments[0].Author.Name)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/posts/000000000000000000000000", token: env.token(t, a)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", bodyField(t, rec, "error"))
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "alice")
	b := env.createUser(t, "bob")
	post := env.createPost(t, a, "short lived")
	postID := post.ID.Hex()
	ctx := context.Background()
	require.NoError(t, env.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: b.ID}))
	require.NoError(t, env.comments.CreateComment(ctx, &models.Comment{PostID: postID, UserID: b.ID, Content: "bye"}))

	rec := env.do(t, request{method: http.MethodDelete, path: "/api/posts/" + postID, token: env.token(t, b)})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, request{method: http.MethodDelete, path: "/api/posts/" + postID, token: env.token(t, a)})
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.posts.GetPostByID(ctx, postID)
	assert.Error(t, err)
	liked, err := env.likes.HasUserLikedPost(ctx, postID, b.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	comments, err := env.comments.GetCommentsByPostID(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	rec = env.do(t, request{method: http.MethodDelete, path: "/api/posts/" + postID, token: env.token(t, a)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
