package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "alice")
	b := env.createUser(t, "bob")
	post := env.createPost(t, a, "discuss")
	postID := post.ID.Hex()
	ctx := context.Background()

	rec := env.do(t, request{method: http.MethodPost, path: "/api/comments", token: env.token(t, b), body: models.CreateCommentRequest{PostID: postID, Content: "first!"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var comment models.Comment
	decode(t, rec, &comment)
	assert.Equal(t, b.ID, comment.UserID)

	got, err := env.posts.GetPostByID(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)

	notifs, _, err := env.notifications.GetByRecipientID(ctx, a.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationComment, notifs[0].Type)

	path := fmt.Sprintf("/api/comments/%d", comment.ID)
	rec = env.do(t, request{method: http.MethodDelete, path: path, token: env.token(t, a)})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, request{method: http.MethodDelete, path: path, token: env.token(t, b)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{method: http.MethodDelete, path: path, token: env.token(t, b)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Comment not found", bodyField(t, rec, "error"))

	got, err = env.posts.GetPostByID(ctx, postID)
	require.NoError(t, err)
	assert.Zero(t, got.CommentsCount)
}

func TestCreateComment_Rejections(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "alice")
	tok := env.token(t, a)

	rec := env.do(t, request{method: http.MethodPost, path: "/api/comments", token: tok, body: models.CreateCommentRequest{PostID: "000000000000000000000000", Content: "hi"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	post := env.createPost(t, a, "p")
	rec = env.do(t, request{method: http.MethodPost, path: "/api/comments", token: tok, body: models.CreateCommentRequest{PostID: post.ID.Hex()}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
