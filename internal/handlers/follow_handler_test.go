package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUser(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")
	u2 := env.createUser(t, "u2")
	tok := env.token(t, u1)

	rec := env.do(t, request{method: http.MethodPost, path: "/api/follow", token: tok, body: models.FollowRequest{FollowingID: u2.ID}})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Followed successfully", bodyField(t, rec, "message"))
	assert.Equal(t, int64(1), env.followCount(t))

	rec = env.do(t, request{method: http.MethodPost, path: "/api/follow", token: tok, body: models.FollowRequest{FollowingID: u2.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already following this user", bodyField(t, rec, "error"))
	assert.Equal(t, int64(1), env.followCount(t))
}

func TestFollowUser_Self(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")

	rec := env.do(t, request{method: http.MethodPost, path: "/api/follow", token: env.token(t, u1), body: models.FollowRequest{FollowingID: u1.ID}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "You cannot follow yourself", bodyField(t, rec, "error"))
	assert.Zero(t, env.followCount(t))
}

func TestFollowUser_Rejections(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")
	tok := env.token(t, u1)

	tests := []struct {
		name string
		req  request
		code int
	}{
		{"no token", request{method: http.MethodPost, path: "/api/follow", body: models.FollowRequest{FollowingID: 2}}, http.StatusUnauthorized},
		{"bad token", request{method: http.MethodPost, path: "/api/follow", token: "garbage", body: models.FollowRequest{FollowingID: 2}}, http.StatusForbidden},
		{"missing target", request{method: http.MethodPost, path: "/api/follow", token: tok, body: map[string]string{}}, http.StatusBadRequest},
		{"unknown target", request{method: http.MethodPost, path: "/api/follow", token: tok, body: models.FollowRequest{FollowingID: 999}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, bodyField(t, rec, "error"))
		})
	}
	assert.Zero(t, env.followCount(t))
}

func TestFollowUser_LocalizedMessages(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")
	u2 := env.createUser(t, "u2")
	tok := env.token(t, u1)

	rec := env.do(t, request{method: http.MethodPost, path: "/api/follow", token: tok, lang: "ru-RU,ru;q=0.9", body: models.FollowRequest{FollowingID: u2.ID}})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Подписка успешно создана", bodyField(t, rec, "message"))

	rec = env.do(t, request{method: http.MethodPost, path: "/api/follow", token: tok, lang: "ru", body: models.FollowRequest{FollowingID: u2.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Подписка уже существует", bodyField(t, rec, "error"))
}

func TestUnfollowUser(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")
	u2 := env.createUser(t, "u2")
	tok := env.token(t, u1)

	rec := env.do(t, request{method: http.MethodDelete, path: fmt.Sprintf("/api/follow/%d", u2.ID), token: tok})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "You are not following this user", bodyField(t, rec, "error"))

	_, err := env.follows.Follow(context.Background(), u1.ID, u2.ID)
	require.NoError(t, err)

	rec = env.do(t, request{method: http.MethodDelete, path: fmt.Sprintf("/api/follow/%d", u2.ID), token: tok})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Unfollowed successfully", bodyField(t, rec, "message"))
	assert.Zero(t, env.followCount(t))
}

func TestUnfollowUser_TargetInBody(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")
	u2 := env.createUser(t, "u2")
	_, err := env.follows.Follow(context.Background(), u1.ID, u2.ID)
	require.NoError(t, err)

	rec := env.do(t, request{method: http.MethodDelete, path: "/api/follow", token: env.token(t, u1), body: models.FollowRequest{FollowingID: u2.ID}})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, env.followCount(t))
}

// u1 follows u2, u2 cannot unfollow u1, u1 unfollows u2 and can follow again.
func TestFollowScenario(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")
	u2 := env.createUser(t, "u2")
	t1, t2 := env.token(t, u1), env.token(t, u2)

	steps := []struct {
		req  request
		code int
	}{
		{request{method: http.MethodPost, path: "/api/follow", token: t1, body: models.FollowRequest{FollowingID: u2.ID}}, http.StatusCreated},
		{request{method: http.MethodDelete, path: fmt.Sprintf("/api/follow/%d", u1.ID), token: t2}, http.StatusNotFound},
		{request{method: http.MethodPost, path: "/api/follow", token: t1, body: models.FollowRequest{FollowingID: u2.ID}}, http.StatusBadRequest},
		{request{method: http.MethodDelete, path: fmt.Sprintf("/api/follow/%d", u2.ID), token: t1}, http.StatusCreated},
		{request{method: http.MethodPost, path: "/api/follow", token: t1, body: models.FollowRequest{FollowingID: u2.ID}}, http.StatusCreated},
	}
	for i, s := range steps {
		rec := env.do(t, s.req)
		require.Equal(t, s.code, rec.Code, "step %d: %s", i, rec.Body.String())
	}
	assert.Equal(t, int64(1), env.followCount(t))
}

func TestFollowGraphEndpoints(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "alice")
	b := env.createUser(t, "bob")
	c := env.createUser(t, "carol")
	ctx := context.Background()
	for _, pair := range [][2]uint{{a.ID, c.ID}, {b.ID, c.ID}, {c.ID, a.ID}} {
		_, err := env.follows.Follow(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}
	tok := env.token(t, a)

	rec := env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/users/%d/followers", c.ID), token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	var followers []models.UserCompact
	decode(t, rec, &followers)
	require.Len(t, followers, 2)
	assert.Equal(t, "alice", followers[0].Name)
	assert.Equal(t, "bob", followers[1].Name)

	rec = env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/users/%d/following", c.ID), token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	var following []models.UserCompact
	decode(t, rec, &following)
	require.Len(t, following, 1)
	assert.Equal(t, a.ID, following[0].ID)

	rec = env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/users/%d/follow-counts", c.ID), token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	var counts models.FollowCounts
	decode(t, rec, &counts)
	assert.Equal(t, models.FollowCounts{UserID: c.ID, Followers: 2, Following: 1}, counts)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/users/999/followers", token: tok})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// stubFollows fails every write with err.
type stubFollows struct {
	FollowManager
	err error
}

func (s stubFollows) Follow(context.Context, uint, uint) (*models.Follow, error) { return nil, s.err }
func (s stubFollows) Unfollow(context.Context, uint, uint) error                 { return s.err }

func TestFollowUser_StoreFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"timeout", services.ErrTimeout, http.StatusGatewayTimeout, "The request timed out, please retry"},
		{"persistence", &services.PersistenceError{Op: "create edge", Err: errors.New("connection reset")}, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, withFollowManager(stubFollows{err: tt.err}))
			u1 := env.createUser(t, "u1")
			u2 := env.createUser(t, "u2")
			tok := env.token(t, u1)

			rec := env.do(t, request{method: http.MethodPost, path: "/api/follow", token: tok, body: models.FollowRequest{FollowingID: u2.ID}})
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, bodyField(t, rec, "error"))

			rec = env.do(t, request{method: http.MethodDelete, path: fmt.Sprintf("/api/follow/%d", u2.ID), token: tok})
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, bodyField(t, rec, "error"))
		})
	}
}

func TestUnfollowUser_MalformedPathID(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.createUser(t, "u1")
	u2 := env.createUser(t, "u2")
	_, err := env.follows.Follow(context.Background(), u1.ID, u2.ID)
	require.NoError(t, err)

	// the body is not consulted when the path carries an id
	rec := env.do(t, request{method: http.MethodDelete, path: "/api/follow/abc", token: env.token(t, u1), lang: "ru", body: models.FollowRequest{FollowingID: u2.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Некорректный ID пользователя", bodyField(t, rec, "error"))
	assert.Equal(t, int64(1), env.followCount(t))
}
