package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/anonto42/socialnet/backend/internal/validators"
	"github.com/anonto42/socialnet/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "password123"

// memPostRepo keeps posts in memory in place of MongoDB.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
	clock time.Time
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[string]*models.Post{}, clock: time.Now().UTC()}
}

func (r *memPostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.clock
	post.UpdatedAt = r.clock
	cp := *post
	r.posts[post.ID.Hex()] = &cp
	return nil
}

func (r *memPostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if skip >= int64(len(all)) {
		return []models.Post{}, nil
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end], nil
}

func (r *memPostRepo) CountPosts(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func (r *memPostRepo) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) IncrementLikesCount(_ context.Context, postID string, delta int) error {
	return r.bump(postID, func(p *models.Post) { p.LikesCount += delta })
}

func (r *memPostRepo) IncrementCommentsCount(_ context.Context, postID string, delta int) error {
	return r.bump(postID, func(p *models.Post) { p.CommentsCount += delta })
}

func (r *memPostRepo) bump(postID string, fn func(*models.Post)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	fn(p)
	return nil
}

var _ repositories.PostRepository = (*memPostRepo)(nil)

type testEnv struct {
	e             *echo.Echo
	db            *gorm.DB
	users         repositories.UserRepository
	posts         *memPostRepo
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	notifications repositories.NotificationRepository
	follows       *services.FollowService
	tokens        *middleware.JWTVerifier
}

type envOption func(*envConfig)

type envConfig struct {
	firebase FirebaseTokenVerifier
	follows  FollowManager
}

func withFirebase(v FirebaseTokenVerifier) envOption {
	return func(c *envConfig) { c.firebase = v }
}

func withFollowManager(m FollowManager) envOption {
	return func(c *envConfig) { c.follows = m }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := config.OpenGorm("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), false)
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:            db,
		users:         repositories.NewPostgresUserRepository(db),
		posts:         newMemPostRepo(),
		comments:      repositories.NewPostgresCommentRepository(db),
		likes:         repositories.NewPostgresLikeRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
		tokens:        middleware.NewJWTVerifier("test-secret", time.Hour),
	}
	env.follows = services.NewFollowService(repositories.NewPostgresFollowRepository(db),
		services.WithNotifier(env.notifications))

	var follows FollowManager = env.follows
	if cfg.follows != nil {
		follows = cfg.follows
	}

	e := echo.New()
	e.HTTPErrorHandler = middleware.HTTPErrorHandler
	e.Validator = validators.NewValidator()
	e.GET("/health", HealthCheck)

	api := e.Group("/api")
	NewAuthHandler(env.users, env.tokens, cfg.firebase).RegisterAuthRoutes(api)

	protected := api.Group("", middleware.Auth(env.tokens))
	NewUserHandler(env.users, follows).RegisterProfileRoutes(protected)
	NewFollowHandler(follows, env.users).RegisterFollowRoutes(protected)
	NewPostHandler(env.posts, env.users, env.likes, env.comments).RegisterPostRoutes(protected)
	NewCommentHandler(env.comments, env.posts, env.notifications).RegisterCommentRoutes(protected)
	NewLikeHandler(env.likes, env.posts, env.notifications).RegisterLikeRoutes(protected)
	NewNotificationHandler(env.notifications).RegisterNotificationRoutes(protected)

	env.e = e
	return env
}

// createUser stores a user whose password is testPassword.
func (env *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Email:    fmt.Sprintf("%s@example.com", name),
		Name:     name,
		Password: string(hash),
	}
	require.NoError(t, env.users.CreateUser(context.Background(), u))
	return u
}

func (env *testEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := env.tokens.Issue(u)
	require.NoError(t, err)
	return tok
}

func (env *testEnv) createPost(t *testing.T, author *models.User, content string) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author.ID, Content: content}
	require.NoError(t, env.posts.CreatePost(context.Background(), p))
	return p
}

type request struct {
	method string
	path   string
	body   interface{}
	token  string
	lang   string
}

func (env *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &buf)
	if r.body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	if r.lang != "" {
		req.Header.Set("Accept-Language", r.lang)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func bodyField(t *testing.T, rec *httptest.ResponseRecorder, field string) string {
	t.Helper()
	var m map[string]interface{}
	decode(t, rec, &m)
	s, _ := m[field].(string)
	return s
}

func (env *testEnv) followCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Follow{}).Count(&n).Error)
	return n
}
