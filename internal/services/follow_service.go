package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/anonto42/socialnet/backend/internal/cache"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/pkg/logger"
)

// FollowStore is the persistence capability the follow manager needs.
// FindEdge and DeleteEdge report a missing edge as repositories.ErrFollowNotFound;
// CreateEdge reports a uniqueness conflict as repositories.ErrAlreadyFollowing.
type FollowStore interface {
	FindEdge(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	CreateEdge(ctx context.Context, follow *models.Follow) error
	DeleteEdge(ctx context.Context, id uint) error
}

// FollowGraphReader serves the read side of the follow graph.
type FollowGraphReader interface {
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
}

// FollowRepository is everything the service reads and writes.
type FollowRepository interface {
	FollowStore
	FollowGraphReader
}

// Notifier receives a callback after a new edge is stored.
type Notifier interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Recorder counts follow outcomes.
type Recorder interface {
	ObserveFollow(op, outcome string)
}

const (
	OpFollow   = "follow"
	OpUnfollow = "unfollow"
)

// FollowService creates and removes directed follow edges. It holds no state
// between calls; everything lives in the store.
type FollowService struct {
	store    FollowRepository
	counts   cache.CountCache
	notifier Notifier
	recorder Recorder
	timeout  time.Duration
}

type FollowServiceOption func(*FollowService)

func WithCountCache(c cache.CountCache) FollowServiceOption {
	return func(s *FollowService) { s.counts = c }
}

func WithNotifier(n Notifier) FollowServiceOption {
	return func(s *FollowService) { s.notifier = n }
}

func WithRecorder(r Recorder) FollowServiceOption {
	return func(s *FollowService) { s.recorder = r }
}

// WithStoreTimeout bounds every store call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) FollowServiceOption {
	return func(s *FollowService) { s.timeout = d }
}

func NewFollowService(store FollowRepository, opts ...FollowServiceOption) *FollowService {
	s := &FollowService{
		store:   store,
		counts:  cache.NopCountCache{},
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Follow makes callerID follow targetID and returns the stored edge.
func (s *FollowService) Follow(ctx context.Context, callerID, targetID uint) (*models.Follow, error) {
	edge, err := s.follow(ctx, callerID, targetID)
	s.observe(OpFollow, err)
	if err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, callerID, targetID)
	s.notifyFollow(ctx, edge)
	return edge, nil
}

func (s *FollowService) follow(ctx context.Context, callerID, targetID uint) (*models.Follow, error) {
	if callerID == targetID {
		return nil, ErrSelfFollow
	}

	existing, err := s.findEdge(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyFollowing
	}

	edge := &models.Follow{FollowerID: callerID, FollowingID: targetID}
	err = s.call(ctx, "create edge", func(ctx context.Context) error {
		return s.store.CreateEdge(ctx, edge)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyFollowing) {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}
	return edge, nil
}

// Unfollow removes the edge callerID -> targetID.
func (s *FollowService) Unfollow(ctx context.Context, callerID, targetID uint) error {
	err := s.unfollow(ctx, callerID, targetID)
	s.observe(OpUnfollow, err)
	if err != nil {
		return err
	}

	s.invalidateCounts(ctx, callerID, targetID)
	return nil
}

func (s *FollowService) unfollow(ctx context.Context, callerID, targetID uint) error {
	existing, err := s.findEdge(ctx, callerID, targetID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFollowing
	}

	err = s.call(ctx, "delete edge", func(ctx context.Context) error {
		return s.store.DeleteEdge(ctx, existing.ID)
	})
	if err != nil {
		// a concurrent unfollow won the race
		if errors.Is(err, repositories.ErrFollowNotFound) {
			return ErrNotFollowing
		}
		return err
	}
	return nil
}

// findEdge returns (nil, nil) when no edge exists.
func (s *FollowService) findEdge(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var edge *models.Follow
	err := s.call(ctx, "find edge", func(ctx context.Context) error {
		var err error
		edge, err = s.store.FindEdge(ctx, followerID, followingID)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrFollowNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return edge, nil
}

// IsFollowing reports whether followerID currently follows followingID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var following bool
	err := s.call(ctx, "is following", func(ctx context.Context) error {
		var err error
		following, err = s.store.IsFollowing(ctx, followerID, followingID)
		return err
	})
	return following, err
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.call(ctx, "list followers", func(ctx context.Context) error {
		var err error
		users, err = s.store.GetFollowers(ctx, userID)
		return err
	})
	return users, err
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.call(ctx, "list following", func(ctx context.Context) error {
		var err error
		users, err = s.store.GetFollowing(ctx, userID)
		return err
	})
	return users, err
}

// Counts returns follower and following totals, from cache when possible.
func (s *FollowService) Counts(ctx context.Context, userID uint) (models.FollowCounts, error) {
	l := logger.Ctx(ctx)

	counts, found, err := s.counts.Get(ctx, userID)
	if err != nil {
		l.Warn().Err(err).Uint("user_id", userID).Msg("follow count cache read failed, falling back to db")
	}
	if found {
		return counts, nil
	}

	counts = models.FollowCounts{UserID: userID}
	err = s.call(ctx, "count follows", func(ctx context.Context) error {
		var err error
		if counts.Followers, err = s.store.GetFollowersCount(ctx, userID); err != nil {
			return err
		}
		counts.Following, err = s.store.GetFollowingCount(ctx, userID)
		return err
	})
	if err != nil {
		return models.FollowCounts{}, err
	}

	if err := s.counts.Set(ctx, counts); err != nil {
		l.Warn().Err(err).Uint("user_id", userID).Msg("failed to cache follow counts")
	}
	return counts, nil
}

// call runs one store operation under the configured timeout and classifies
// its failure as ErrTimeout or *PersistenceError. Domain sentinels from the
// repositories pass through unchanged.
func (s *FollowService) call(ctx context.Context, op string, fn func(context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := fn(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrFollowNotFound), errors.Is(err, repositories.ErrAlreadyFollowing):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}

func (s *FollowService) invalidateCounts(ctx context.Context, userIDs ...uint) {
	if err := s.counts.Invalidate(ctx, userIDs...); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate follow counts")
	}
}

func (s *FollowService) notifyFollow(ctx context.Context, edge *models.Follow) {
	if s.notifier == nil {
		return
	}
	n := &models.Notification{
		Type:        models.NotificationFollow,
		ActorID:     edge.FollowerID,
		RecipientID: edge.FollowingID,
		TargetID:    strconv.FormatUint(uint64(edge.FollowerID), 10),
		Message:     "started following you",
	}
	if err := s.notifier.CreateNotification(ctx, n); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Uint("follower_id", edge.FollowerID).
			Uint("following_id", edge.FollowingID).
			Msg("failed to create follow notification")
	}
}

func (s *FollowService) observe(op string, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveFollow(op, Outcome(op, err))
}

// Outcome names the result of a follow-graph operation for metrics and logs.
func Outcome(op string, err error) string {
	var pe *PersistenceError
	switch {
	case err == nil && op == OpFollow:
		return "created"
	case err == nil:
		return "removed"
	case errors.Is(err, ErrSelfFollow):
		return "self_follow"
	case errors.Is(err, ErrAlreadyFollowing):
		return "duplicate"
	case errors.Is(err, ErrNotFollowing):
		return "not_following"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &pe):
		return "persistence_error"
	default:
		return "error"
	}
}
