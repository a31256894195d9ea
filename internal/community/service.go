package community

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
	"github.com/ukydev/vehiclemate/internal/repository"
	"github.com/ukydev/vehiclemate/internal/store"
)

var (
	ErrInvalidPost    = errors.New("invalid forum post")
	ErrInvalidComment = errors.New("invalid comment")
)

// DefaultLatency mirrors the round trips of the forum backend.
var DefaultLatency = datasource.Latency{
	List:   800 * time.Millisecond,
	Get:    400 * time.Millisecond,
	Create: 1000 * time.Millisecond,
	Update: 500 * time.Millisecond,
}

// NewSeedSource creates the in-memory forum. New posts go first.
func NewSeedSource(cfg datasource.Config, logger logrus.FieldLogger) *datasource.Seed[models.ForumPost] {
	return datasource.NewSeed("forum", SeedPosts(), DefaultLatency, cfg, logger, datasource.Prepend())
}

// LikeState is what a user sees after toggling a like.
type LikeState struct {
	PostID string `json:"postId"`
	Liked  bool   `json:"liked"`
	Likes  int    `json:"likes"`
}

// Service is the community forum.
type Service struct {
	repo     *repository.Repository[models.ForumPost]
	status   connectivity.Status
	validate *validator.Validate
	notifier notify.Notifier
	now      func() time.Time
	logger   logrus.FieldLogger

	mu    sync.Mutex
	liked map[string]map[string]bool
}

// NewService creates the forum on top of source.
func NewService(source datasource.Source[models.ForumPost], st *store.Store, status connectivity.Status, notifier notify.Notifier, validate *validator.Validate, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if validate == nil {
		validate = validator.New()
	}
	opts := repository.Options{Name: "community posts", Key: store.KeyForum, Prepend: true}
	return &Service{
		repo:     repository.New(source, st, status, notifier, opts, logger),
		status:   status,
		validate: validate,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.WithField("service", "community"),
		liked:    make(map[string]map[string]bool),
	}
}

// List returns every post. Posts created here come first.
func (s *Service) List(ctx context.Context) (repository.Result[[]models.ForumPost], error) {
	return s.repo.List(ctx)
}

// Get returns one post with its comments.
func (s *Service) Get(ctx context.Context, id string) (repository.Result[models.ForumPost], error) {
	return s.repo.Get(ctx, id)
}

// CreatePost publishes a new post. It is not available offline.
func (s *Service) CreatePost(ctx context.Context, in models.PostInput) (repository.Result[models.ForumPost], error) {
	if err := s.validate.Struct(in); err != nil {
		s.notify(notify.LevelError, "Title and content are required")
		return repository.Result[models.ForumPost]{}, fmt.Errorf("%w: %w", ErrInvalidPost, err)
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	post := models.ForumPost{
		ID:        "post-" + uuid.Must(uuid.NewV7()).String(),
		UserID:    in.UserID,
		UserName:  in.UserName,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: s.now().UTC(),
		Comments:  []models.ForumComment{},
		Tags:      tags,
	}
	res, err := s.repo.Create(ctx, post)
	if err != nil {
		return res, err
	}
	s.logger.WithFields(logrus.Fields{"post_id": post.ID, "user_id": post.UserID}).Info("Post created")
	s.notify(notify.LevelSuccess, "Post created successfully")
	return res, nil
}

// AddComment appends a comment to a post. Comments are never removed.
func (s *Service) AddComment(ctx context.Context, postID string, in models.CommentInput) (repository.Result[models.ForumComment], error) {
	if err := s.validate.Struct(in); err != nil {
		s.notify(notify.LevelError, "Comment cannot be empty")
		return repository.Result[models.ForumComment]{}, fmt.Errorf("%w: %w", ErrInvalidComment, err)
	}
	if s.status.Offline() {
		s.notify(notify.LevelError, "You're offline. Comments can't be posted right now.")
		return repository.Result[models.ForumComment]{}, repository.ErrOffline
	}

	current, err := s.repo.Get(ctx, postID)
	if err != nil {
		return repository.Result[models.ForumComment]{}, err
	}
	comment := models.ForumComment{
		ID:        "comment-" + uuid.Must(uuid.NewV7()).String(),
		UserID:    in.UserID,
		UserName:  in.UserName,
		Content:   in.Content,
		CreatedAt: s.now().UTC(),
	}
	post := current.Data.Clone()
	post.Comments = append(post.Comments, comment)

	res, err := s.repo.Update(ctx, post)
	if err != nil {
		return repository.Result[models.ForumComment]{}, err
	}
	return repository.MapResult(res, func(models.ForumPost) models.ForumComment { return comment }), nil
}

// ToggleLike flips userID's like on a post. Likes live only in this
// process and are never sent to the forum. A post missing from the cache is
// looked up once.
func (s *Service) ToggleLike(ctx context.Context, userID, postID string) (LikeState, error) {
	base, found := 0, false
	for _, p := range s.repo.Cached() {
		if p.ID == postID {
			base, found = p.Likes, true
			break
		}
	}
	if !found {
		res, err := s.repo.Get(ctx, postID)
		if err != nil {
			return LikeState{}, err
		}
		base = res.Data.Likes
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	posts, ok := s.liked[userID]
	if !ok {
		posts = make(map[string]bool)
		s.liked[userID] = posts
	}
	posts[postID] = !posts[postID]

	likes := base
	if posts[postID] {
		likes++
	}
	return LikeState{PostID: postID, Liked: posts[postID], Likes: max(likes, 0)}, nil
}

func (s *Service) notify(level notify.Level, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, message)
	}
}
