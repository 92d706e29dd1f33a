package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/models"
	"github.com/cppla/commentbox/repositories"
	"github.com/cppla/commentbox/utils"
)

// Listing keys embed a generation that every write bumps, so a listing loaded
// before a write can only be cached under a generation nobody reads again.
const (
	listingCachePrefix   = "cache:comments:"
	listingGenerationKey = "cache:comments-gen"
	rootsCacheSuffix     = "roots"
	byRootCacheSuffix    = "root:"
)

// NewComment is the client-supplied part of a comment.
type NewComment struct {
	Title    string
	Body     string
	ParentID *string
	RootID   *string
}

// CommentService creates and lists threaded comments.
type CommentService struct {
	repo      repositories.CommentRepository
	cache     *utils.Cache
	sanitizer *utils.Sanitizer
	now       func() time.Time
	logger    *zap.Logger
}

// CommentOption customises a CommentService.
type CommentOption func(*CommentService)

// WithClock replaces the clock used to stamp PostedAt.
func WithClock(now func() time.Time) CommentOption {
	return func(s *CommentService) { s.now = now }
}

// WithCache enables listing caching.
func WithCache(cache *utils.Cache) CommentOption {
	return func(s *CommentService) { s.cache = cache }
}

func NewCommentService(repo repositories.CommentRepository, sanitizer *utils.Sanitizer, logger *zap.Logger, opts ...CommentOption) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CommentService{
		repo:      repo,
		sanitizer: sanitizer,
		now:       time.Now,
		logger:    logger.Named("comments"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a comment by author, stamping PostedAt with the server clock.
// Parent and root ids are stored as given; empty strings mean "none".
func (s *CommentService) Create(ctx context.Context, author string, in NewComment) (*models.Comment, error) {
	comment := &models.Comment{
		Title:    s.sanitizer.Title(in.Title),
		Body:     s.sanitizer.Body(in.Body),
		Author:   author,
		PostedAt: s.now().UTC().Truncate(time.Millisecond), // datetime(3) precision
		ParentID: normalizeID(in.ParentID),
		RootID:   normalizeID(in.RootID),
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		s.logger.Error("comment insert failed", zap.String("author", author), zap.Error(err))
		return nil, oops.Code(CodeStoreFailure).With("operation", "create comment").Wrap(err)
	}

	if gen, ok := s.cache.Bump(ctx, listingGenerationKey); ok {
		s.cache.InvalidateByPrefix(ctx, generationPrefix(gen-1))
	} else {
		s.cache.InvalidateByPrefix(ctx, listingCachePrefix)
	}
	return comment, nil
}

// ListRoots returns every thread root, newest first.
func (s *CommentService) ListRoots(ctx context.Context) ([]models.Comment, error) {
	return s.list(ctx, rootsCacheSuffix, s.repo.FindRoots)
}

// ListByRoot returns every reply in the thread rooted at rootID, newest first.
// An unknown rootID yields an empty slice.
func (s *CommentService) ListByRoot(ctx context.Context, rootID string) ([]models.Comment, error) {
	return s.list(ctx, byRootCacheSuffix+rootID, func(ctx context.Context) ([]models.Comment, error) {
		return s.repo.FindByRoot(ctx, rootID)
	})
}

// GetByID returns one comment or a CodeCommentNotFound error.
func (s *CommentService) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, oops.Code(CodeCommentNotFound).With("comment_id", id).Errorf("comment not found")
		}
		return nil, oops.Code(CodeStoreFailure).With("operation", "find comment").Wrap(err)
	}
	return comment, nil
}

func (s *CommentService) list(ctx context.Context, suffix string, load func(context.Context) ([]models.Comment, error)) ([]models.Comment, error) {
	// the generation must be read before the store
	gen, cacheable := s.cache.Generation(ctx, listingGenerationKey)
	key := generationPrefix(gen) + suffix
	if cacheable {
		var cached []models.Comment
		if s.cache.GetJSON(ctx, key, &cached) && cached != nil {
			return cached, nil
		}
	}

	comments, err := load(ctx)
	if err != nil {
		return nil, oops.Code(CodeStoreFailure).With("operation", "list comments").Wrap(err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	if cacheable {
		s.cache.SetJSON(ctx, key, comments)
	}
	return comments, nil
}

func generationPrefix(gen int64) string {
	return listingCachePrefix + "g" + strconv.FormatInt(gen, 10) + ":"
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
