package engagement

import (
	"context"
	"net/http"
	"strings"
	"time"

	"social-service/internal/events"
	"social-service/internal/metrics"
	"social-service/internal/post"
	"social-service/internal/shared/apperr"
)

var (
	ErrNotLiked         = apperr.InvalidState("not_liked", "Post has not yet been liked")
	ErrEmptyComment     = apperr.Validation("empty_text", "Text is required")
	ErrCommentNotFound  = apperr.NotFound("comment_not_found", "Comment not found")
	ErrNotCommentAuthor = apperr.Authorization("not_author", "User not authorized").WithStatus(http.StatusUnauthorized)
)

type Service interface {
	ToggleLike(ctx context.Context, postID uint64, userID string) ([]post.Like, error)
	Unlike(ctx context.Context, postID uint64, userID string) ([]post.Like, error)
	AddComment(ctx context.Context, postID uint64, author post.Author, text string) ([]post.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID uint64, requesterID string) ([]post.Comment, error)
}

type Option func(*service)

func WithEvents(p events.Publisher) Option  { return func(s *service) { s.events = p } }
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

type service struct {
	repo   Repository
	events events.Publisher
	now    func() time.Time
}

func NewService(r Repository, opts ...Option) Service {
	s := &service{repo: r, events: events.Nop{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) mustExist(ctx context.Context, postID uint64) error {
	ok, err := s.repo.PostExists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return post.ErrNotFound
	}
	return nil
}

// ToggleLike likes the post, or unlikes it when userID already liked it.
// The insert is conditional on the (post, user) pair being absent, so
// concurrent toggles by different users never overwrite each other.
func (s *service) ToggleLike(ctx context.Context, postID uint64, userID string) ([]post.Like, error) {
	if err := s.mustExist(ctx, postID); err != nil {
		return nil, err
	}
	at := s.now().UTC()
	inserted, err := s.repo.InsertLike(ctx, postID, userID, at)
	if err != nil {
		return nil, err
	}
	typ := events.PostLiked
	if !inserted {
		if _, err := s.repo.DeleteLike(ctx, postID, userID); err != nil {
			return nil, err
		}
		typ = events.PostUnliked
	}
	metrics.Likes.WithLabelValues(actionOf(typ)).Inc()
	events.Emit(ctx, s.events, events.Event{Type: typ, PostID: postID, ActorID: userID, At: at})
	return s.repo.Likes(ctx, postID)
}

func (s *service) Unlike(ctx context.Context, postID uint64, userID string) ([]post.Like, error) {
	if err := s.mustExist(ctx, postID); err != nil {
		return nil, err
	}
	deleted, err := s.repo.DeleteLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotLiked
	}
	metrics.Likes.WithLabelValues("unlike").Inc()
	events.Emit(ctx, s.events, events.Event{Type: events.PostUnliked, PostID: postID, ActorID: userID, At: s.now().UTC()})
	return s.repo.Likes(ctx, postID)
}

func (s *service) AddComment(ctx context.Context, postID uint64, author post.Author, text string) ([]post.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	if err := s.mustExist(ctx, postID); err != nil {
		return nil, err
	}
	c := &post.Comment{
		PostID:       postID,
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar,
		Text:         text,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.InsertComment(ctx, c); err != nil {
		return nil, err
	}
	metrics.Comments.WithLabelValues("add").Inc()
	events.Emit(ctx, s.events, events.Event{
		Type: events.CommentAdded, PostID: postID, ActorID: author.ID, CommentID: c.ID, At: c.CreatedAt,
	})
	return s.repo.Comments(ctx, postID)
}

func (s *service) DeleteComment(ctx context.Context, postID, commentID uint64, requesterID string) ([]post.Comment, error) {
	if err := s.mustExist(ctx, postID); err != nil {
		return nil, err
	}
	c, err := s.repo.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != requesterID {
		return nil, ErrNotCommentAuthor
	}
	deleted, err := s.repo.DeleteComment(ctx, postID, commentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrCommentNotFound
	}
	metrics.Comments.WithLabelValues("delete").Inc()
	events.Emit(ctx, s.events, events.Event{
		Type: events.CommentDeleted, PostID: postID, ActorID: requesterID, CommentID: commentID, At: s.now().UTC(),
	})
	return s.repo.Comments(ctx, postID)
}

func actionOf(t events.Type) string {
	if t == events.PostLiked {
		return "like"
	}
	return "unlike"
}
