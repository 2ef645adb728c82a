package post

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"social-service/internal/events"
	"social-service/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// MaxLimit caps the page size of List.
const MaxLimit = 100

type Service interface {
	Create(ctx context.Context, author Author, text, imagePath string) (*Post, error)
	GetByID(ctx context.Context, id uint64) (*Post, error)
	Delete(ctx context.Context, id uint64, requesterID string) error
	ListByAuthor(ctx context.Context, authorID string) ([]Post, error)
	List(ctx context.Context, page, limit int) (*Page, error)
}

// ImageRemover drops the blob behind a post's image path.
type ImageRemover interface {
	Remove(ctx context.Context, imagePath string) error
}

type Option func(*service)

func WithEvents(p events.Publisher) Option { return func(s *service) { s.events = p } }
func WithImages(r ImageRemover) Option      { return func(s *service) { s.images = r } }
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

type service struct {
	repo   Repository
	events events.Publisher
	images ImageRemover
	now    func() time.Time
}

func NewService(r Repository, opts ...Option) Service {
	s := &service{repo: r, events: events.Nop{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, author Author, text, imagePath string) (*Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	p := &Post{
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar,
		Text:         text,
		ImagePath:    imagePath,
		CreatedAt:    s.now().UTC(),
		Likes:        []Like{},
		Comments:     []Comment{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	metrics.PostsCreated.Inc()
	events.Emit(ctx, s.events, events.Event{Type: events.PostCreated, PostID: p.ID, ActorID: author.ID, At: p.CreatedAt})
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id uint64) (*Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint64, requesterID string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != requesterID {
		return ErrNotAuthor
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.PostsDeleted.Inc()
	if p.ImagePath != "" && s.images != nil {
		if err := s.images.Remove(ctx, p.ImagePath); err != nil {
			slog.WarnContext(ctx, "post image cleanup failed", "post_id", id, "image", p.ImagePath, "error", err)
		}
	}
	events.Emit(ctx, s.events, events.Event{Type: events.PostDeleted, PostID: id, ActorID: requesterID, At: s.now().UTC()})
	return nil
}

func (s *service) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

// List returns one page of the feed. The total and the window are read by
// separate concurrent queries, so a write landing between them can make
// hasMore briefly disagree with the items.
func (s *service) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 || limit < 1 || limit > MaxLimit || page-1 > math.MaxInt/limit {
		return nil, ErrBadPageArgs
	}
	skip := (page - 1) * limit

	var (
		items []Post
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = s.repo.Window(gctx, skip, limit)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Post{}
	}
	metrics.FeedPageSize.Observe(float64(len(items)))
	return &Page{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: int64(skip+len(items)) < total,
	}, nil
}
