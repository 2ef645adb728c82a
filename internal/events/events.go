// Package events defines the domain events emitted after successful writes.
package events

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"social-service/internal/metrics"
)

type Type string

const (
	PostCreated    Type = "post.created"
	PostDeleted    Type = "post.deleted"
	PostLiked      Type = "post.liked"
	PostUnliked    Type = "post.unliked"
	CommentAdded   Type = "comment.added"
	CommentDeleted Type = "comment.deleted"
)

type Event struct {
	Type      Type      `json:"type"`
	PostID    uint64    `json:"post_id"`
	ActorID   string    `json:"actor_id"`
	CommentID uint64    `json:"comment_id,omitempty"`
	At        time.Time `json:"at"`
}

// Key groups all events of one post on the same partition.
func (e Event) Key() string { return strconv.FormatUint(e.PostID, 10) }

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
	return nil
}

func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

// Emit publishes ev and logs a failure instead of returning it. Callers use
// it after their write has committed.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		metrics.EventPublishErrors.Inc()
		slog.WarnContext(ctx, "event publish failed", "type", ev.Type, "post_id", ev.PostID, "error", err)
	}
}
