package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_posts_created_total",
		Help: "Posts created.",
	})
	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_posts_deleted_total",
		Help: "Posts deleted by their author.",
	})
	Likes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_likes_total",
		Help: "Like state changes by action (like, unlike).",
	}, []string{"action"})
	Comments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_comments_total",
		Help: "Comment writes by action (add, delete).",
	}, []string{"action"})
	FeedPageSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "social_feed_page_items",
		Help:    "Items returned per feed page.",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})
	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_event_publish_errors_total",
		Help: "Domain events that could not be published.",
	})
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
