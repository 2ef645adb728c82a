package main

import (
	"context"
	"fmt"
	"log/slog"

	"social-service/configs"
	"social-service/internal/engagement"
	"social-service/internal/events"
	"social-service/internal/idem"
	"social-service/internal/kafka"
	"social-service/internal/media"
	"social-service/internal/post"
	"social-service/internal/profile"
	"social-service/internal/ratelimit"
	"social-service/internal/redisx"
	"social-service/internal/shared/db"
	"social-service/internal/shared/jwt"
	"social-service/internal/storage/s3"
)

// deps holds everything the router and the commands need. Optional
// backends are nil when not configured.
type deps struct {
	cfg   *configs.Config
	log   *slog.Logger
	store *db.Store
	redis *redisx.Client

	tokens  *jwt.Issuer
	limiter ratelimit.Limiter
	idem    idem.Store
	images  *media.Service

	profiles   profile.Service
	posts      post.Service
	engagement engagement.Service

	closers []func() error
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.Warn("close", "error", err)
		}
	}
}

func buildDeps(ctx context.Context, cfg *configs.Config, log *slog.Logger) (*deps, error) {
	store, err := db.Open(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, log: log, store: store, closers: []func() error{store.Close}}

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Brokers != "" {
		p := kafka.NewPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.PostsTopic))
		d.closers = append(d.closers, p.Close)
		publisher = p
		log.Info("kafka publisher enabled", "topic", cfg.Kafka.PostsTopic)
	}

	d.limiter = ratelimit.NewLocal(cfg.Limit.Requests, cfg.Limit.Window)
	if rc := redisx.New(cfg.Redis); rc != nil {
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using in-process rate limiter", "addr", cfg.Redis.Addr, "error", err)
			_ = rc.Close()
		} else {
			d.redis = rc
			d.closers = append(d.closers, rc.Close)
			d.limiter = ratelimit.NewRedis(rc.R, cfg.Limit.Requests, cfg.Limit.Window)
			d.idem = idem.New(rc.R)
		}
	}

	var blobs media.BlobStore
	if cfg.S3.Endpoint != "" {
		st, err := s3.New(s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Bucket:    cfg.S3.Bucket,
		})
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("s3: %w", err)
		}
		if err := st.EnsureBucket(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("s3 bucket: %w", err)
		}
		blobs = st
	}
	d.images = media.NewService(blobs, cfg.MaxUploadBytes)
	d.tokens = jwt.New(cfg.JWT.Secret, cfg.JWT.TTL)

	d.profiles = profile.NewService(profile.NewRepository(store))
	d.posts = post.NewService(post.NewRepository(store),
		post.WithEvents(publisher), post.WithImages(d.images))
	d.engagement = engagement.NewService(engagement.NewRepository(store),
		engagement.WithEvents(publisher))
	return d, nil
}

// authorLookup snapshots the requester's profile onto new posts and
// comments.
func authorLookup(p profile.Service) post.AuthorLookup {
	return func(ctx context.Context, userID string) (post.Author, error) {
		pr, err := p.GetByID(ctx, userID)
		if err != nil {
			return post.Author{}, err
		}
		return post.Author{ID: pr.ID, Name: pr.Name, Avatar: pr.Avatar}, nil
	}
}
