// Package seed fills a fresh database with fake profiles, posts and
// engagement for local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"social-service/internal/engagement"
	"social-service/internal/post"
	"social-service/internal/profile"

	"github.com/brianvoe/gofakeit/v6"
)

const Password = "123456"

type Options struct {
	Users        int
	PostsPerUser int
	Seed         int64
}

type Result struct {
	Profiles []string
	Posts    []uint64
	Likes    int
	Comments int
}

type Seeder struct {
	profiles   profile.Service
	posts      post.Service
	engagement engagement.Service
	log        *slog.Logger
}

func New(p profile.Service, ps post.Service, e engagement.Service, log *slog.Logger) *Seeder {
	return &Seeder{profiles: p, posts: ps, engagement: e, log: log}
}

// Run registers opts.Users profiles sharing Password, connects each to the
// next, then has every profile write posts that the others like and
// comment on.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	f := gofakeit.New(opts.Seed)
	res := &Result{}
	authors := make([]post.Author, 0, opts.Users)

	for i := 0; i < opts.Users; i++ {
		p, err := s.profiles.Register(ctx, profile.RegisterReq{
			Name:     f.Name(),
			Email:    fmt.Sprintf("seed%d.%s", i, f.Email()),
			Password: Password,
		})
		if err != nil {
			return res, fmt.Errorf("register user %d: %w", i, err)
		}
		res.Profiles = append(res.Profiles, p.ID)
		authors = append(authors, post.Author{ID: p.ID, Name: p.Name, Avatar: p.Avatar})
	}

	for i := 1; i < len(authors); i++ {
		prev := authors[i-1].ID
		if _, err := s.profiles.Connect(ctx, prev, prev, authors[i].ID); err != nil {
			return res, fmt.Errorf("connect: %w", err)
		}
	}

	for _, a := range authors {
		for j := 0; j < opts.PostsPerUser; j++ {
			p, err := s.posts.Create(ctx, a, f.Sentence(f.Number(4, 16)), "")
			if err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			res.Posts = append(res.Posts, p.ID)
		}
	}

	for _, id := range res.Posts {
		for _, a := range authors {
			if f.Bool() {
				if _, err := s.engagement.ToggleLike(ctx, id, a.ID); err != nil {
					return res, fmt.Errorf("like post %d: %w", id, err)
				}
				res.Likes++
			}
			if f.Number(0, 3) == 0 {
				if _, err := s.engagement.AddComment(ctx, id, a, f.Sentence(f.Number(3, 10))); err != nil {
					return res, fmt.Errorf("comment on post %d: %w", id, err)
				}
				res.Comments++
			}
		}
	}

	s.log.InfoContext(ctx, "seed complete",
		"profiles", len(res.Profiles), "posts", len(res.Posts),
		"likes", res.Likes, "comments", res.Comments)
	return res, nil
}
