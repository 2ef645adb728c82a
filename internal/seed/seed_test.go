package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"social-service/internal/engagement"
	"social-service/internal/post"
	"social-service/internal/profile"
	"social-service/internal/shared/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	store := dbtest.Open(t,
		&profile.Profile{}, &profile.Connection{},
		&post.Post{}, &post.Like{}, &post.Comment{})
	profiles := profile.NewService(profile.NewRepository(store), profile.WithHashCost(bcrypt.MinCost))
	posts := post.NewService(post.NewRepository(store))
	eng := engagement.NewService(engagement.NewRepository(store))
	s := New(profiles, posts, eng, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	res, err := s.Run(ctx, Options{Users: 4, PostsPerUser: 3, Seed: 7})
	require.NoError(t, err)
	assert.Len(t, res.Profiles, 4)
	assert.Len(t, res.Posts, 12)

	page, err := posts.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 12, page.Total)

	likes, comments := 0, 0
	for _, p := range page.Items {
		likes += len(p.Likes)
		comments += len(p.Comments)
	}
	assert.Equal(t, res.Likes, likes)
	assert.Equal(t, res.Comments, comments)

	conns, err := profiles.GetConnections(ctx, res.Profiles[0])
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, res.Profiles[1], conns[0].ID)

	third, err := profiles.GetByID(ctx, res.Profiles[2])
	require.NoError(t, err)
	_, err = profiles.Authenticate(ctx, third.Email, Password)
	assert.NoError(t, err)
}
