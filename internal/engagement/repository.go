package engagement

import (
	"context"
	"errors"
	"time"

	"social-service/internal/post"
	"social-service/internal/shared/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository issues one targeted statement per mutation. Nothing here reads
// a whole post, edits it in memory and writes it back.
type Repository interface {
	PostExists(ctx context.Context, postID uint64) (bool, error)

	InsertLike(ctx context.Context, postID uint64, userID string, at time.Time) (bool, error)
	DeleteLike(ctx context.Context, postID uint64, userID string) (bool, error)
	Likes(ctx context.Context, postID uint64) ([]post.Like, error)

	InsertComment(ctx context.Context, c *post.Comment) error
	GetComment(ctx context.Context, postID, commentID uint64) (*post.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID uint64, authorID string) (bool, error)
	Comments(ctx context.Context, postID uint64) ([]post.Comment, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) PostExists(ctx context.Context, postID uint64) (bool, error) {
	var n int64
	err := r.store.Writer(ctx).Model(&post.Post{}).Where("id = ?", postID).Limit(1).Count(&n).Error
	return n > 0, err
}

// InsertLike reports false when the (post, user) pair already existed.
func (r *repo) InsertLike(ctx context.Context, postID uint64, userID string, at time.Time) (bool, error) {
	res := r.store.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&post.Like{PostID: postID, UserID: userID, LikedAt: at})
	if err := translate(res.Error); err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) DeleteLike(ctx context.Context, postID uint64, userID string) (bool, error) {
	res := r.store.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&post.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *repo) Likes(ctx context.Context, postID uint64) ([]post.Like, error) {
	out := []post.Like{}
	err := r.store.Writer(ctx).Where("post_id = ?", postID).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *repo) InsertComment(ctx context.Context, c *post.Comment) error {
	return translate(r.store.DB.WithContext(ctx).Create(c).Error)
}

func (r *repo) GetComment(ctx context.Context, postID, commentID uint64) (*post.Comment, error) {
	var c post.Comment
	err := r.store.Writer(ctx).Where("id = ? AND post_id = ?", commentID, postID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) DeleteComment(ctx context.Context, postID, commentID uint64, authorID string) (bool, error) {
	res := r.store.DB.WithContext(ctx).
		Where("id = ? AND post_id = ? AND author_id = ?", commentID, postID, authorID).
		Delete(&post.Comment{})
	return res.RowsAffected > 0, res.Error
}

func (r *repo) Comments(ctx context.Context, postID uint64) ([]post.Comment, error) {
	out := []post.Comment{}
	err := r.store.Writer(ctx).Where("post_id = ?", postID).Order("id DESC").Find(&out).Error
	return out, err
}

// translate maps a foreign key failure, which means the post was deleted
// after the existence check, to the post's not found error.
func translate(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return post.ErrNotFound
	}
	return err
}
