package post

import (
	"context"
	"errors"

	"social-service/internal/shared/db"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, p *Post) error
	Get(ctx context.Context, id uint64) (*Post, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	Delete(ctx context.Context, id uint64) error
	ListByAuthor(ctx context.Context, authorID string) ([]Post, error)
	Window(ctx context.Context, offset, limit int) ([]Post, error)
	Count(ctx context.Context) (int64, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

// newestFirst is the single feed order: created_at then the insertion
// sequence, both descending.
func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("created_at DESC").Order("id DESC")
}

func byIDDesc(tx *gorm.DB) *gorm.DB { return tx.Order("id DESC") }

func withEngagement(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Likes", byIDDesc).Preload("Comments", byIDDesc)
}

func (r *repo) Create(ctx context.Context, p *Post) error {
	return r.store.DB.WithContext(ctx).Omit("Likes", "Comments").Create(p).Error
}

func (r *repo) Get(ctx context.Context, id uint64) (*Post, error) {
	var p Post
	err := withEngagement(r.store.Writer(ctx)).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.store.Writer(ctx).Model(&Post{}).Where("id = ?", id).Limit(1).Count(&n).Error
	return n > 0, err
}

// Delete removes the post and its engagement rows in one transaction.
func (r *repo) Delete(ctx context.Context, id uint64) error {
	return r.store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repo) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	var out []Post
	err := withEngagement(newestFirst(r.store.DB.WithContext(ctx))).
		Where("author_id = ?", authorID).
		Find(&out).Error
	return out, err
}

func (r *repo) Window(ctx context.Context, offset, limit int) ([]Post, error) {
	var out []Post
	err := withEngagement(newestFirst(r.store.DB.WithContext(ctx))).
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.DB.WithContext(ctx).Model(&Post{}).Count(&n).Error
	return n, err
}
