package profile

import (
	"context"
	"errors"
	"time"

	"social-service/internal/shared/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	Get(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, id string, fields map[string]any) (bool, error)

	Connections(ctx context.Context, id string) ([]Summary, error)
	Connect(ctx context.Context, id, targetID string, at time.Time) error
	Disconnect(ctx context.Context, id, targetID string) error
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Create(ctx context.Context, p *Profile) error {
	err := r.store.DB.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken.WithCause(err)
	}
	return err
}

func (r *repo) first(tx *gorm.DB, query string, arg any) (*Profile, error) {
	var p Profile
	err := tx.Where(query, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Get(ctx context.Context, id string) (*Profile, error) {
	return r.first(r.store.Writer(ctx), "id = ?", id)
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.first(r.store.Writer(ctx), "email = ?", email)
}

func (r *repo) Update(ctx context.Context, id string, fields map[string]any) (bool, error) {
	res := r.store.DB.WithContext(ctx).Model(&Profile{}).Where("id = ?", id).Updates(fields)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, ErrEmailTaken.WithCause(res.Error)
	}
	return res.RowsAffected > 0, res.Error
}

func (r *repo) Connections(ctx context.Context, id string) ([]Summary, error) {
	out := []Summary{}
	err := r.store.Writer(ctx).
		Table("profile_connections AS c").
		Select("p.id, p.name, p.email, p.avatar").
		Joins("JOIN profiles AS p ON p.id = c.target_id").
		Where("c.user_id = ?", id).
		Order("c.id ASC").
		Scan(&out).Error
	return out, err
}

func (r *repo) Connect(ctx context.Context, id, targetID string, at time.Time) error {
	return r.store.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&Connection{UserID: id, TargetID: targetID, CreatedAt: at}).Error
}

func (r *repo) Disconnect(ctx context.Context, id, targetID string) error {
	return r.store.DB.WithContext(ctx).
		Where("user_id = ? AND target_id = ?", id, targetID).
		Delete(&Connection{}).Error
}
