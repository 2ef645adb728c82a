package profile

import (
	"time"

	"social-service/internal/shared/apperr"
)

type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PassHash  string    `gorm:"not null" json:"-"`
	Avatar    string    `gorm:"size:512" json:"avatar"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Location  string    `gorm:"size:120" json:"location"`
	Company   string    `gorm:"size:120" json:"company"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Connection is a directed edge from UserID to TargetID. Lists are returned
// in insertion order.
type Connection struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:ux_profile_connections_pair,priority:1"`
	TargetID  string    `gorm:"size:36;not null;uniqueIndex:ux_profile_connections_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"not null"`

	User   Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Target Profile `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Connection) TableName() string { return "profile_connections" }

type Summary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

type RegisterReq struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateReq carries only the editable fields. A nil field is left as is;
// a sent name or email may not be blank.
type UpdateReq struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=120"`
	Email    *string `json:"email" validate:"omitnil,required,email"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
	Location *string `json:"location" validate:"omitempty,max=120"`
	Company  *string `json:"company" validate:"omitempty,max=120"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=512"`
}

var (
	ErrInvalidID      = apperr.Validation("invalid_user_id", "Invalid user ID format")
	ErrNotFound       = apperr.NotFound("user_not_found", "User not found")
	ErrNotOwner       = apperr.Authorization("not_owner", "Not authorized to update this profile")
	ErrEmailTaken     = apperr.Validation("email_taken", "Email already in use")
	ErrBadCredentials = apperr.Authentication("invalid_credentials", "Invalid credentials")
	ErrSelfConnect    = apperr.Validation("self_connection", "Cannot connect to yourself")
)
