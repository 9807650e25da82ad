package auth

import (
	"time"

	"github.com/betoojeda/tienda-facil/internal/domain/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserToken is one login session. ActiveStoreID is the store the session is working in.
type UserToken struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	User          *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AccessToken   string     `gorm:"uniqueIndex;not null;column:access_token" json:"access_token"`
	RefreshToken  string     `gorm:"uniqueIndex;not null;column:refresh_token" json:"refresh_token"`
	ExpiresAt     time.Time  `gorm:"column:expires_at" json:"expires_at"`
	ActiveStoreID *uuid.UUID `gorm:"type:uuid;column:active_store_id" json:"active_store_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserToken) TableName() string { return "user_token" }

func (t *UserToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
