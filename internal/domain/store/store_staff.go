package store

import (
	"time"

	"github.com/google/uuid"
)

// StoreStaff links an employee username to a store.
type StoreStaff struct {
	StoreID   uuid.UUID `gorm:"type:uuid;primaryKey;column:store_id" json:"store_id"`
	Username  string    `gorm:"primaryKey;column:username" json:"username"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (StoreStaff) TableName() string { return "store_staff" }
