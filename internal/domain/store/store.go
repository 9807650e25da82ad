package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "FREE"
	SubscriptionPremium SubscriptionStatus = "PREMIUM"
)

func (s SubscriptionStatus) Valid() bool {
	return s == SubscriptionFree || s == SubscriptionPremium
}

type Store struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string             `gorm:"not null;column:name" json:"name"`
	OwnerID            uuid.UUID          `gorm:"type:uuid;not null;index;column:owner_id" json:"owner_id"`
	Subscription       SubscriptionStatus `gorm:"not null;default:FREE;column:subscription" json:"subscription"`
	PlanID             string             `gorm:"not null;default:free;column:plan_id" json:"plan_id"`
	SubscriptionExpiry *time.Time         `gorm:"column:subscription_expiry;index" json:"subscription_expiry,omitempty"`

	Staff []StoreStaff `gorm:"foreignKey:StoreID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Store) TableName() string { return "store" }

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Subscription == "" {
		s.Subscription = SubscriptionFree
	}
	if s.PlanID == "" {
		s.PlanID = "free"
	}
	return nil
}

// StaffUsernames flattens the preloaded staff rows.
func (s *Store) StaffUsernames() []string {
	out := make([]string, 0, len(s.Staff))
	for _, st := range s.Staff {
		out = append(out, st.Username)
	}
	return out
}

func (s *Store) HasStaff(username string) bool {
	for _, st := range s.Staff {
		if st.Username == username {
			return true
		}
	}
	return false
}

func (s *Store) IsPremium() bool {
	return s != nil && s.Subscription == SubscriptionPremium
}
