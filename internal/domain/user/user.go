package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleOwner      Role = "owner"
	RoleEmployee   Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOwner, RoleEmployee:
		return true
	}
	return false
}

// BusinessType only drives terminology in the client ("Platillo/Menú" vs "Producto/Inventario").
type BusinessType string

const (
	BusinessRestaurant BusinessType = "restaurant"
	BusinessRetail     BusinessType = "retail"
)

func ParseBusinessType(s string) BusinessType {
	if BusinessType(s) == BusinessRestaurant {
		return BusinessRestaurant
	}
	return BusinessRetail
}

type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string       `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Password     string       `gorm:"not null;column:password" json:"-"`
	Role         Role         `gorm:"not null;index;column:role" json:"role"`
	FirstName    string       `gorm:"column:first_name" json:"first_name"`
	LastName     string       `gorm:"column:last_name" json:"last_name"`
	Email        string       `gorm:"column:email" json:"email"`
	BusinessType BusinessType `gorm:"column:business_type;default:retail" json:"business_type"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
