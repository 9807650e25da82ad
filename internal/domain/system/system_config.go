package system

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PlanFree     = "free"
	PlanBasicMXN = "basic_mxn"
	PlanProMXN   = "pro_mxn"

	DefaultFreeTierLimit = 1000
	DefaultFreeEmployees = 5
)

// SubscriptionPlan limits use 0 for unlimited.
type SubscriptionPlan struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Price        float64 `json:"price" yaml:"price"`
	MaxEmployees int     `json:"max_employees" yaml:"max_employees"`
	MaxProducts  int     `json:"max_products" yaml:"max_products"`
}

// SystemConfig is a single row (ID 1).
type SystemConfig struct {
	ID            uint                                 `gorm:"primaryKey" json:"-"`
	FreeTierLimit int                                  `gorm:"not null;column:free_tier_limit" json:"free_tier_limit"`
	Plans         datatypes.JSONSlice[SubscriptionPlan] `gorm:"column:plans" json:"plans"`
	UpdatedAt     time.Time                            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemConfig) TableName() string { return "system_config" }

func DefaultPlans() []SubscriptionPlan {
	return []SubscriptionPlan{
		{ID: PlanFree, Name: "Gratis", Price: 0, MaxEmployees: DefaultFreeEmployees, MaxProducts: DefaultFreeTierLimit},
		{ID: PlanBasicMXN, Name: "Plan Emprendedor", Price: 199, MaxEmployees: 15, MaxProducts: 0},
		{ID: PlanProMXN, Name: "Plan Empresarial", Price: 499, MaxEmployees: 0, MaxProducts: 0},
	}
}

func DefaultConfig() SystemConfig {
	return SystemConfig{ID: 1, FreeTierLimit: DefaultFreeTierLimit, Plans: DefaultPlans()}
}

// Plan looks a plan up by id.
func (c *SystemConfig) Plan(id string) (SubscriptionPlan, bool) {
	if c == nil {
		return SubscriptionPlan{}, false
	}
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return SubscriptionPlan{}, false
}
