package tier

import (
	"fmt"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	pkgerrors "github.com/betoojeda/tienda-facil/internal/pkg/errors"
)

const (
	// Unlimited is the limit value meaning "no cap".
	Unlimited = 0
	// Closed means no new items are allowed at all.
	Closed = -1
)

type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceStaff    Resource = "staff"
)

// LimitError is returned when a store is at its tier cap.
type LimitError struct {
	Resource Resource
	Limit    int
	Plan     string
}

func (e *LimitError) Error() string {
	switch e.Resource {
	case ResourceProducts:
		return fmt.Sprintf("product limit reached (%d) for plan %s, upgrade to add more products", e.Limit, e.Plan)
	case ResourceStaff:
		return fmt.Sprintf("staff limit reached (%d) for plan %s, upgrade to add more employees", e.Limit, e.Plan)
	}
	return fmt.Sprintf("%s limit reached (%d)", e.Resource, e.Limit)
}

func (e *LimitError) Unwrap() error { return pkgerrors.ErrLimitReached }

// ProductLimit is free_tier_limit for FREE stores and the plan's
// max_products for PREMIUM stores. Unknown premium plans are unlimited.
// A free tier limit of 0 or less closes FREE stores to new products.
func ProductLimit(store *types.Store, cfg *types.SystemConfig) int {
	if store == nil || cfg == nil {
		return Unlimited
	}
	if !store.IsPremium() {
		if cfg.FreeTierLimit <= 0 {
			return Closed
		}
		return cfg.FreeTierLimit
	}
	if plan, ok := cfg.Plan(store.PlanID); ok {
		return plan.MaxProducts
	}
	return Unlimited
}

// StaffLimit is the free plan's max_employees for FREE stores (5 when the
// free plan is missing) and the store plan's max_employees when PREMIUM.
func StaffLimit(store *types.Store, cfg *types.SystemConfig) int {
	if store == nil {
		return Unlimited
	}
	if !store.IsPremium() {
		if plan, ok := cfg.Plan(system.PlanFree); ok {
			return plan.MaxEmployees
		}
		return system.DefaultFreeEmployees
	}
	if plan, ok := cfg.Plan(store.PlanID); ok {
		return plan.MaxEmployees
	}
	return Unlimited
}

func planLabel(store *types.Store) string {
	if store == nil {
		return ""
	}
	if !store.IsPremium() {
		return system.PlanFree
	}
	return store.PlanID
}

// Check rejects when count has already reached limit.
func Check(resource Resource, count, limit int, plan string) error {
	switch {
	case limit == Unlimited:
		return nil
	case limit == Closed:
		return &LimitError{Resource: resource, Limit: 0, Plan: plan}
	case count >= limit:
		return &LimitError{Resource: resource, Limit: limit, Plan: plan}
	}
	return nil
}

func CheckProducts(store *types.Store, cfg *types.SystemConfig, count int) error {
	return Check(ResourceProducts, count, ProductLimit(store, cfg), planLabel(store))
}

func CheckStaff(store *types.Store, cfg *types.SystemConfig, count int) error {
	return Check(ResourceStaff, count, StaffLimit(store, cfg), planLabel(store))
}

// Remaining is how many more items fit; -1 when unlimited.
func Remaining(count, limit int) int {
	if limit == Unlimited {
		return -1
	}
	if limit == Closed || count >= limit {
		return 0
	}
	return limit - count
}

type Meter struct {
	Used    int `json:"used"`
	Limit   int `json:"limit"`
	Percent int `json:"percent"`
}

func NewMeter(used, limit int) Meter {
	if limit == Closed {
		return Meter{Used: used, Limit: 0, Percent: 100}
	}
	m := Meter{Used: used, Limit: limit}
	if limit > 0 {
		pct := used * 100 / limit
		if pct > 100 {
			pct = 100
		}
		m.Percent = pct
	}
	return m
}

type Usage struct {
	Subscription types.SubscriptionStatus `json:"subscription"`
	PlanID       string                   `json:"plan_id"`
	Products     Meter                    `json:"products"`
	Staff        Meter                    `json:"staff"`
}

func Summarize(store *types.Store, cfg *types.SystemConfig, products, staff int) Usage {
	return Usage{
		Subscription: store.Subscription,
		PlanID:       store.PlanID,
		Products:     NewMeter(products, ProductLimit(store, cfg)),
		Staff:        NewMeter(staff, StaffLimit(store, cfg)),
	}
}
