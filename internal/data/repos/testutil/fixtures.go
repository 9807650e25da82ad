package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string, role types.Role) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Username:  username,
		Password:  "pw",
		Role:      role,
		FirstName: "A",
		LastName:  "B",
		Email:     username + "@example.com",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedStore(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *types.Store {
	tb.Helper()
	s := &types.Store{
		ID:           uuid.New(),
		Name:         name,
		OwnerID:      ownerID,
		Subscription: types.SubscriptionFree,
		PlanID:       "free",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed store: %v", err)
	}
	return s
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, storeID uuid.UUID, code string, stock, minStock int) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:        uuid.New(),
		StoreID:   storeID,
		Code:      code,
		Name:      "Producto " + code,
		CostPrice: 10,
		Price:     15,
		Stock:     stock,
		MinStock:  minStock,
		Category:  types.DefaultCategory,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}
