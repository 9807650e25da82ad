package db

import (
	"fmt"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		// identity + sessions
		&types.User{},
		&types.UserToken{},

		// tenancy
		&types.Store{},
		&types.StoreStaff{},

		// catalog + sales
		&types.Product{},
		&types.Sale{},

		&types.SystemConfig{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
