package system

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

type SystemConfigRepo interface {
	// Get returns the stored config or the defaults when no row exists yet.
	Get(dbc dbctx.Context) (*types.SystemConfig, error)
	Save(dbc dbctx.Context, cfg *types.SystemConfig) error
}

type systemConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSystemConfigRepo(db *gorm.DB, baseLog *logger.Logger) SystemConfigRepo {
	repoLog := baseLog.With("repo", "SystemConfigRepo")
	return &systemConfigRepo{db: db, log: repoLog}
}

func (r *systemConfigRepo) Get(dbc dbctx.Context) (*types.SystemConfig, error) {
	var rows []*types.SystemConfig
	if err := dbc.Resolve(r.db).Where("id = ?", 1).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		cfg := system.DefaultConfig()
		return &cfg, nil
	}
	cfg := rows[0]
	if len(cfg.Plans) == 0 {
		cfg.Plans = system.DefaultPlans()
	}
	return cfg, nil
}

func (r *systemConfigRepo) Save(dbc dbctx.Context, cfg *types.SystemConfig) error {
	cfg.ID = 1
	return dbc.Resolve(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"free_tier_limit", "plans", "updated_at"}),
		}).
		Create(cfg).Error
}
