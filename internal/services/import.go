package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/importer"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/realtime"
	"github.com/betoojeda/tienda-facil/internal/tier"
)

const codeLookupBatch = 500

type ImportResult struct {
	Imported int      `json:"imported"`
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}

type ImportService interface {
	// Import loads a spreadsheet into a store the caller owns.
	Import(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (*ImportResult, error)
	// ImportIntoStore skips the caller check; the admin CLI uses it.
	ImportIntoStore(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (*ImportResult, error)
	Template() (string, []byte)
}

type importService struct {
	db          *gorm.DB
	log         *logger.Logger
	guard       storeGuard
	storeRepo   repos.StoreRepo
	productRepo repos.ProductRepo
	configRepo  repos.SystemConfigRepo
	events      realtime.Publisher
}

func NewImportService(
	db *gorm.DB,
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	productRepo repos.ProductRepo,
	configRepo repos.SystemConfigRepo,
	events realtime.Publisher,
) ImportService {
	return &importService{
		db:          db,
		log:         log.With("service", "ImportService"),
		guard:       storeGuard{storeRepo: storeRepo},
		storeRepo:   storeRepo,
		productRepo: productRepo,
		configRepo:  configRepo,
		events:      events,
	}
}

func (is *importService) Import(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (*ImportResult, error) {
	return is.run(ctx, storeID, filename, r, func(dbc dbctx.Context) (*types.Store, error) {
		store, _, err := is.guard.load(dbc, storeID, accessOwner, true)
		return store, err
	})
}

func (is *importService) ImportIntoStore(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (*ImportResult, error) {
	return is.run(ctx, storeID, filename, r, func(dbc dbctx.Context) (*types.Store, error) {
		store, err := is.storeRepo.GetByIDForUpdate(dbc, storeID)
		if err != nil {
			return nil, fmt.Errorf("load store: %w", err)
		}
		if store == nil {
			return nil, errStoreNotFound
		}
		return store, nil
	})
}

func (is *importService) Template() (string, []byte) {
	return importer.TemplateFilename, importer.Template()
}

func (is *importService) run(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader, lock func(dbctx.Context) (*types.Store, error)) (*ImportResult, error) {
	parsed, err := importer.Parse(filename, r)
	switch {
	case errors.Is(err, importer.ErrUnsupported):
		return nil, invalid("unsupported_file", err.Error())
	case errors.Is(err, importer.ErrEmpty), errors.Is(err, importer.ErrUnreadable):
		return &ImportResult{Errors: []string{err.Error()}}, nil
	case err != nil:
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	result := &ImportResult{Errors: append([]string{}, parsed.Errors...)}
	err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		store, err := lock(dbc)
		if err != nil {
			return err
		}
		cfg, err := is.configRepo.Get(dbc)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		count, err := is.productRepo.CountByStore(dbc, store.ID)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		byCode, err := is.existing(dbc, store.ID, parsed.Rows)
		if err != nil {
			return err
		}

		total := int(count)
		for _, row := range parsed.Rows {
			if p, ok := byCode[row.Code]; ok {
				row.Apply(p)
				if err := is.productRepo.Update(dbc, p); err != nil {
					return fmt.Errorf("update %s: %w", row.Code, err)
				}
				result.Updated++
				continue
			}
			if err := tier.CheckProducts(store, cfg, total); err != nil {
				result.Errors = append(result.Errors, importer.RowError(row.Line, "skipped, %v", err))
				continue
			}
			p := &types.Product{StoreID: store.ID}
			row.Apply(p)
			if _, err := is.productRepo.Create(dbc, []*types.Product{p}); err != nil {
				return fmt.Errorf("create %s: %w", row.Code, err)
			}
			byCode[row.Code] = p
			total++
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Imported = result.Created + result.Updated
	is.log.Info("Import finished",
		"store_id", storeID,
		"created", result.Created,
		"updated", result.Updated,
		"row_errors", len(result.Errors),
	)
	is.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventImportCompleted, result))
	return result, nil
}

func (is *importService) existing(dbc dbctx.Context, storeID uuid.UUID, rows []importer.Row) (map[string]*types.Product, error) {
	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		codes = append(codes, r.Code)
	}
	out := make(map[string]*types.Product, len(codes))
	for start := 0; start < len(codes); start += codeLookupBatch {
		end := min(start+codeLookupBatch, len(codes))
		found, err := is.productRepo.GetByStoreAndCodes(dbc, storeID, codes[start:end])
		if err != nil {
			return nil, fmt.Errorf("load existing products: %w", err)
		}
		for _, p := range found {
			out[p.Code] = p
		}
	}
	return out, nil
}
