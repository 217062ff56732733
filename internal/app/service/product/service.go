package product

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
)

// Service owns the product feature store: recurring interval, activation
// limit and the version currently served to update checks.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	cfg *config.Config
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, cfg *config.Config) *Service {
	return &Service{db: db, log: log, cfg: cfg}
}

// Seed upserts the configured products. Current version and download are
// owned by release activation and left untouched.
func (s *Service) Seed(ctx context.Context) error {
	for _, pc := range s.cfg.Products {
		p := &models.Product{
			ID:              pc.ID,
			Name:            pc.Name,
			RecurringUnit:   pc.Recurring.Unit,
			RecurringCount:  pc.Recurring.Count,
			ActivationLimit: pc.ActivationLimit,
			OnlineSoftware:  pc.OnlineSoftware,
			BasePrice:       pc.BasePrice,
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "recurring_unit", "recurring_count", "activation_limit", "online_software", "base_price", "updated_at",
			}),
		}).Create(p).Error
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", pc.ID, err)
		}
	}
	logctx.FromCtx(ctx, s.log).Infow("products seeded", "count", len(s.cfg.Products))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.get(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context) ([]*models.Product, error) {
	var items []*models.Product
	if err := s.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return items, nil
}

// GetForUpdate loads the product inside tx holding a row lock until tx ends.
func (s *Service) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Product, error) {
	return s.get(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// SetCurrent changes the version and download served for the product.
func (s *Service) SetCurrent(ctx context.Context, tx *gorm.DB, id, version, download string) error {
	res := tx.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Updates(map[string]any{"current_version": version, "current_download": download})
	if res.Error != nil {
		return fmt.Errorf("failed to set current version of %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (s *Service) get(ctx context.Context, db *gorm.DB, id string) (*models.Product, error) {
	var p models.Product
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}
