package release

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db"
	"github.com/fatflowers/licensing/pkg/cache"
	"github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

var ScanFields = []string{"id", "product_id", "version", "type", "status", "start_date", "created_at"}

// Service manages releases and their rollout to activations.
type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	products *product.Service

	counts     cache.Cache[int64]
	changelogs cache.Cache[string]
	countTTL   time.Duration
	logTTL     time.Duration
	group      singleflight.Group

	// serialises activate and pause per product
	locks *tool.KeyedMutex
	now   func() time.Time
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.SugaredLogger
	Cfg        *config.Config
	Products   *product.Service
	Counts     cache.Cache[int64]
	Changelogs cache.Cache[string]
}

func NewService(p Params) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log,
		products:   p.Products,
		counts:     cache.Namespace(p.Counts, "release-upgrade-count"),
		changelogs: cache.Namespace(p.Changelogs, "changelog"),
		countTTL:   p.Cfg.Cache.UpgradeCountTTL,
		logTTL:     p.Cfg.Cache.ChangelogTTL,
		locks:      tool.NewKeyedMutex(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type CreateRequest struct {
	ProductID string              `json:"product_id" binding:"required"`
	Download  string              `json:"download" binding:"required"`
	Version   string              `json:"version" binding:"required"`
	Type      types.ReleaseType   `json:"type" binding:"required"`
	Status    types.ReleaseStatus `json:"status"`
	Changelog string              `json:"changelog"`
}

// Create stores a release, draft unless another status is given. Creating it
// active publishes it immediately.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Release, error) {
	if req.Status == "" {
		req.Status = types.ReleaseStatusDraft
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("release status %q: %w", req.Status, errs.ErrInvalidArgument)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("release type %q: %w", req.Type, errs.ErrInvalidArgument)
	}
	if req.Version == "" || req.Download == "" {
		return nil, fmt.Errorf("release requires version and download: %w", errs.ErrInvalidArgument)
	}
	if _, err := s.products.Get(ctx, req.ProductID); err != nil {
		return nil, err
	}

	r := &models.Release{
		ID:        tool.GenerateUUIDV7(),
		ProductID: req.ProductID,
		Download:  req.Download,
		Version:   req.Version,
		Type:      req.Type,
		Status:    types.ReleaseStatusDraft,
		Changelog: req.Changelog,
	}
	if req.Status != types.ReleaseStatusActive {
		r.Status = req.Status
		if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
			return nil, fmt.Errorf("failed to create release: %w", err)
		}
		return r, nil
	}

	unlock := s.locks.Lock(r.ProductID)
	defer unlock()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return fmt.Errorf("failed to create release: %w", err)
		}
		return s.publish(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	s.changelogs.Delete(ctx, r.ProductID)
	return r, nil
}

// Activate publishes a draft or paused release as the product's current
// version, remembering what the product served before.
func (s *Service) Activate(ctx context.Context, id string) (*models.Release, error) {
	r, err := s.withProductLock(ctx, id, func(tx *gorm.DB, r *models.Release) error {
		if r.Status != types.ReleaseStatusDraft && r.Status != types.ReleaseStatusPaused {
			return fmt.Errorf("cannot activate a %s release: %w", r.Status, errs.ErrInvalidTransition)
		}
		return s.publish(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("release activated", "release_id", r.ID, "product_id", r.ProductID, "version", r.Version)
	return r, nil
}

// publish stashes the product's current version on r and replaces it with r.
func (s *Service) publish(ctx context.Context, tx *gorm.DB, r *models.Release) error {
	p, err := s.products.GetForUpdate(ctx, tx, r.ProductID)
	if err != nil {
		return err
	}
	r.PreviousVersion = p.CurrentVersion
	r.PreviousDownload = p.CurrentDownload
	r.Status = types.ReleaseStatusActive
	if r.StartDate == nil {
		now := s.now()
		r.StartDate = &now
	}
	if err := tx.Save(r).Error; err != nil {
		return fmt.Errorf("failed to save release: %w", err)
	}
	return s.products.SetCurrent(ctx, tx, r.ProductID, r.Version, r.Download)
}

// Pause un-publishes an active release. The product goes back to the version
// stashed at activation, unless a later release has replaced this one since.
func (s *Service) Pause(ctx context.Context, id string) (*models.Release, error) {
	r, err := s.withProductLock(ctx, id, func(tx *gorm.DB, r *models.Release) error {
		if r.Status != types.ReleaseStatusActive {
			return fmt.Errorf("cannot pause a %s release: %w", r.Status, errs.ErrInvalidTransition)
		}
		p, err := s.products.GetForUpdate(ctx, tx, r.ProductID)
		if err != nil {
			return err
		}
		if p.CurrentVersion == r.Version && p.CurrentDownload == r.Download {
			if err := s.products.SetCurrent(ctx, tx, r.ProductID, r.PreviousVersion, r.PreviousDownload); err != nil {
				return err
			}
		}
		r.Status = types.ReleaseStatusPaused
		return tx.Model(&models.Release{}).Where("id = ?", r.ID).Update("status", r.Status).Error
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("release paused", "release_id", r.ID, "product_id", r.ProductID, "restored_version", r.PreviousVersion)
	return r, nil
}

// Archive retires a release for good. The product's current version is left
// as is.
func (s *Service) Archive(ctx context.Context, id string) (*models.Release, error) {
	return s.withProductLock(ctx, id, func(tx *gorm.DB, r *models.Release) error {
		if r.Status == types.ReleaseStatusArchived {
			return fmt.Errorf("release already archived: %w", errs.ErrInvalidTransition)
		}
		r.Status = types.ReleaseStatusArchived
		return tx.Model(&models.Release{}).Where("id = ?", r.ID).Update("status", r.Status).Error
	})
}

// withProductLock runs fn on the release inside a transaction while holding
// the release's product mutex.
func (s *Service) withProductLock(ctx context.Context, id string, fn func(tx *gorm.DB, r *models.Release) error) (*models.Release, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(r.ProductID)
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// reload under the lock
		if err := tx.Where("id = ?", id).First(r).Error; err != nil {
			return fmt.Errorf("failed to reload release: %w", err)
		}
		return fn(tx, r)
	})
	if err != nil {
		return nil, err
	}
	s.changelogs.Delete(ctx, r.ProductID)
	return r, nil
}

// SetVersion changes the version of a draft or active release. When the
// release is live the product's current version follows.
func (s *Service) SetVersion(ctx context.Context, id, version string) (*models.Release, error) {
	if version == "" {
		return nil, fmt.Errorf("version is required: %w", errs.ErrInvalidArgument)
	}
	return s.edit(ctx, id, func(r *models.Release) map[string]any {
		r.Version = version
		return map[string]any{"version": version}
	})
}

// SetDownload changes the file of a draft or active release.
func (s *Service) SetDownload(ctx context.Context, id, download string) (*models.Release, error) {
	if download == "" {
		return nil, fmt.Errorf("download is required: %w", errs.ErrInvalidArgument)
	}
	return s.edit(ctx, id, func(r *models.Release) map[string]any {
		r.Download = download
		return map[string]any{"download": download}
	})
}

func (s *Service) SetType(ctx context.Context, id string, typ types.ReleaseType) (*models.Release, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("release type %q: %w", typ, errs.ErrInvalidArgument)
	}
	return s.edit(ctx, id, func(r *models.Release) map[string]any {
		r.Type = typ
		return map[string]any{"type": typ}
	})
}

type ChangelogMode string

const (
	ChangelogReplace ChangelogMode = "replace"
	ChangelogAppend  ChangelogMode = "append"
)

// SetChangelog replaces the changelog or, in append mode, adds to it.
func (s *Service) SetChangelog(ctx context.Context, id, changelog string, mode ChangelogMode) (*models.Release, error) {
	if mode == "" {
		mode = ChangelogReplace
	}
	if mode != ChangelogReplace && mode != ChangelogAppend {
		return nil, fmt.Errorf("changelog mode %q: %w", mode, errs.ErrInvalidArgument)
	}
	return s.edit(ctx, id, func(r *models.Release) map[string]any {
		if mode == ChangelogAppend {
			r.Changelog += changelog
		} else {
			r.Changelog = changelog
		}
		return map[string]any{"changelog": r.Changelog}
	})
}

func (s *Service) edit(ctx context.Context, id string, mutate func(r *models.Release) map[string]any) (*models.Release, error) {
	return s.withProductLock(ctx, id, func(tx *gorm.DB, r *models.Release) error {
		if !r.Status.Editable() {
			return fmt.Errorf("a %s release cannot be edited: %w", r.Status, errs.ErrInvalidTransition)
		}
		wasVersion, wasDownload := r.Version, r.Download
		if err := tx.Model(&models.Release{}).Where("id = ?", r.ID).Updates(mutate(r)).Error; err != nil {
			return fmt.Errorf("failed to update release: %w", err)
		}
		if r.Status != types.ReleaseStatusActive || (wasVersion == r.Version && wasDownload == r.Download) {
			return nil
		}
		p, err := s.products.GetForUpdate(ctx, tx, r.ProductID)
		if err != nil {
			return err
		}
		if p.CurrentVersion == wasVersion && p.CurrentDownload == wasDownload {
			return s.products.SetCurrent(ctx, tx, r.ProductID, r.Version, r.Download)
		}
		return nil
	})
}

// Delete removes a release that is not live. Upgrades and activations keep
// their reference to it.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.withProductLock(ctx, id, func(tx *gorm.DB, r *models.Release) error {
		if r.Status == types.ReleaseStatusActive {
			return fmt.Errorf("pause or archive the release before deleting it: %w", errs.ErrInvalidTransition)
		}
		return tx.Where("id = ?", r.ID).Delete(&models.Release{}).Error
	})
	if err == nil {
		s.counts.Delete(ctx, id)
	}
	return err
}

func (s *Service) Find(ctx context.Context, id string) (*models.Release, error) {
	var r models.Release
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return &r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Release, error) {
	r, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("release %s: %w", id, errs.ErrNotFound)
	}
	return r, nil
}

// ListByProduct lists a product's releases, newest first, optionally limited
// to some statuses.
func (s *Service) ListByProduct(ctx context.Context, productID string, statuses ...types.ReleaseStatus) ([]*models.Release, error) {
	q := s.db.WithContext(ctx).Where("product_id = ?", productID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var items []*models.Release
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	return items, nil
}

func (s *Service) Scan(ctx context.Context, req *types.ScanRequest) ([]*models.Release, int64, error) {
	if err := req.CheckFields(ScanFields...); err != nil {
		return nil, 0, fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	return db.Scan[models.Release](ctx, s.db, req)
}

// FindByVersion returns the newest non-draft release of the product with the
// version, or nil.
func (s *Service) FindByVersion(ctx context.Context, productID, version string) (*models.Release, error) {
	var r models.Release
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND version = ? AND status <> ?", productID, version, types.ReleaseStatusDraft).
		Order("created_at desc").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return &r, nil
}
