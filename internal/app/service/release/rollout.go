package release

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
	"github.com/fatflowers/licensing/pkg/version"
)

const DefaultChangelogReleases = 10

// TotalUpdated counts the activations that updated to the release. The count
// is cached per release; concurrent misses share one query.
func (s *Service) TotalUpdated(ctx context.Context, id string) (int64, error) {
	if n, ok := s.counts.Get(ctx, id); ok {
		return n, nil
	}
	v, err, _ := s.group.Do("updated:"+id, func() (any, error) {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Upgrade{}).Where("release_id = ?", id).Count(&n).Error; err != nil {
			return int64(0), fmt.Errorf("failed to count upgrades: %w", err)
		}
		s.counts.Set(ctx, id, n, s.countTTL)
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// TotalActiveActivations counts active activations of keys for the product.
func (s *Service) TotalActiveActivations(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Activation{}).
		Joins("JOIN license_key ON license_key.lkey = activation.lkey").
		Where("license_key.product_id = ? AND activation.status = ?", productID, types.ActivationStatusActive).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active activations: %w", err)
	}
	return n, nil
}

type Progress struct {
	Updated int64   `json:"updated"`
	Total   int64   `json:"total"`
	Percent float64 `json:"percent"`
}

// Progress reports how far the release has rolled out.
func (s *Service) Progress(ctx context.Context, id string) (*Progress, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var p Progress
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p.Updated, err = s.TotalUpdated(gctx, r.ID)
		return err
	})
	g.Go(func() error {
		var err error
		p.Total, err = s.TotalActiveActivations(gctx, r.ProductID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if p.Total > 0 {
		p.Percent = float64(p.Updated) / float64(p.Total) * 100
	}
	return &p, nil
}

// LatestForActivation returns the release the activation should run, or nil
// when nothing is published for its track. Stable activations get the
// product's current version; pre-release activations get the highest active
// version of any type on their track.
func (s *Service) LatestForActivation(ctx context.Context, a *models.Activation, k *models.Key) (*models.Release, error) {
	if a == nil || k == nil || a.Key != k.Key {
		return nil, fmt.Errorf("activation does not belong to key: %w", errs.ErrInvalidArgument)
	}
	candidates, err := s.ListByProduct(ctx, k.ProductID, types.ReleaseStatusActive)
	if err != nil {
		return nil, err
	}
	allowed := a.Track.ReleaseTypes()
	candidates = lo.Filter(candidates, func(r *models.Release, _ int) bool {
		return slices.Contains(allowed, r.Type)
	})
	if len(candidates) == 0 {
		return nil, nil
	}

	if a.Track != types.TrackPreRelease {
		p, err := s.products.Get(ctx, k.ProductID)
		if err != nil {
			return nil, err
		}
		if current, ok := lo.Find(candidates, func(r *models.Release) bool { return r.Version == p.CurrentVersion }); ok {
			return current, nil
		}
	}
	return lo.MaxBy(candidates, func(x, y *models.Release) bool {
		return version.Compare(x.Version, y.Version) > 0
	}), nil
}

// RecordUpgrade appends an Upgrade row for the activation moving to the
// release and points the activation at it.
func (s *Service) RecordUpgrade(ctx context.Context, a *models.Activation, k *models.Key, r *models.Release, when time.Time) (*models.Upgrade, error) {
	if !activation.IsEligibleForRelease(a, k, r) {
		return nil, fmt.Errorf("activation is not eligible for release %s: %w", r.ID, errs.ErrInvalidArgument)
	}
	if when.IsZero() {
		when = s.now()
	}
	u := &models.Upgrade{
		ID:           tool.GenerateUUIDV7(),
		ActivationID: a.ID,
		ReleaseID:    r.ID,
		UpgradedAt:   when.UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.ReleaseID != nil {
			var prev models.Release
			err := tx.Where("id = ?", *a.ReleaseID).First(&prev).Error
			if err == nil {
				u.PreviousVersion = prev.Version
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if err := tx.Create(u).Error; err != nil {
			return fmt.Errorf("failed to record upgrade: %w", err)
		}
		return tx.Model(&models.Activation{}).Where("id = ?", a.ID).Update("release_id", r.ID).Error
	})
	if err != nil {
		return nil, err
	}
	a.ReleaseID = &r.ID
	s.counts.Delete(ctx, r.ID)
	return u, nil
}

// Upgrades lists the upgrade ledger of an activation, newest first.
func (s *Service) Upgrades(ctx context.Context, activationID string) ([]*models.Upgrade, error) {
	var items []*models.Upgrade
	if err := s.db.WithContext(ctx).Where("activation_id = ?", activationID).Order("upgraded_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list upgrades: %w", err)
	}
	return items, nil
}

// Changelog renders the changelogs of the product's last n published releases,
// newest first. The default length is cached until a release of the product
// changes.
func (s *Service) Changelog(ctx context.Context, productID string, n int) (string, error) {
	if n <= 0 {
		n = DefaultChangelogReleases
	}
	cached := n == DefaultChangelogReleases
	if cached {
		if log, ok := s.changelogs.Get(ctx, productID); ok {
			return log, nil
		}
	}
	var releases []*models.Release
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND status IN ?", productID, []types.ReleaseStatus{
			types.ReleaseStatusActive, types.ReleaseStatusPaused, types.ReleaseStatusArchived,
		}).
		Order("start_date desc").
		Limit(n).
		Find(&releases).Error
	if err != nil {
		return "", fmt.Errorf("failed to load changelog: %w", err)
	}

	var b strings.Builder
	for _, r := range releases {
		b.WriteString("v" + r.Version)
		if r.StartDate != nil {
			b.WriteString(" - " + r.StartDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
		if r.Changelog != "" {
			b.WriteString(strings.TrimRight(r.Changelog, "\n"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	log := strings.TrimRight(b.String(), "\n")
	if cached {
		s.changelogs.Set(ctx, productID, log, s.logTTL)
	}
	return log, nil
}
