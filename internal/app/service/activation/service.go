package activation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/metrics"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

var ScanFields = []string{"id", "lkey", "location", "status", "activated_at", "deactivated_at", "release_id", "track"}

// Service tracks install locations against a key's activation limit.
type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	keys     *license.Service
	products *product.Service
	locks    *tool.KeyedMutex
	now      func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, keys *license.Service, products *product.Service) *Service {
	return &Service{
		db:       db,
		log:      log,
		keys:     keys,
		products: products,
		locks:    tool.NewKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateRequest struct {
	Key      string
	Location string
	// When defaults to now.
	When time.Time
	// ReleaseID is the release installed at the location, if known.
	ReleaseID *string
	// Track defaults to stable.
	Track types.Track
}

// Create activates a location for a key. The capacity check and the write
// happen in one transaction holding the key row lock and, within this
// process, a per-key mutex. A deactivated location is reactivated in place.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Activation, error) {
	k, err := s.keys.Get(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, k.ProductID)
	if err != nil {
		return nil, err
	}
	location, err := NormalizeLocation(req.Location, p.OnlineSoftware)
	if err != nil {
		return nil, err
	}
	track := req.Track
	if track == "" {
		track = types.TrackStable
	}
	if !track.Valid() {
		return nil, fmt.Errorf("track %q: %w", track, errs.ErrInvalidArgument)
	}
	when := req.When
	if when.IsZero() {
		when = s.now()
	}
	when = when.UTC()

	unlock := s.locks.Lock(req.Key)
	defer unlock()

	var result *models.Activation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k, err := s.keys.GetForUpdate(ctx, tx, req.Key)
		if err != nil {
			return err
		}
		if req.ReleaseID != nil {
			var r models.Release
			if err := tx.Where("id = ?", *req.ReleaseID).First(&r).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("release %s: %w", *req.ReleaseID, errs.ErrInvalidArgument)
				}
				return err
			}
			if r.ProductID != k.ProductID {
				return fmt.Errorf("release %s belongs to another product: %w", r.ID, errs.ErrInvalidArgument)
			}
		}

		count, err := license.ActiveCount(ctx, tx, k.Key)
		if err != nil {
			return err
		}
		if !k.HasCapacity(count) {
			return fmt.Errorf("key allows %d activations: %w", k.Max, errs.ErrCapacityExceeded)
		}

		var existing models.Activation
		err = tx.Where("lkey = ? AND location = ?", k.Key, location).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = &models.Activation{
				ID:          tool.GenerateUUIDV7(),
				Key:         k.Key,
				Location:    location,
				Status:      types.ActivationStatusActive,
				ActivatedAt: when,
				ReleaseID:   req.ReleaseID,
				Track:       track,
			}
			if err := tx.Create(result).Error; err != nil {
				return fmt.Errorf("failed to create activation: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to look up activation: %w", err)
		}

		switch existing.Status {
		case types.ActivationStatusActive:
			return fmt.Errorf("%s: %w", location, errs.ErrDuplicateLocation)
		case types.ActivationStatusDisabled:
			return fmt.Errorf("%s is disabled: %w", location, errs.ErrInvalidTransition)
		}
		existing.Status = types.ActivationStatusActive
		existing.ActivatedAt = when
		existing.DeactivatedAt = nil
		existing.ReleaseID = req.ReleaseID
		existing.Track = track
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to reactivate: %w", err)
		}
		result = &existing
		return nil
	})
	if err != nil {
		metrics.Inc(metrics.Activations, resultLabel(err))
		return nil, err
	}
	metrics.Inc(metrics.Activations, "ok")
	logctx.FromCtx(ctx, s.log).Infow("location activated", "lkey", logctx.Mask(k.Key), "activation_id", result.ID, "location", location)
	return result, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, errs.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, errs.ErrDuplicateLocation):
		return "duplicate_location"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// Deactivate frees the activation's slot. It fails with
// errs.ErrAlreadyDeactivated unless the activation is active.
func (s *Service) Deactivate(ctx context.Context, id string, when time.Time) (*models.Activation, error) {
	if when.IsZero() {
		when = s.now()
	}
	when = when.UTC()
	return s.transition(ctx, id, errs.ErrAlreadyDeactivated, func(a *models.Activation) bool {
		if a.Status != types.ActivationStatusActive {
			return false
		}
		a.Status = types.ActivationStatusDeactivated
		a.DeactivatedAt = &when
		return true
	})
}

// Disable permanently disables the activation. Disabled activations never
// count toward capacity and never receive updates.
func (s *Service) Disable(ctx context.Context, id string) (*models.Activation, error) {
	return s.transition(ctx, id, errs.ErrInvalidTransition, func(a *models.Activation) bool {
		if a.Status == types.ActivationStatusDisabled {
			return false
		}
		if a.Status == types.ActivationStatusActive {
			now := s.now()
			a.DeactivatedAt = &now
		}
		a.Status = types.ActivationStatusDisabled
		return true
	})
}

// SetTrack moves the activation to another release track.
func (s *Service) SetTrack(ctx context.Context, id string, track types.Track) (*models.Activation, error) {
	if !track.Valid() {
		return nil, fmt.Errorf("track %q: %w", track, errs.ErrInvalidArgument)
	}
	return s.transition(ctx, id, errs.ErrInvalidTransition, func(a *models.Activation) bool {
		a.Track = track
		return true
	})
}

func (s *Service) transition(ctx context.Context, id string, rejected error, apply func(a *models.Activation) bool) (*models.Activation, error) {
	var a models.Activation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("activation %s: %w", id, errs.ErrNotFound)
			}
			return err
		}
		from := a.Status
		if !apply(&a) {
			return fmt.Errorf("activation %s is %s: %w", id, from, rejected)
		}
		// conditional on the status read above so concurrent transitions cannot both win
		res := tx.Model(&models.Activation{}).Where("id = ? AND status = ?", id, from).Updates(map[string]any{
			"status":         a.Status,
			"deactivated_at": a.DeactivatedAt,
			"track":          a.Track,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update activation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("activation %s changed concurrently: %w", id, rejected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Find returns the activation or nil when it does not exist.
func (s *Service) Find(ctx context.Context, id string) (*models.Activation, error) {
	var a models.Activation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activation: %w", err)
	}
	return &a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Activation, error) {
	a, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("activation %s: %w", id, errs.ErrNotFound)
	}
	return a, nil
}

// ListByKey lists a key's activations, optionally filtered by status.
func (s *Service) ListByKey(ctx context.Context, key string, status types.ActivationStatus) ([]*models.Activation, error) {
	q := s.db.WithContext(ctx).Where("lkey = ?", key)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var items []*models.Activation
	if err := q.Order("activated_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list activations: %w", err)
	}
	return items, nil
}

func (s *Service) Scan(ctx context.Context, req *types.ScanRequest) ([]*models.Activation, int64, error) {
	if err := req.CheckFields(ScanFields...); err != nil {
		return nil, 0, fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	return db.Scan[models.Activation](ctx, s.db, req)
}

// Delete removes the activation record. Upgrade rows keep referencing it.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Activation{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete activation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("activation %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// IsEligibleForRelease reports whether the activation may receive r: it is
// active, r is neither draft nor archived and r belongs to the key's product.
func IsEligibleForRelease(a *models.Activation, k *models.Key, r *models.Release) bool {
	if a == nil || k == nil || r == nil || a.Key != k.Key {
		return false
	}
	if !a.IsActive() {
		return false
	}
	if r.Status == types.ReleaseStatusDraft || r.Status == types.ReleaseStatusArchived {
		return false
	}
	return r.ProductID == k.ProductID
}

// NormalizeLocation trims the location. Online software is activated per
// site, so its locations are reduced to host and path without scheme, "www."
// or trailing slash.
func NormalizeLocation(location string, online bool) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("location is required: %w", errs.ErrInvalidArgument)
	}
	if !online {
		return location, nil
	}
	raw := location
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("location %q is not a url: %w", location, errs.ErrInvalidArgument)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host + strings.TrimRight(u.Path, "/"), nil
}
