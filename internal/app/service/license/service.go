package license

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/metrics"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

// MinPartialKeyLength is the shortest prefix accepted by FindByPrefix.
const MinPartialKeyLength = 3

// ScanFields are the key columns the admin list may filter and sort on.
var ScanFields = []string{"lkey", "transaction_id", "product_id", "customer_id", "status", "max_activations", "expires_at", "created_at"}

// Service owns license keys: validity, expiration, renewal and the key
// audit log.
type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	products *product.Service
	payments PaymentState
	now      func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, products *product.Service, payments PaymentState) *Service {
	return &Service{db: db, log: log, products: products, payments: payments, now: func() time.Time { return time.Now().UTC() }}
}

// Find returns the key or nil when it does not exist.
func (s *Service) Find(ctx context.Context, key string) (*models.Key, error) {
	var k models.Key
	err := s.db.WithContext(ctx).Where("lkey = ?", key).First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return &k, nil
}

// Get returns the key or an error wrapping errs.ErrNotFound.
func (s *Service) Get(ctx context.Context, key string) (*models.Key, error) {
	k, err := s.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("key %s: %w", logctx.Mask(key), errs.ErrNotFound)
	}
	return k, nil
}

// Resolve loads the key a reference points to.
func (s *Service) Resolve(ctx context.Context, ref models.KeyRef) (*models.Key, error) {
	return s.Get(ctx, ref.String())
}

// GetForUpdate loads the key inside tx holding a row lock until tx ends.
func (s *Service) GetForUpdate(ctx context.Context, tx *gorm.DB, key string) (*models.Key, error) {
	var k models.Key
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("lkey = ?", key).First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("key %s: %w", logctx.Mask(key), errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock key: %w", err)
	}
	return &k, nil
}

// FindByPrefix resolves a partial key such as "AB12..." to exactly one key.
func (s *Service) FindByPrefix(ctx context.Context, partial string) (*models.Key, error) {
	prefix := strings.TrimSuffix(strings.TrimSpace(partial), "...")
	if len(prefix) < MinPartialKeyLength {
		return nil, fmt.Errorf("partial key must be at least %d characters: %w", MinPartialKeyLength, errs.ErrInvalidArgument)
	}
	if !strings.HasSuffix(partial, "...") {
		return s.Get(ctx, prefix)
	}
	var keys []*models.Key
	if err := s.db.WithContext(ctx).Where("lkey LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").Limit(2).Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to search keys: %w", err)
	}
	switch len(keys) {
	case 0:
		return nil, fmt.Errorf("no key starts with %s: %w", prefix, errs.ErrNotFound)
	case 1:
		return keys[0], nil
	}
	return nil, fmt.Errorf("more than one key starts with %s: %w", prefix, errs.ErrInvalidArgument)
}

// Scan lists keys for the admin API.
func (s *Service) Scan(ctx context.Context, req *types.ScanRequest) ([]*models.Key, int64, error) {
	if err := req.CheckFields(ScanFields...); err != nil {
		return nil, 0, fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	return db.Scan[models.Key](ctx, s.db, req)
}

// Create inserts a key. An empty key string is generated; an empty status
// defaults to active.
func (s *Service) Create(ctx context.Context, k *models.Key) error {
	if k.Key == "" {
		k.Key = tool.GenerateLicenseKey()
	}
	if k.Status == "" {
		k.Status = types.KeyStatusActive
	}
	if !k.Status.Valid() {
		return fmt.Errorf("key status %q: %w", k.Status, errs.ErrInvalidArgument)
	}
	if k.Max < 0 {
		return fmt.Errorf("max activations must not be negative: %w", errs.ErrInvalidArgument)
	}
	if k.TransactionID == "" || k.CustomerID == "" {
		return fmt.Errorf("key requires a transaction and a customer: %w", errs.ErrInvalidArgument)
	}
	if _, err := s.products.Get(ctx, k.ProductID); err != nil {
		return err
	}
	if k.ExpiresAt != nil {
		exp := k.ExpiresAt.UTC()
		k.ExpiresAt = &exp
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(k).Error; err != nil {
			return fmt.Errorf("failed to create key: %w", err)
		}
		return s.writeLog(ctx, tx, nil, k, types.KeyChangeReasonCreated, nil)
	})
}

// IssueForTransaction creates the key for a purchase, once per transaction.
// Recurring products get an expiration one interval after the purchase.
func (s *Service) IssueForTransaction(ctx context.Context, txn *models.Transaction) (*models.Key, error) {
	var existing models.Key
	err := s.db.WithContext(ctx).Where("transaction_id = ? AND product_id = ?", txn.ID, txn.ProductID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up key for transaction: %w", err)
	}

	p, err := s.products.Get(ctx, txn.ProductID)
	if err != nil {
		return nil, err
	}
	k := &models.Key{
		TransactionID: txn.ID,
		ProductID:     txn.ProductID,
		CustomerID:    txn.CustomerID,
		Status:        types.KeyStatusActive,
		Max:           p.ActivationLimit,
	}
	if interval := p.Interval(); !interval.IsZero() {
		purchased := txn.PurchaseAt
		if purchased.IsZero() {
			purchased = s.now()
		}
		exp := interval.AddTo(purchased.UTC())
		k.ExpiresAt = &exp
	}
	if err := s.Create(ctx, k); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("key issued", "lkey", logctx.Mask(k.Key), "transaction_id", txn.ID, "product_id", txn.ProductID)
	return k, nil
}

// ActiveCount counts the key's activations with status active.
func (s *Service) ActiveCount(ctx context.Context, key string) (int64, error) {
	return ActiveCount(ctx, s.db, key)
}

// ActiveCount counts active activations of key using db, which may be a
// transaction holding the key lock.
func ActiveCount(ctx context.Context, db *gorm.DB, key string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Activation{}).
		Where("lkey = ? AND status = ?", key, types.ActivationStatusActive).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active activations: %w", err)
	}
	return n, nil
}

// IsValid reports whether the key has capacity left, its transaction is
// cleared for delivery and its subscription, if any, is active. It never
// changes the key's status.
func (s *Service) IsValid(ctx context.Context, key string) (bool, error) {
	k, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	n, err := s.ActiveCount(ctx, key)
	if err != nil {
		return false, err
	}
	if !k.HasCapacity(n) {
		return false, nil
	}

	cleared, err := s.payments.TransactionCleared(ctx, k.TransactionID)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}
	if !cleared {
		return false, nil
	}

	status, ok, err := s.payments.SubscriptionStatus(ctx, k.TransactionID)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	if ok && status != types.SubscriptionStatusActive {
		return false, nil
	}
	return true, nil
}

// Extend moves the expiration forward by the product's recurring interval and
// returns it. Keys that never expire are left alone and nil is returned.
func (s *Service) Extend(ctx context.Context, key string) (*time.Time, error) {
	interval, err := s.intervalOf(ctx, key)
	if err != nil {
		return nil, err
	}
	var extended *time.Time
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k, err := s.GetForUpdate(ctx, tx, key)
		if err != nil {
			return err
		}
		if !k.Expires() {
			return nil
		}
		extended, err = s.extend(ctx, tx, k, interval, types.KeyChangeReasonExtended, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return extended, nil
}

// Renew records a Renewal and extends the key in one transaction. txn is the
// renewal payment; its purchase time is the renewal date, now when nil.
// A key that had expired becomes active again once its new expiration is in
// the future.
func (s *Service) Renew(ctx context.Context, key string, txn *models.Transaction) (*models.Renewal, error) {
	record, _, err := s.renew(ctx, key, txn, false)
	return record, err
}

// RenewForTransaction renews key at most once per payment. When txn already
// has a renewal row, that row is returned with applied false and the key is
// left alone, so a redelivered payment can retry a renewal that failed
// without extending twice.
func (s *Service) RenewForTransaction(ctx context.Context, key string, txn *models.Transaction) (*models.Renewal, bool, error) {
	if txn == nil || txn.ID == "" {
		return nil, false, fmt.Errorf("renewal payment without id: %w", errs.ErrInvalidArgument)
	}
	return s.renew(ctx, key, txn, true)
}

func (s *Service) renew(ctx context.Context, key string, txn *models.Transaction, once bool) (*models.Renewal, bool, error) {
	interval, err := s.intervalOf(ctx, key)
	if err != nil {
		return nil, false, err
	}
	renewedAt := s.now()
	var txnID *string
	if txn != nil {
		txnID = &txn.ID
		if !txn.PurchaseAt.IsZero() {
			renewedAt = txn.PurchaseAt.UTC()
		}
	}

	var (
		record  *models.Renewal
		applied bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k, err := s.GetForUpdate(ctx, tx, key)
		if err != nil {
			return err
		}
		if once {
			// the key row lock serializes concurrent deliveries of one payment
			var prior models.Renewal
			err := tx.Where("lkey = ? AND transaction_id = ?", k.Key, *txnID).Take(&prior).Error
			if err == nil {
				record = &prior
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up renewal: %w", err)
			}
		}
		if !k.Expires() {
			return fmt.Errorf("renew %s: %w", logctx.Mask(key), errs.ErrNotRenewable)
		}

		applied = true
		record = &models.Renewal{
			ID:              tool.GenerateUUIDV7(),
			Key:             k.Key,
			TransactionID:   txnID,
			PriorExpiration: k.ExpiresAt.UTC(),
			RenewedAt:       renewedAt,
		}
		record.NewExpiration = interval.AddTo(record.PriorExpiration)
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to record renewal: %w", err)
		}

		extra := datatypes.JSONMap{"renewal_id": record.ID}
		if txnID != nil {
			extra["transaction_id"] = *txnID
		}
		_, err = s.extend(ctx, tx, k, interval, types.KeyChangeReasonRenewed, extra)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if !applied {
		return record, false, nil
	}
	metrics.Inc(metrics.KeyEvents, "renewed")
	logctx.FromCtx(ctx, s.log).Infow("key renewed", "lkey", logctx.Mask(key), "new_expiration", record.NewExpiration)
	return record, true, nil
}

// extend writes the extended expiration of the locked key k.
func (s *Service) extend(ctx context.Context, tx *gorm.DB, k *models.Key, interval types.Interval, reason types.KeyChangeReason, extra datatypes.JSONMap) (*time.Time, error) {
	before := *k
	exp := interval.AddTo(k.ExpiresAt.UTC())
	updates := map[string]any{"expires_at": exp}
	k.ExpiresAt = &exp
	if k.Status == types.KeyStatusExpired && exp.After(s.now()) {
		k.Status = types.KeyStatusActive
		updates["status"] = k.Status
	}
	if err := tx.WithContext(ctx).Model(&models.Key{}).Where("lkey = ?", k.Key).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to extend key: %w", err)
	}
	if err := s.writeLog(ctx, tx, &before, k, reason, extra); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (s *Service) intervalOf(ctx context.Context, key string) (types.Interval, error) {
	k, err := s.Get(ctx, key)
	if err != nil {
		return types.Interval{}, err
	}
	p, err := s.products.Get(ctx, k.ProductID)
	if err != nil {
		return types.Interval{}, err
	}
	interval := p.Interval()
	if k.Expires() && interval.IsZero() {
		return types.Interval{}, fmt.Errorf("product %s has no recurring interval: %w", p.ID, errs.ErrInvalidArgument)
	}
	return interval, nil
}

// SetStatus changes the key status. Activations are not touched.
func (s *Service) SetStatus(ctx context.Context, key string, status types.KeyStatus) error {
	if !status.Valid() {
		return fmt.Errorf("key status %q: %w", status, errs.ErrInvalidArgument)
	}
	return s.update(ctx, key, types.KeyChangeReasonStatus, func(k *models.Key) map[string]any {
		k.Status = status
		return map[string]any{"status": status}
	})
}

// SetMax changes the activation limit; 0 means unlimited.
func (s *Service) SetMax(ctx context.Context, key string, max int) error {
	if max < 0 {
		return fmt.Errorf("max activations must not be negative: %w", errs.ErrInvalidArgument)
	}
	return s.update(ctx, key, types.KeyChangeReasonMax, func(k *models.Key) map[string]any {
		k.Max = max
		return map[string]any{"max_activations": max}
	})
}

// SetExpires changes the expiration; nil makes the key never expire.
func (s *Service) SetExpires(ctx context.Context, key string, expires *time.Time) error {
	if expires != nil {
		e := expires.UTC()
		expires = &e
	}
	return s.update(ctx, key, types.KeyChangeReasonExpires, func(k *models.Key) map[string]any {
		k.ExpiresAt = expires
		return map[string]any{"expires_at": expires}
	})
}

// Expire sets the expiration to when and marks the key expired.
func (s *Service) Expire(ctx context.Context, key string, when time.Time) error {
	when = when.UTC()
	err := s.update(ctx, key, types.KeyChangeReasonExpired, func(k *models.Key) map[string]any {
		k.ExpiresAt = &when
		k.Status = types.KeyStatusExpired
		return map[string]any{"expires_at": when, "status": types.KeyStatusExpired}
	})
	if err == nil {
		metrics.Inc(metrics.KeyEvents, "expired")
	}
	return err
}

// update applies mutate to the locked key and logs the change.
func (s *Service) update(ctx context.Context, key string, reason types.KeyChangeReason, mutate func(k *models.Key) map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k, err := s.GetForUpdate(ctx, tx, key)
		if err != nil {
			return err
		}
		before := *k
		if err := tx.Model(&models.Key{}).Where("lkey = ?", key).Updates(mutate(k)).Error; err != nil {
			return fmt.Errorf("failed to update key: %w", err)
		}
		return s.writeLog(ctx, tx, &before, k, reason, nil)
	})
}

// ExpireDue marks active keys whose expiration is at or before now as expired
// and returns how many changed.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	var due []*models.Key
	err := s.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", types.KeyStatusActive, now.UTC()).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find due keys: %w", err)
	}

	expired := 0
	for _, k := range due {
		changed := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := s.GetForUpdate(ctx, tx, k.Key)
			if err != nil {
				return err
			}
			// renewed or disabled since the scan
			if locked.Status != types.KeyStatusActive || locked.ExpiresAt == nil || locked.ExpiresAt.After(now) {
				return nil
			}
			before := *locked
			locked.Status = types.KeyStatusExpired
			if err := tx.Model(&models.Key{}).Where("lkey = ?", k.Key).Update("status", types.KeyStatusExpired).Error; err != nil {
				return err
			}
			changed = true
			return s.writeLog(ctx, tx, &before, locked, types.KeyChangeReasonExpired, datatypes.JSONMap{"source": "sweeper"})
		})
		if err != nil {
			return expired, fmt.Errorf("failed to expire key %s: %w", logctx.Mask(k.Key), err)
		}
		if changed {
			expired++
		}
	}
	if expired > 0 {
		metrics.Add(metrics.KeyEvents, float64(expired), "expired")
		logctx.FromCtx(ctx, s.log).Infow("expired due keys", "count", expired)
	}
	return expired, nil
}

// Delete removes the key with its activations and renewals.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k, err := s.GetForUpdate(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := tx.Where("lkey = ?", key).Delete(&models.Activation{}).Error; err != nil {
			return fmt.Errorf("failed to delete activations: %w", err)
		}
		if err := tx.Where("lkey = ?", key).Delete(&models.Renewal{}).Error; err != nil {
			return fmt.Errorf("failed to delete renewals: %w", err)
		}
		if err := tx.Where("lkey = ?", key).Delete(&models.Key{}).Error; err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("key deleted", "lkey", logctx.Mask(k.Key))
		return nil
	})
}

// Renewals lists the key's renewal ledger, newest first.
func (s *Service) Renewals(ctx context.Context, key string) ([]*models.Renewal, error) {
	var items []*models.Renewal
	if err := s.db.WithContext(ctx).Where("lkey = ?", key).Order("renewed_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list renewals: %w", err)
	}
	return items, nil
}

// Logs lists the key's audit log, newest first.
func (s *Service) Logs(ctx context.Context, key string) ([]*models.KeyLog, error) {
	var items []*models.KeyLog
	if err := s.db.WithContext(ctx).Where("lkey = ?", key).Order("id desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list key logs: %w", err)
	}
	return items, nil
}

func (s *Service) writeLog(ctx context.Context, tx *gorm.DB, before, after *models.Key, reason types.KeyChangeReason, extra datatypes.JSONMap) error {
	if extra == nil {
		extra = datatypes.JSONMap{}
	}
	key := ""
	if after != nil {
		key = after.Key
	} else if before != nil {
		key = before.Key
	}
	entry := &models.KeyLog{
		ID:     tool.GenerateUUIDV7(),
		Key:    key,
		Reason: reason,
		Before: datatypes.NewJSONType(before),
		After:  datatypes.NewJSONType(after),
		Extra:  extra,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write key log: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
