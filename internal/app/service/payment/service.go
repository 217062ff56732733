package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

// Service records purchases and subscriptions reported by the billing
// provider and answers payment state questions for license validation.
type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	products *product.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, products *product.Service) *Service {
	return &Service{db: db, log: log, products: products}
}

// Get returns the transaction by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Transaction, error) {
	var item models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return &item, nil
}

// RecordTransaction upserts item by (provider, external id). It reports
// whether a new row was created. New rows get a snapshot of the product.
func (s *Service) RecordTransaction(ctx context.Context, item *models.Transaction) (bool, error) {
	if item.ProviderID == "" || item.ExternalID == "" || item.CustomerID == "" || item.ProductID == "" {
		return false, fmt.Errorf("transaction requires provider, external id, customer and product: %w", errs.ErrInvalidArgument)
	}
	if item.Status == "" {
		item.Status = types.TransactionStatusPaid
	}
	if item.PurchaseAt.IsZero() {
		item.PurchaseAt = time.Now().UTC()
	}

	p, err := s.products.Get(ctx, item.ProductID)
	if err != nil {
		return false, err
	}

	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.Transaction
		err := tx.Where("provider_id = ? AND external_id = ?", item.ProviderID, item.ExternalID).First(&original).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load original transaction: %w", err)
		}

		extra := item.Extra.Data()
		if extra == nil {
			extra = &models.TransactionExtra{}
		}
		if err == nil {
			// keep identity and the snapshot taken at purchase time
			item.ID = original.ID
			item.CreatedAt = original.CreatedAt
			extra.ProductSnapshot = original.GetProductSnapshot()
		} else {
			created = true
			if item.ID == "" {
				item.ID = tool.GenerateUUIDV7()
			}
			extra.ProductSnapshot = p
		}
		item.Extra = datatypes.NewJSONType(extra)

		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("failed to upsert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	logctx.FromCtx(ctx, s.log).Infow("transaction recorded",
		"transaction_id", item.ID, "provider", item.ProviderID, "external_id", item.ExternalID, "created", created)
	return created, nil
}

// RecordRenewalPayment stores a recurring payment as a child of parentID and
// returns it. Customer and product are inherited from the parent. created is
// false when the payment was already known.
func (s *Service) RecordRenewalPayment(ctx context.Context, parentID string, item *models.Transaction) (*models.Transaction, bool, error) {
	parent, err := s.Get(ctx, parentID)
	if err != nil {
		return nil, false, err
	}
	item.ParentTransactionID = &parent.ID
	item.CustomerID = parent.CustomerID
	item.ProductID = parent.ProductID
	if item.ProviderID == "" {
		item.ProviderID = parent.ProviderID
	}
	if item.Currency == "" {
		item.Currency = parent.Currency
	}
	created, err := s.RecordTransaction(ctx, item)
	if err != nil {
		return nil, false, err
	}
	return item, created, nil
}

// FindByExternal looks a transaction up by the provider's id for it. A miss
// is (nil, nil).
func (s *Service) FindByExternal(ctx context.Context, provider types.PaymentProvider, externalID string) (*models.Transaction, error) {
	var item models.Transaction
	err := s.db.WithContext(ctx).Where("provider_id = ? AND external_id = ?", provider, externalID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s/%s: %w", provider, externalID, err)
	}
	return &item, nil
}

// Refund adds amount to the refunded total. A refund covering the full price
// marks the transaction refunded, which stops it from clearing for delivery.
func (s *Service) Refund(ctx context.Context, id string, amount int64, at time.Time) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("refund amount must be positive: %w", errs.ErrInvalidArgument)
	}
	var item models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
			}
			return err
		}
		item.RefundTotal += amount
		if item.RefundTotal >= item.Price {
			item.Status = types.TransactionStatusRefunded
			at = at.UTC()
			item.RefundAt = &at
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refund transaction: %w", err)
	}
	return &item, nil
}

// Revoke voids a transaction, e.g. after a chargeback.
func (s *Service) Revoke(ctx context.Context, id, reason string, at time.Time) error {
	at = at.UTC()
	res := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("id = ?", id).Updates(map[string]any{
		"status":            types.TransactionStatusVoided,
		"revocation_date":   at,
		"revocation_reason": reason,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to revoke transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// UpsertSubscription stores the subscription attached to a transaction.
func (s *Service) UpsertSubscription(ctx context.Context, m *models.Subscription) error {
	if m.TransactionID == "" {
		return fmt.Errorf("subscription requires a transaction: %w", errs.ErrInvalidArgument)
	}
	switch m.Status {
	case types.SubscriptionStatusActive, types.SubscriptionStatusSuspended,
		types.SubscriptionStatusCancelled, types.SubscriptionStatusDeactivated:
	default:
		return fmt.Errorf("subscription status %q: %w", m.Status, errs.ErrInvalidArgument)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.Subscription
		err := tx.Where("transaction_id = ?", m.TransactionID).First(&original).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get original subscription: %w", err)
		}
		if original.ID != "" {
			m.ID = original.ID
			m.CreatedAt = original.CreatedAt
		} else if m.ID == "" {
			m.ID = tool.GenerateUUIDV7()
		}
		if err := tx.Save(m).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}
		if original.ID != "" && original.Status != m.Status {
			logctx.FromCtx(ctx, s.log).Infow("subscription status changed",
				"transaction_id", m.TransactionID, "from", original.Status, "to", m.Status)
		}
		return nil
	})
}

// GetSubscription returns the subscription of a transaction or nil when the
// purchase is not recurring.
func (s *Service) GetSubscription(ctx context.Context, transactionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// TransactionCleared reports whether the transaction is cleared for delivery.
// An unknown transaction is not cleared.
func (s *Service) TransactionCleared(ctx context.Context, transactionID string) (bool, error) {
	item, err := s.Get(ctx, transactionID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return item.Cleared(), nil
}

// SubscriptionStatus returns the status of the transaction's subscription;
// ok is false when the transaction has none.
func (s *Service) SubscriptionStatus(ctx context.Context, transactionID string) (types.SubscriptionStatus, bool, error) {
	sub, err := s.GetSubscription(ctx, transactionID)
	if err != nil || sub == nil {
		return "", false, err
	}
	return sub.Status, true, nil
}
