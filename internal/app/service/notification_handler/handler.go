package notification_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/licensing/internal/app/service/license"
	notificationlog "github.com/fatflowers/licensing/internal/app/service/notification_log"
	"github.com/fatflowers/licensing/internal/app/service/payment"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/metrics"
	"github.com/fatflowers/licensing/pkg/types"
)

// NotificationHandler applies billing events to payments and keys: purchases
// issue a key and renewals extend it.
type NotificationHandler struct {
	notifSvc *notificationlog.Service
	keys     *license.Service
	payments *payment.Service
	Logger   *zap.SugaredLogger
}

func NewNotificationHandler(notif *notificationlog.Service, keys *license.Service, payments *payment.Service, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{notifSvc: notif, keys: keys, payments: payments, Logger: log}
}

// HandleNotification logs the raw event as received, applies it and logs the
// outcome. Replaying an event does not issue or renew twice.
func (h *NotificationHandler) HandleNotification(ctx context.Context, traceID string, parser NotificationParser) (res *Result, resErr error) {
	l := logctx.FromCtx(ctx, h.Logger)
	dataBytes, _ := json.Marshal(parser.GetData(ctx))
	entry := func(status models.BillingLogStatus) *models.PaymentNotificationLog {
		return &models.PaymentNotificationLog{
			ProviderID: string(parser.GetProvider(ctx)),
			ExternalID: parser.GetExternalID(ctx),
			CustomerID: lo.EmptyableToPtr(parser.GetCustomerID(ctx)),
			TraceID:    traceID,
			OccurredAt: parser.GetNotificationTime(ctx),
			Data:       datatypes.JSON(dataBytes),
			Status:     status,
		}
	}

	event, eventErr := parser.GetEvent(ctx)
	var eventType EventType
	if eventErr == nil {
		eventType = event.Type
	}
	received := entry(models.BillingLogStatusReceived)
	received.EventType = string(eventType)
	h.notifSvc.Save(ctx, received)

	defer func() {
		outcome := entry(models.BillingLogStatusHandled)
		outcome.EventType = string(eventType)
		resMap := map[string]any{"result": res}
		if resErr != nil {
			outcome.Status = models.BillingLogStatusHandleFailed
			resMap["error"] = resErr.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		outcome.Result = lo.ToPtr(datatypes.JSON(resBytes))
		h.notifSvc.Save(ctx, outcome)
		metrics.Inc(metrics.BillingEvents, string(eventType), string(outcome.Status))
	}()

	if eventErr != nil {
		l.Errorw("failed to get billing event", "error", eventErr)
		return nil, fmt.Errorf("failed to get billing event: %w", eventErr)
	}
	l.Infow("got billing event", "type", event.Type, "provider", event.Provider, "external_id", event.ExternalID)

	res, resErr = h.apply(ctx, event)
	if resErr != nil {
		l.Warnw("billing event failed", "type", event.Type, "external_id", event.ExternalID, "error", resErr)
		return nil, resErr
	}
	l.Infow("billing event handled", "type", event.Type, "transaction_id", res.TransactionID, "created", res.Created)
	return res, nil
}

func (h *NotificationHandler) apply(ctx context.Context, e *Event) (*Result, error) {
	switch e.Type {
	case EventPurchase:
		return h.purchase(ctx, e)
	case EventRenewal:
		return h.renewal(ctx, e)
	case EventRefund:
		txn, err := h.transaction(ctx, e.Provider, e.ExternalID)
		if err != nil {
			return nil, err
		}
		txn, err = h.payments.Refund(ctx, txn.ID, e.Amount, e.OccurredAt)
		if err != nil {
			return nil, err
		}
		return &Result{TransactionID: txn.ID}, nil
	case EventRevoke:
		txn, err := h.transaction(ctx, e.Provider, e.ExternalID)
		if err != nil {
			return nil, err
		}
		if err := h.payments.Revoke(ctx, txn.ID, e.Reason, e.OccurredAt); err != nil {
			return nil, err
		}
		return &Result{TransactionID: txn.ID}, nil
	case EventSubscription:
		txn, err := h.transaction(ctx, e.Provider, e.ExternalID)
		if err != nil {
			return nil, err
		}
		err = h.payments.UpsertSubscription(ctx, &models.Subscription{
			TransactionID: txn.ID,
			Status:        e.SubscriptionStatus,
			NextRenewAt:   e.NextRenewAt,
			ExpireAt:      e.ExpireAt,
		})
		if err != nil {
			return nil, err
		}
		return &Result{TransactionID: txn.ID}, nil
	}
	return nil, fmt.Errorf("billing event type %q: %w", e.Type, errs.ErrInvalidArgument)
}

func (h *NotificationHandler) purchase(ctx context.Context, e *Event) (*Result, error) {
	txn := &models.Transaction{
		CustomerID: e.CustomerID,
		ProductID:  e.ProductID,
		ProviderID: e.Provider,
		ExternalID: e.ExternalID,
		Currency:   e.Currency,
		Price:      e.Price,
		PurchaseAt: e.OccurredAt,
	}
	created, err := h.payments.RecordTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}
	k, err := h.keys.IssueForTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}
	return &Result{TransactionID: txn.ID, Key: k.Key, Created: created}, nil
}

// renewal records the child payment and extends the key once per payment.
// RenewalID is set only on the delivery that applied the renewal.
func (h *NotificationHandler) renewal(ctx context.Context, e *Event) (*Result, error) {
	if e.ParentExternalID == "" {
		return nil, fmt.Errorf("renewal requires parent_external_id: %w", errs.ErrInvalidArgument)
	}
	parent, err := h.transaction(ctx, e.Provider, e.ParentExternalID)
	if err != nil {
		return nil, err
	}
	child, created, err := h.payments.RecordRenewalPayment(ctx, parent.ID, &models.Transaction{
		ProviderID: e.Provider,
		ExternalID: e.ExternalID,
		Currency:   e.Currency,
		Price:      e.Price,
		PurchaseAt: e.OccurredAt,
	})
	if err != nil {
		return nil, err
	}
	k, err := h.keys.IssueForTransaction(ctx, parent)
	if err != nil {
		return nil, err
	}
	res := &Result{TransactionID: child.ID, Key: k.Key, Created: created}
	// decided by the renewal ledger rather than created, so a delivery whose
	// renewal failed after the payment was stored is applied on replay
	renewal, applied, err := h.keys.RenewForTransaction(ctx, k.Key, child)
	if err != nil {
		return nil, err
	}
	if applied {
		res.RenewalID = renewal.ID
	}
	return res, nil
}

func (h *NotificationHandler) transaction(ctx context.Context, provider types.PaymentProvider, externalID string) (*models.Transaction, error) {
	txn, err := h.payments.FindByExternal(ctx, provider, externalID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("transaction %s/%s: %w", provider, externalID, errs.ErrNotFound)
	}
	return txn, nil
}
