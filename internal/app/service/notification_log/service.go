package notification_log

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/internal/platform/db"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

// ScanFields are the columns the admin API may filter and sort billing logs by.
var ScanFields = []string{"provider_id", "external_id", "event_type", "customer_id", "trace_id", "status", "occurred_at", "created_at"}

// Service keeps the raw billing events received by the webhook.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a billing notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *models.PaymentNotificationLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	l := logctx.FromCtx(ctx, s.log)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Save(entry).Error; err != nil {
			l.Errorw("failed to save notification log", "id", entry.ID, "err", err)
		}
	}()
}

// Scan lists billing logs for the admin API, newest first unless sorted.
func (s *Service) Scan(ctx context.Context, req *types.ScanRequest) ([]*models.PaymentNotificationLog, int64, error) {
	if err := req.CheckFields(ScanFields...); err != nil {
		return nil, 0, fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	return db.Scan[models.PaymentNotificationLog](ctx, s.db, req)
}

// Wait blocks until pending saves are written.
func (s *Service) Wait() { s.wg.Wait() }

func registerDrain(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.Wait()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerDrain),
)
