package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/errs"
	"github.com/fatflowers/licensing/pkg/types"
)

type StatisticType string

const (
	// Daily series
	StatisticTypeDailyKeysIssued       StatisticType = "daily_keys_issued"
	StatisticTypeDailyActivations      StatisticType = "daily_activations"
	StatisticTypeDailyRenewals         StatisticType = "daily_renewals"
	StatisticTypeDailyUpgrades         StatisticType = "daily_upgrades"
	StatisticTypeDailyTransactionCount StatisticType = "daily_transaction_count"
	StatisticTypeDailyRevenue          StatisticType = "daily_revenue"

	// Point in time totals
	StatisticTypeTotalActiveKeys        StatisticType = "total_active_keys"
	StatisticTypeTotalActiveActivations StatisticType = "total_active_activations"
)

type StatisticFilterType string

const (
	// StatisticFilterTypeDate bounds daily series by day, values are YYYY-MM-DD.
	StatisticFilterTypeDate      StatisticFilterType = "date"
	StatisticFilterTypeProductID StatisticFilterType = "product_id"
)

var validFilters = map[StatisticFilterType][]StatisticType{
	StatisticFilterTypeDate: {
		StatisticTypeDailyKeysIssued, StatisticTypeDailyActivations, StatisticTypeDailyRenewals,
		StatisticTypeDailyUpgrades, StatisticTypeDailyTransactionCount, StatisticTypeDailyRevenue,
	},
	StatisticFilterTypeProductID: {
		StatisticTypeDailyKeysIssued, StatisticTypeDailyTransactionCount, StatisticTypeDailyRevenue,
		StatisticTypeTotalActiveKeys,
	},
}

type StatisticDataItem struct {
	ID StatisticType `json:"id" binding:"required"`
}

type StatisticRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items" binding:"required,min=1,dive"`
}

// Validate rejects unknown filter fields and data items.
func (r *StatisticRequest) Validate() error {
	for _, f := range r.Filters {
		if _, ok := validFilters[StatisticFilterType(f.Field)]; !ok {
			return fmt.Errorf("cannot filter statistics by %q: %w", f.Field, errs.ErrInvalidArgument)
		}
		if StatisticFilterType(f.Field) == StatisticFilterTypeDate {
			if _, err := dateBounds(f); err != nil {
				return err
			}
		} else if err := f.Validate(); err != nil {
			return fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
		}
	}
	for _, di := range r.DataItems {
		if _, ok := queries[di.ID]; !ok {
			return fmt.Errorf("invalid data item id %q: %w", di.ID, errs.ErrInvalidArgument)
		}
	}
	return nil
}

// applicable reports whether every filter in the request can be applied to t.
// A statistic that cannot honour a filter is returned empty rather than unfiltered.
func (r *StatisticRequest) applicable(t StatisticType) bool {
	for _, f := range r.Filters {
		if !lo.Contains(validFilters[StatisticFilterType(f.Field)], t) {
			return false
		}
	}
	return true
}

// where builds the filter clause for a statistic whose day is derived from dateColumn.
type where struct {
	filters    []*types.CommonFilter
	dateColumn string
}

func (w where) Build(builder clause.Builder) {
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		if StatisticFilterType(f.Field) == StatisticFilterTypeDate {
			// bounds were checked by Validate
			b, _ := dateBounds(f)
			if !b.from.IsZero() {
				exprs = append(exprs, clause.Gte{Column: w.dateColumn, Value: b.from})
			}
			if !b.until.IsZero() {
				exprs = append(exprs, clause.Lt{Column: w.dateColumn, Value: b.until})
			}
			continue
		}
		if e := f.Expr(); e != nil {
			exprs = append(exprs, e)
		}
	}
	if len(exprs) == 0 {
		builder.WriteString("1=1")
		return
	}
	clause.And(exprs...).Build(builder)
}

type bounds struct {
	from, until time.Time
}

// dateBounds turns a date filter into a half open [from, until) range of days.
func dateBounds(f *types.CommonFilter) (bounds, error) {
	day := func(i int) (time.Time, error) {
		s, ok := f.Values[i].(string)
		if !ok {
			return time.Time{}, fmt.Errorf("date filter value %v: %w", f.Values[i], errs.ErrInvalidArgument)
		}
		t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("date filter value %q: %w", s, errs.ErrInvalidArgument)
		}
		return t, nil
	}
	if len(f.Values) == 0 {
		return bounds{}, fmt.Errorf("date filter without values: %w", errs.ErrInvalidArgument)
	}
	first, err := day(0)
	if err != nil {
		return bounds{}, err
	}
	switch f.Operator {
	case types.CommonFilterOperatorEq:
		return bounds{from: first, until: first.AddDate(0, 0, 1)}, nil
	case types.CommonFilterOperatorGte:
		return bounds{from: first}, nil
	case types.CommonFilterOperatorLte:
		return bounds{until: first.AddDate(0, 0, 1)}, nil
	case types.CommonFilterOperatorRange, types.CommonFilterOperatorDateRange:
		if len(f.Values) < 2 {
			return bounds{}, fmt.Errorf("date range needs two values: %w", errs.ErrInvalidArgument)
		}
		last, err := day(1)
		if err != nil {
			return bounds{}, err
		}
		return bounds{from: first, until: last.AddDate(0, 0, 1)}, nil
	}
	return bounds{}, fmt.Errorf("date filter operator %q: %w", f.Operator, errs.ErrInvalidArgument)
}

type StatisticDataPoint struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticDataPoint `json:"data_items"`
}

// Service aggregates license, activation and payment activity for the admin API.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service { return &Service{db: db, now: time.Now} }

type query func(s *Service, ctx context.Context, w where) ([]StatisticDataPoint, error)

var queries = map[StatisticType]query{
	StatisticTypeDailyKeysIssued:        daily(models.Key{}.TableName(), "created_at"),
	StatisticTypeDailyActivations:       daily(models.Activation{}.TableName(), "activated_at"),
	StatisticTypeDailyRenewals:          daily(models.Renewal{}.TableName(), "renewed_at"),
	StatisticTypeDailyUpgrades:          daily(models.Upgrade{}.TableName(), "upgraded_at"),
	StatisticTypeDailyTransactionCount:  (*Service).dailyTransactionCount,
	StatisticTypeDailyRevenue:           (*Service).dailyRevenue,
	StatisticTypeTotalActiveKeys:        (*Service).totalActiveKeys,
	StatisticTypeTotalActiveActivations: (*Service).totalActiveActivations,
}

// dayExpr formats column as YYYY-MM-DD in the connected database's dialect.
func dayExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", column)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
}

// daily counts rows of table per day of dateColumn.
func daily(table, dateColumn string) query {
	return func(s *Service, ctx context.Context, w where) ([]StatisticDataPoint, error) {
		return s.daily(s.db.WithContext(ctx).Table(table), dateColumn, "count(*)", "", w)
	}
}

// daily aggregates value per day of dateColumn, also grouped by label when set.
func (s *Service) daily(q *gorm.DB, dateColumn, value, label string, w where) ([]StatisticDataPoint, error) {
	day := dayExpr(s.db, dateColumn)
	sel := fmt.Sprintf("%s as date, %s as value", day, value)
	if label != "" {
		sel = fmt.Sprintf("%s as date, %s as label, %s as value", day, label, value)
	}
	w.dateColumn = dateColumn
	q = q.Select(sel).
		Where(clause.Where{Exprs: []clause.Expression{w}}).
		Group(day).
		Order("date")
	if label != "" {
		q = q.Group(label).Order("label")
	}
	var results []StatisticDataPoint
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) dailyTransactionCount(ctx context.Context, w where) ([]StatisticDataPoint, error) {
	q := s.db.WithContext(ctx).Table(models.Transaction{}.TableName()).
		Where("provider_id != ?", types.PaymentProviderInner)
	return s.daily(q, "purchase_at", "count(*)", "", w)
}

// dailyRevenue sums the net amount received per day and currency. Renewal
// payments count on their own purchase day.
func (s *Service) dailyRevenue(ctx context.Context, w where) ([]StatisticDataPoint, error) {
	q := s.db.WithContext(ctx).Table(models.Transaction{}.TableName()).
		Where("provider_id != ?", types.PaymentProviderInner)
	return s.daily(q, "purchase_at", "sum(price - refund_total)", "currency", w)
}

func (s *Service) totalActiveKeys(ctx context.Context, w where) ([]StatisticDataPoint, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Key{}).
		Where("status = ?", types.KeyStatusActive).
		Where("expires_at IS NULL OR expires_at > ?", s.now().UTC()).
		Where(clause.Where{Exprs: []clause.Expression{w}}).
		Count(&n).Error
	if err != nil {
		return nil, err
	}
	return []StatisticDataPoint{{Value: n}}, nil
}

func (s *Service) totalActiveActivations(ctx context.Context, _ where) ([]StatisticDataPoint, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Activation{}).
		Where("status = ?", types.ActivationStatusActive).
		Count(&n).Error
	if err != nil {
		return nil, err
	}
	return []StatisticDataPoint{{Value: n}}, nil
}

// GetStatistics computes every requested data item concurrently. Items that
// cannot honour one of the filters map to nil.
func (s *Service) GetStatistics(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	var mu sync.Mutex
	results := make(map[StatisticType][]StatisticDataPoint, len(request.DataItems))
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range request.DataItems {
		id := item.ID
		if !request.applicable(id) {
			mu.Lock()
			results[id] = nil
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			res, err := queries[id](s, gctx, where{filters: request.Filters})
			if err != nil {
				return fmt.Errorf("statistic %s: %w", id, err)
			}
			mu.Lock()
			results[id] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &StatisticResponse{DataItems: results}, nil
}
