package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/licensing/pkg/types"
)

const defaultScanSize = 10

// Scan runs a paginated admin listing of T with the request's filters.
func Scan[T any](ctx context.Context, gdb *gorm.DB, req *types.ScanRequest) ([]*T, int64, error) {
	if req == nil {
		return nil, 0, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = defaultScanSize
	}
	if req.From < 0 {
		req.From = 0
	}

	var model T
	tx := gdb.WithContext(ctx).Model(&model)
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	var rows []*T
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list: %w", err)
	}
	return rows, total, nil
}
