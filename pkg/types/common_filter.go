package types

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq        CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq     CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt        CommonFilterOperator = "lt"
	CommonFilterOperatorLte       CommonFilterOperator = "lte"
	CommonFilterOperatorGt        CommonFilterOperator = "gt"
	CommonFilterOperatorGte       CommonFilterOperator = "gte"
	CommonFilterOperatorDateRange CommonFilterOperator = "date_range"
	CommonFilterOperatorRange     CommonFilterOperator = "range"
	CommonFilterOperatorIn        CommonFilterOperator = "in"
	// CommonFilterOperatorOr matches when any nested filter does.
	CommonFilterOperatorOr CommonFilterOperator = "or"
)

// CommonFilter is one condition of an admin listing. Field is a column name
// checked against an allow list before it reaches SQL.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
	Filters  []*CommonFilter      `json:"filters"`
}

// Validate checks the operator and its value count.
func (f *CommonFilter) Validate() error {
	need := 1
	switch f.Operator {
	case CommonFilterOperatorEq, CommonFilterOperatorNotEq, CommonFilterOperatorLt,
		CommonFilterOperatorLte, CommonFilterOperatorGt, CommonFilterOperatorGte, CommonFilterOperatorIn:
	case CommonFilterOperatorRange, CommonFilterOperatorDateRange:
		need = 2
	case CommonFilterOperatorOr:
		if len(f.Filters) == 0 {
			return fmt.Errorf("or filter without nested filters")
		}
		for _, sub := range f.Filters {
			if err := sub.Validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown filter operator %q", f.Operator)
	}
	if len(f.Values) < need {
		return fmt.Errorf("filter %s %s needs %d value(s)", f.Field, f.Operator, need)
	}
	if f.Operator == CommonFilterOperatorDateRange {
		if _, _, err := dayBounds(f.Values[0], f.Values[1]); err != nil {
			return err
		}
	}
	return nil
}

// dayBounds turns two YYYY-MM-DD values into the half open interval
// [first day 00:00, day after last 00:00) in UTC.
func dayBounds(from, to any) (time.Time, time.Time, error) {
	parse := func(v any) (time.Time, error) {
		s, _ := v.(string)
		t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("date_range value %v is not YYYY-MM-DD", v)
		}
		return t, nil
	}
	lo, err := parse(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	hi, err := parse(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return lo, hi.AddDate(0, 0, 1), nil
}

// Expr converts the filter into a gorm clause, nil when it cannot apply.
func (f *CommonFilter) Expr() clause.Expression {
	if f.Operator == CommonFilterOperatorOr {
		exprs := make([]clause.Expression, 0, len(f.Filters))
		for _, sub := range f.Filters {
			if e := sub.Expr(); e != nil {
				exprs = append(exprs, e)
			}
		}
		if len(exprs) == 0 {
			return nil
		}
		return clause.Or(exprs...)
	}
	if len(f.Values) == 0 {
		return nil
	}
	col, v := clause.Column{Name: f.Field}, f.Values[0]
	switch f.Operator {
	case CommonFilterOperatorEq:
		return clause.Eq{Column: col, Value: v}
	case CommonFilterOperatorNotEq:
		return clause.Neq{Column: col, Value: v}
	case CommonFilterOperatorLt:
		return clause.Lt{Column: col, Value: v}
	case CommonFilterOperatorLte:
		return clause.Lte{Column: col, Value: v}
	case CommonFilterOperatorGt:
		return clause.Gt{Column: col, Value: v}
	case CommonFilterOperatorGte:
		return clause.Gte{Column: col, Value: v}
	case CommonFilterOperatorIn:
		return clause.IN{Column: col, Values: f.Values}
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return nil
		}
		return clause.And(clause.Gte{Column: col, Value: v}, clause.Lte{Column: col, Value: f.Values[1]})
	case CommonFilterOperatorDateRange:
		if len(f.Values) < 2 {
			return nil
		}
		lo, hi, err := dayBounds(v, f.Values[1])
		if err != nil {
			return nil
		}
		return clause.And(clause.Gte{Column: col, Value: lo}, clause.Lt{Column: col, Value: hi})
	}
	return nil
}

// FiltersAnd joins filters with AND; an empty set matches everything.
type FiltersAnd []*CommonFilter

func (w FiltersAnd) Build(builder clause.Builder) {
	exprs := make([]clause.Expression, 0, len(w))
	for _, f := range w {
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

// ScanRequest is the paginated, filterable list request of the admin API.
type ScanRequest struct {
	Filters   []*CommonFilter `json:"filters"`
	From      int             `json:"from"`
	Size      int             `json:"size"`
	SortBy    string          `json:"sort_by"`
	SortOrder string          `json:"sort_order"`
}

// CheckFields rejects filters and sort columns outside allowed.
func (r *ScanRequest) CheckFields(allowed ...string) error {
	ok := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		ok[a] = struct{}{}
	}
	if r.SortBy != "" {
		if _, found := ok[r.SortBy]; !found {
			return fmt.Errorf("cannot sort by %q", r.SortBy)
		}
	}
	var check func([]*CommonFilter) error
	check = func(filters []*CommonFilter) error {
		for _, f := range filters {
			if err := f.Validate(); err != nil {
				return err
			}
			if f.Operator == CommonFilterOperatorOr {
				if err := check(f.Filters); err != nil {
					return err
				}
				continue
			}
			if _, found := ok[f.Field]; !found {
				return fmt.Errorf("cannot filter by %q", f.Field)
			}
		}
		return nil
	}
	return check(r.Filters)
}
