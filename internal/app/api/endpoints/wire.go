package endpoints

import (
	"github.com/samber/lo"

	"github.com/fatflowers/licensing/internal/app/api/dispatch"
	"github.com/fatflowers/licensing/internal/models"
)

type activationWire struct{ a *models.Activation }

func (w activationWire) ToWireFormat() dispatch.Mapping {
	a := w.a
	return dispatch.Mapping{
		"id":           dispatch.String(a.ID),
		"location":     dispatch.String(a.Location),
		"status":       dispatch.String(string(a.Status)),
		"activation":   dispatch.Time(&a.ActivatedAt),
		"deactivation": dispatch.Time(a.DeactivatedAt),
		"release":      dispatch.StringOrNull(a.ReleaseID),
		"track":        dispatch.String(string(a.Track)),
	}
}

type keyWire struct {
	k           *models.Key
	p           *models.Product
	activations []*models.Activation
}

func (w keyWire) ToWireFormat() dispatch.Mapping {
	k := w.k
	active := lo.CountBy(w.activations, func(a *models.Activation) bool { return a.IsActive() })
	list := make([]activationWire, 0, len(w.activations))
	for _, a := range w.activations {
		list = append(list, activationWire{a: a})
	}
	m := dispatch.Mapping{
		"key":         dispatch.String(k.Key),
		"transaction": dispatch.String(k.TransactionID),
		"product":     dispatch.String(k.ProductID),
		"customer":    dispatch.String(k.CustomerID),
		"status":      dispatch.String(string(k.Status)),
		"max":         dispatch.Int(int64(k.Max)),
		"expires":     dispatch.Time(k.ExpiresAt),
		"activations": dispatch.Mapping{
			"count":        dispatch.Int(int64(len(w.activations))),
			"count_active": dispatch.Int(int64(active)),
			"list":         dispatch.Entities(list),
		},
	}
	if w.p != nil {
		m["product_name"] = dispatch.String(w.p.Name)
	}
	return m
}

type releaseWire struct{ r *models.Release }

func (w releaseWire) ToWireFormat() dispatch.Mapping {
	r := w.r
	return dispatch.Mapping{
		"id":      dispatch.String(r.ID),
		"version": dispatch.String(r.Version),
		"type":    dispatch.String(string(r.Type)),
		"date":    dispatch.Time(r.StartDate),
	}
}
