// Package memory serves ERP records from an in-process record set.
package memory

import (
	"context"

	"github.com/samber/lo"

	"github.com/xenking/commercial-invoice/internal/domain/record"
	"github.com/xenking/commercial-invoice/internal/storage/fixture"
)

var _ record.Gateway = (*Gateway)(nil)

// Gateway is a read-only record.Gateway over a fixture set. Records are
// shared, callers must not modify them.
type Gateway struct {
	orders       map[int64]*record.Order
	fulfillments map[int64]*record.Fulfillment
	subsidiaries map[int64]*record.Subsidiary
	salespeople  map[int64]*record.Salesperson
	items        map[int64]*record.Item
	files        map[int64]*record.File
}

// New indexes set by record id.
func New(set *fixture.Set) *Gateway {
	return &Gateway{
		orders:       lo.KeyBy(set.Orders, func(v *record.Order) int64 { return v.ID }),
		fulfillments: lo.KeyBy(set.Fulfillments, func(v *record.Fulfillment) int64 { return v.ID }),
		subsidiaries: lo.KeyBy(set.Subsidiaries, func(v *record.Subsidiary) int64 { return v.ID }),
		salespeople:  lo.KeyBy(set.Salespeople, func(v *record.Salesperson) int64 { return v.ID }),
		items:        lo.KeyBy(set.Items, func(v *record.Item) int64 { return v.ID }),
		files:        lo.KeyBy(set.Files, func(v *record.File) int64 { return v.ID }),
	}
}

func get[T any](ctx context.Context, m map[int64]*T, kind record.Kind, id int64) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m[id]
	if !ok {
		return nil, &record.NotFoundError{Kind: kind, ID: id}
	}
	return v, nil
}

func (g *Gateway) Order(ctx context.Context, id int64) (*record.Order, error) {
	return get(ctx, g.orders, record.KindOrder, id)
}

func (g *Gateway) Fulfillment(ctx context.Context, id int64) (*record.Fulfillment, error) {
	return get(ctx, g.fulfillments, record.KindFulfillment, id)
}

func (g *Gateway) Subsidiary(ctx context.Context, id int64) (*record.Subsidiary, error) {
	return get(ctx, g.subsidiaries, record.KindSubsidiary, id)
}

func (g *Gateway) Salesperson(ctx context.Context, id int64) (*record.Salesperson, error) {
	return get(ctx, g.salespeople, record.KindSalesperson, id)
}

func (g *Gateway) Item(ctx context.Context, id int64) (*record.Item, error) {
	return get(ctx, g.items, record.KindItem, id)
}

func (g *Gateway) File(ctx context.Context, id int64) (*record.File, error) {
	return get(ctx, g.files, record.KindFile, id)
}
