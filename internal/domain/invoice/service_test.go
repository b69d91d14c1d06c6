package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/commercial-invoice/internal/domain/record"
)

type mockGateway struct {
	*mockLookup
	orders       map[int64]*record.Order
	fulfillments map[int64]*record.Fulfillment
	subsidiaries map[int64]*record.Subsidiary
	salespeople  map[int64]*record.Salesperson
}

func (m *mockGateway) Order(_ context.Context, id int64) (*record.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, &record.NotFoundError{Kind: record.KindOrder, ID: id}
}

func (m *mockGateway) Fulfillment(_ context.Context, id int64) (*record.Fulfillment, error) {
	if f, ok := m.fulfillments[id]; ok {
		return f, nil
	}
	return nil, &record.NotFoundError{Kind: record.KindFulfillment, ID: id}
}

func (m *mockGateway) Subsidiary(_ context.Context, id int64) (*record.Subsidiary, error) {
	if s, ok := m.subsidiaries[id]; ok {
		return s, nil
	}
	return nil, &record.NotFoundError{Kind: record.KindSubsidiary, ID: id}
}

func (m *mockGateway) Salesperson(_ context.Context, id int64) (*record.Salesperson, error) {
	if s, ok := m.salespeople[id]; ok {
		return s, nil
	}
	return nil, &record.NotFoundError{Kind: record.KindSalesperson, ID: id}
}

type mockRenderer struct {
	last *ViewModel
	out  []byte
	err  error
}

func (m *mockRenderer) Render(_ context.Context, vm *ViewModel) ([]byte, error) {
	m.last = vm
	return m.out, m.err
}

func newGateway(f *fixture) *mockGateway {
	return &mockGateway{
		mockLookup:   f.lookup,
		orders:       map[int64]*record.Order{f.order.ID: f.order},
		fulfillments: map[int64]*record.Fulfillment{f.fulfillment.ID: f.fulfillment},
		subsidiaries: map[int64]*record.Subsidiary{f.subsidiary.ID: f.subsidiary},
		salespeople:  map[int64]*record.Salesperson{f.salesperson.ID: f.salesperson},
	}
}

func newTestService(t *testing.T, gw record.Gateway, r Renderer, baseURL string) *Service {
	t.Helper()
	a := NewAssembler(gw, AssemblerConfig{
		Domain: "app.example.com",
		Now:    func() time.Time { return testNow },
	})
	svc, err := NewService(ServiceConfig{
		BaseURL:        baseURL,
		TracerProvider: tracenoop.NewTracerProvider(),
		MeterProvider:  metricnoop.NewMeterProvider(),
	}, gw, a, r)
	require.NoError(t, err)
	return svc
}

func TestServiceRender(t *testing.T) {
	r := &mockRenderer{out: []byte("%PDF-1.3")}
	svc := newTestService(t, newGateway(newFixture()), r, "")

	doc, err := svc.Render(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, "Commercial Invoice.pdf", doc.Name)
	assert.Equal(t, []byte("%PDF-1.3"), doc.Content)
	require.NotNil(t, r.last)
	assert.Equal(t, "SO-1001", r.last.SalesOrderNr)
	assert.Equal(t, "IF-2001", r.last.IFNumber)
}

func TestServiceRender_NotFound(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(gw *mockGateway)
		orderID  int64
		fulfill  int64
		wantKind record.Kind
	}{
		{name: "order", orderID: 99, fulfill: 2, wantKind: record.KindOrder},
		{name: "fulfillment", orderID: 1, fulfill: 99, wantKind: record.KindFulfillment},
		{
			name:     "subsidiary",
			mutate:   func(gw *mockGateway) { gw.subsidiaries = nil },
			orderID:  1,
			fulfill:  2,
			wantKind: record.KindSubsidiary,
		},
		{
			name:     "salesperson",
			mutate:   func(gw *mockGateway) { gw.salespeople = nil },
			orderID:  1,
			fulfill:  2,
			wantKind: record.KindSalesperson,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newGateway(newFixture())
			if tt.mutate != nil {
				tt.mutate(gw)
			}
			r := &mockRenderer{}
			svc := newTestService(t, gw, r, "")

			doc, err := svc.Render(context.Background(), tt.orderID, tt.fulfill)
			assert.Nil(t, doc)

			var nfErr *record.NotFoundError
			require.ErrorAs(t, err, &nfErr)
			assert.Equal(t, tt.wantKind, nfErr.Kind)
			assert.Nil(t, r.last, "renderer must not run")
		})
	}
}

func TestServiceRender_AssemblyError(t *testing.T) {
	f := newFixture()
	f.fulfillment.Lines[0].OrderLine = 7
	r := &mockRenderer{}
	svc := newTestService(t, newGateway(f), r, "")

	_, err := svc.Render(context.Background(), 1, 2)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Nil(t, r.last)
}

func TestServiceRender_RendererError(t *testing.T) {
	r := &mockRenderer{err: errors.New("template broken")}
	svc := newTestService(t, newGateway(newFixture()), r, "")

	_, err := svc.Render(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render")
	assert.Contains(t, err.Error(), "template broken")
}

func TestServiceViewModel(t *testing.T) {
	svc := newTestService(t, newGateway(newFixture()), &mockRenderer{}, "")

	vm, err := svc.ViewModel(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, vm.ItemFields, 2)
	assert.Len(t, vm.Packages, 1)
}

func TestServicePrintAction(t *testing.T) {
	t.Run("relative", func(t *testing.T) {
		svc := newTestService(t, newGateway(newFixture()), &mockRenderer{}, "")

		action, err := svc.PrintAction(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "custpage_print_ci", action.ID)
		assert.Equal(t, "Print Commercial Invoice", action.Label)
		assert.Equal(t, "/api/commercial-invoice?fulfillId=2&orderId=1", action.URL)
	})

	t.Run("absolute", func(t *testing.T) {
		svc := newTestService(t, newGateway(newFixture()), &mockRenderer{}, "https://invoices.example.com")

		action, err := svc.PrintAction(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "https://invoices.example.com/api/commercial-invoice?fulfillId=2&orderId=1", action.URL)
	})

	t.Run("unknown fulfillment", func(t *testing.T) {
		svc := newTestService(t, newGateway(newFixture()), &mockRenderer{}, "")

		_, err := svc.PrintAction(context.Background(), 404)
		var nfErr *record.NotFoundError
		require.ErrorAs(t, err, &nfErr)
	})
}
