package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
	"github.com/xenking/commercial-invoice/internal/domain/record"
)

type mockInvoices struct {
	doc    *invoice.Document
	vm     *invoice.ViewModel
	action *invoice.PrintAction
	err    error

	orderID, fulfillID int64
}

func (m *mockInvoices) Render(_ context.Context, orderID, fulfillID int64) (*invoice.Document, error) {
	m.orderID, m.fulfillID = orderID, fulfillID
	return m.doc, m.err
}

func (m *mockInvoices) ViewModel(_ context.Context, orderID, fulfillID int64) (*invoice.ViewModel, error) {
	m.orderID, m.fulfillID = orderID, fulfillID
	return m.vm, m.err
}

func (m *mockInvoices) PrintAction(_ context.Context, fulfillID int64) (*invoice.PrintAction, error) {
	m.fulfillID = fulfillID
	return m.action, m.err
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestRenderInvoice(t *testing.T) {
	svc := &mockInvoices{doc: &invoice.Document{Name: invoice.FileName, Content: []byte("%PDF-1.3 test")}}
	w := serve(NewHandler(svc), "/api/commercial-invoice?orderId=11&fulfillId=22")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="Commercial Invoice.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "13", w.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.3 test", w.Body.String())
	assert.Equal(t, int64(11), svc.orderID)
	assert.Equal(t, int64(22), svc.fulfillID)
}

func TestRenderInvoice_BadParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "missing order", target: "/api/commercial-invoice?fulfillId=2", want: "orderId: required"},
		{name: "missing fulfillment", target: "/api/commercial-invoice?orderId=1", want: "fulfillId: required"},
		{name: "not a number", target: "/api/commercial-invoice?orderId=abc&fulfillId=2", want: `orderId: must be a positive integer, got "abc"`},
		{name: "zero", target: "/api/commercial-invoice?orderId=1&fulfillId=0", want: `fulfillId: must be a positive integer, got "0"`},
		{name: "negative", target: "/api/commercial-invoice?orderId=-1&fulfillId=2", want: `orderId: must be a positive integer, got "-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockInvoices{}
			w := serve(NewHandler(svc), tt.target)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, 400, body.Code)
			assert.Equal(t, tt.want, body.Message)
			assert.Zero(t, svc.orderID, "service must not be called")
		})
	}
}

func TestRenderInvoice_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        errors.Wrap(&record.NotFoundError{Kind: record.KindOrder, ID: 1}, "load order"),
			wantStatus: http.StatusNotFound,
			wantMsg:    "sales order 1 not found",
		},
		{
			name:       "lookup",
			err:        errors.Wrap(&invoice.LookupError{Ref: "order line", Key: "7"}, "assemble"),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "lookup order line 7: no match",
		},
		{
			name: "lookup of missing record",
			err: &invoice.LookupError{
				Ref: "item",
				Key: "10",
				Err: &record.NotFoundError{Kind: record.KindItem, ID: 10},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "lookup item 10: item 10 not found",
		},
		{
			name:       "computation",
			err:        errors.Wrap(&invoice.ComputationError{Field: "soItemTaxUnitAmount", Line: 3}, "assemble"),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "compute soItemTaxUnitAmount for order line 3: division by zero quantity",
		},
		{
			name:       "gateway failure during lookup",
			err:        errors.Wrap(errors.Wrap(errors.New("dial tcp 10.0.0.5:5432: connection refused"), "lookup item 7"), "assemble"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal error",
		},
		{
			name:       "canceled during lookup",
			err:        errors.Wrap(errors.Wrap(context.Canceled, "lookup item 7"), "assemble"),
			wantStatus: 499,
			wantMsg:    "request canceled",
		},
		{
			name:       "internal",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(NewHandler(&mockInvoices{err: tt.err}), "/api/commercial-invoice?orderId=1&fulfillId=2")

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestInvoiceData(t *testing.T) {
	svc := &mockInvoices{vm: &invoice.ViewModel{
		SalesOrderNr: "SO-1",
		ItemFields:   []invoice.ItemField{{Type: invoice.RowInventory, ItemName: "W"}},
	}}
	w := serve(NewHandler(svc), "/api/commercial-invoice/data?orderId=1&fulfillId=2")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "SO-1", body["salesOrderNr"])
	items, ok := body["itemFields"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Inventory", items[0].(map[string]any)["itemtype"])
}

func TestInvoiceData_BadParams(t *testing.T) {
	w := serve(NewHandler(&mockInvoices{}), "/api/commercial-invoice/data?orderId=1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrintAction(t *testing.T) {
	svc := &mockInvoices{action: &invoice.PrintAction{
		ID:    "custpage_print_ci",
		Label: "Print Commercial Invoice",
		URL:   "/api/commercial-invoice?fulfillId=2&orderId=1",
	}}
	w := serve(NewHandler(svc), "/api/fulfillments/2/print-action")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"id": "custpage_print_ci",
		"label": "Print Commercial Invoice",
		"url": "/api/commercial-invoice?fulfillId=2&orderId=1"
	}`, w.Body.String())
	assert.Equal(t, int64(2), svc.fulfillID)
}

func TestPrintAction_Errors(t *testing.T) {
	w := serve(NewHandler(&mockInvoices{}), "/api/fulfillments/x/print-action")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc := &mockInvoices{err: &record.NotFoundError{Kind: record.KindFulfillment, ID: 9}}
	w = serve(NewHandler(svc), "/api/fulfillments/9/print-action")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "item fulfillment 9 not found", decodeError(t, w).Message)
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(&mockInvoices{}).Register(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/commercial-invoice?orderId=1&fulfillId=2", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
