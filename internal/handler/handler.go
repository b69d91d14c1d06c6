// Package handler exposes the commercial invoice over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
)

// InvoiceService is the part of invoice.Service the handlers use.
type InvoiceService interface {
	Render(ctx context.Context, orderID, fulfillID int64) (*invoice.Document, error)
	ViewModel(ctx context.Context, orderID, fulfillID int64) (*invoice.ViewModel, error)
	PrintAction(ctx context.Context, fulfillID int64) (*invoice.PrintAction, error)
}

var _ InvoiceService = (*invoice.Service)(nil)

// Handler serves the invoice endpoints.
type Handler struct {
	invoices InvoiceService
}

// NewHandler constructs a Handler.
func NewHandler(invoices InvoiceService) *Handler {
	return &Handler{invoices: invoices}
}

// Register adds the invoice routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+invoice.PrintPath, h.RenderInvoice)
	mux.HandleFunc("GET "+invoice.PrintPath+"/data", h.InvoiceData)
	mux.HandleFunc("GET /api/fulfillments/{fulfillId}/print-action", h.PrintAction)
}
