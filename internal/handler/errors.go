package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
	"github.com/xenking/commercial-invoice/internal/domain/record"
	"github.com/xenking/commercial-invoice/pkg/httpmiddleware"
)

// statusOf maps domain errors to an HTTP status and a client-safe message.
func statusOf(err error) (int, string) {
	var paramErr *ParamError
	if errors.As(err, &paramErr) {
		return http.StatusBadRequest, paramErr.Error()
	}

	// A cross-reference that cannot be resolved is a data problem of the
	// requested pair even when the referenced record is missing.
	var lookupErr *invoice.LookupError
	if errors.As(err, &lookupErr) {
		return http.StatusUnprocessableEntity, lookupErr.Error()
	}

	var nfErr *record.NotFoundError
	if errors.As(err, &nfErr) {
		return http.StatusNotFound, nfErr.Error()
	}

	var compErr *invoice.ComputationError
	if errors.As(err, &compErr) {
		return http.StatusUnprocessableEntity, compErr.Error()
	}

	if errors.Is(err, context.Canceled) {
		return 499, "request canceled"
	}

	return http.StatusInternalServerError, "internal error"
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)

	lg := zctx.From(r.Context())
	if status >= http.StatusInternalServerError {
		lg.Error("Request failed", zap.Error(err))
	} else {
		lg.Info("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	httpmiddleware.WriteError(w, status, msg)
}
