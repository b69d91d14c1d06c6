package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
)

// RenderInvoice streams the commercial invoice PDF inline.
func (h *Handler) RenderInvoice(w http.ResponseWriter, r *http.Request) {
	orderID, fulfillID, err := pairParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	doc, err := h.invoices.Render(r.Context(), orderID, fulfillID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": doc.Name,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}

// InvoiceData returns the assembled view-model as JSON.
func (h *Handler) InvoiceData(w http.ResponseWriter, r *http.Request) {
	orderID, fulfillID, err := pairParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	vm, err := h.invoices.ViewModel(r.Context(), orderID, fulfillID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var e jx.Encoder
	vm.Encode(&e)
	writeJSON(w, e.Bytes())
}

// PrintAction describes the print button of a fulfillment.
func (h *Handler) PrintAction(w http.ResponseWriter, r *http.Request) {
	fulfillID, err := positiveID("fulfillId", r.PathValue("fulfillId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	action, err := h.invoices.PrintAction(r.Context(), fulfillID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(action.ID)
	e.FieldStart("label")
	e.Str(action.Label)
	e.FieldStart("url")
	e.Str(action.URL)
	e.ObjEnd()
	writeJSON(w, e.Bytes())
}

func writeJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ParamError is an invalid or missing request parameter.
type ParamError struct {
	Name  string
	Value string
}

func (e *ParamError) Error() string {
	if e.Value == "" {
		return e.Name + ": required"
	}
	return e.Name + ": must be a positive integer, got " + strconv.Quote(e.Value)
}

func pairParams(r *http.Request) (orderID, fulfillID int64, err error) {
	q := r.URL.Query()
	orderID, err = positiveID("orderId", q.Get("orderId"))
	if err != nil {
		return 0, 0, err
	}
	fulfillID, err = positiveID("fulfillId", q.Get("fulfillId"))
	if err != nil {
		return 0, 0, err
	}
	return orderID, fulfillID, nil
}

func positiveID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ParamError{Name: name, Value: raw}
	}
	return id, nil
}
