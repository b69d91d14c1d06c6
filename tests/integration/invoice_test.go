//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestInvoiceData(t *testing.T) {
	resp := doGet(t, "/api/commercial-invoice/data?orderId=1&fulfillId=2")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	data := decodeJSON[invoiceData](t, resp)
	if data.SalesOrderNr != "SO-1001" {
		t.Errorf("salesOrderNr: got %q, want %q", data.SalesOrderNr, "SO-1001")
	}
	if data.IFNumber != "IF-2001" {
		t.Errorf("ifNumber: got %q, want %q", data.IFNumber, "IF-2001")
	}
	if data.IFDate != "3/5/2024" {
		t.Errorf("ifDate: got %q, want %q", data.IFDate, "3/5/2024")
	}
	if want := "Northwind Traders<br />Warehouse 2<br />Dublin"; data.ShipAddress != want {
		t.Errorf("shippingAddress: got %q, want %q", data.ShipAddress, want)
	}
	if data.TaxPercent != "10%" {
		t.Errorf("taxPercent: got %q, want %q", data.TaxPercent, "10%")
	}
	if data.Currency != "EUR" {
		t.Errorf("currencyname: got %q, want %q", data.Currency, "EUR")
	}
	if len(data.Packages) != 2 {
		t.Errorf("packages: got %d, want 2", len(data.Packages))
	}
}

func TestInvoiceData_ItemFields(t *testing.T) {
	resp := doGet(t, "/api/commercial-invoice/data?orderId=1&fulfillId=2")
	defer resp.Body.Close()

	data := decodeJSON[invoiceData](t, resp)
	if len(data.ItemFields) != 3 {
		t.Fatalf("itemFields: got %d rows, want 3", len(data.ItemFields))
	}

	wantTypes := []string{"Inventory", "Discount", "Inventory"}
	for i, want := range wantTypes {
		if got := data.ItemFields[i]["itemtype"]; got != want {
			t.Errorf("itemFields[%d].itemtype: got %v, want %q", i, got, want)
		}
	}

	item := data.ItemFields[0]
	if item["serials"] != "A1, B2" {
		t.Errorf("serials: got %v, want %q", item["serials"], "A1, B2")
	}
	if item["soItemTaxUnitAmount"] != 5.0 {
		t.Errorf("soItemTaxUnitAmount: got %v, want 5", item["soItemTaxUnitAmount"])
	}
	if discount := data.ItemFields[1]; discount["soItemTaxUnitAmount"] != -0.25 {
		t.Errorf("discount soItemTaxUnitAmount: got %v, want -0.25", discount["soItemTaxUnitAmount"])
	}
	if _, ok := data.ItemFields[2]["serials"]; ok {
		t.Error("serials present on a line without inventory detail")
	}
}

func TestPrintAction(t *testing.T) {
	resp := doGet(t, "/api/fulfillments/2/print-action")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	action := decodeJSON[printActionResponse](t, resp)
	if want := "/api/commercial-invoice?fulfillId=2&orderId=1"; action.URL != want {
		t.Errorf("url: got %q, want %q", action.URL, want)
	}
	if action.Label == "" {
		t.Error("label is empty")
	}
}

func TestInvoice_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "missing order", path: "/api/commercial-invoice?fulfillId=2", status: http.StatusBadRequest},
		{name: "bad fulfillment", path: "/api/commercial-invoice/data?orderId=1&fulfillId=x", status: http.StatusBadRequest},
		{name: "unknown order", path: "/api/commercial-invoice/data?orderId=404&fulfillId=2", status: http.StatusNotFound},
		{name: "unknown fulfillment", path: "/api/fulfillments/404/print-action", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doGet(t, tt.path)
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			body := decodeJSON[errorResponse](t, resp)
			if body.Code != tt.status || body.Message == "" {
				t.Errorf("unexpected error body %+v", body)
			}
		})
	}
}
