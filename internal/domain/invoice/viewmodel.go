package invoice

import "github.com/shopspring/decimal"

// RowType tags an itemFields entry.
type RowType string

const (
	// RowInventory is the tag of every fulfilled item row.
	RowInventory RowType = "Inventory"
	// RowDiscount is the tag of a synthesized discount row.
	RowDiscount RowType = "Discount"
)

// ViewModel is the flat, render-ready commercial invoice.
type ViewModel struct {
	Name            string
	Email           string
	Phone           string
	Mobile          string
	SalesOrderNr    string
	PONo            string
	TodaysDate      string
	BillingAddress  string
	ShippingAddress string
	VATNr           string
	ShippingMethod  string
	TermsOfPayment  string
	CurrencyName    string
	DiscountRate    string
	DiscountTotal   decimal.Decimal
	ShippingCost    decimal.Decimal
	IFNumber        string
	IFDate          string
	TaxPercent      string
	FooterInfo      FooterInfo
	ItemFields      []ItemField
	Packages        []PackageInfo
}

// FooterInfo is the subsidiary branding block.
type FooterInfo struct {
	AddressFormatted string
	LegalName        string
	Phone            string
	Fax              string
	Email            string
	Website          string
	VATID            string
	LogoURL          string
}

// PackageInfo is one shipped package.
type PackageInfo struct {
	Weight         decimal.Decimal
	Description    string
	TrackingNumber string
}

// ItemField is either an inventory row or a discount row, see Type.
//
// Inventory rows use CountryOfManufacture, ItemName, Serials and Quantity.
// Discount rows leave the item attributes empty and carry DiscountRate and
// Amount; their UnitPrice mirrors the rate.
type ItemField struct {
	Type                 RowType
	CountryOfManufacture string
	ItemName             string
	ItemDescription      string
	ItemQuantity         decimal.Decimal
	Serials              string

	UnitPrice     decimal.Decimal
	TaxAmount     decimal.Decimal
	Quantity      decimal.Decimal
	TaxUnitAmount decimal.Decimal

	DiscountRate decimal.Decimal
	Amount       decimal.Decimal
}

// IsDiscount reports whether the row is a synthesized discount row.
func (f ItemField) IsDiscount() bool {
	return f.Type == RowDiscount
}
