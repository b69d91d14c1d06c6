package invoice

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// MarshalJSON encodes the view-model with the field names the invoice
// template binds to.
func (v *ViewModel) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	v.Encode(&e)
	return e.Bytes(), nil
}

// Encode writes the view-model as a JSON object.
func (v *ViewModel) Encode(e *jx.Encoder) {
	e.ObjStart()
	str(e, "name", v.Name)
	str(e, "email", v.Email)
	str(e, "phone", v.Phone)
	str(e, "mobile", v.Mobile)
	str(e, "salesOrderNr", v.SalesOrderNr)
	str(e, "poNo", v.PONo)
	str(e, "todaysDate", v.TodaysDate)
	str(e, "billingAddress", v.BillingAddress)
	str(e, "shippingAddress", v.ShippingAddress)
	str(e, "vatNr", v.VATNr)
	str(e, "shippingMethod", v.ShippingMethod)
	str(e, "termsOfPayment", v.TermsOfPayment)
	str(e, "currencyname", v.CurrencyName)
	str(e, "discountrate", v.DiscountRate)
	num(e, "discounttotal", v.DiscountTotal)
	num(e, "shippingcost", v.ShippingCost)
	str(e, "ifNumber", v.IFNumber)
	str(e, "ifDate", v.IFDate)
	str(e, "taxPercent", v.TaxPercent)

	e.FieldStart("footerInfo")
	v.FooterInfo.Encode(e)

	e.FieldStart("itemFields")
	e.ArrStart()
	for i := range v.ItemFields {
		v.ItemFields[i].Encode(e)
	}
	e.ArrEnd()

	e.FieldStart("packages")
	e.ArrStart()
	for i := range v.Packages {
		v.Packages[i].Encode(e)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// Encode writes the footer block as a JSON object.
func (f *FooterInfo) Encode(e *jx.Encoder) {
	e.ObjStart()
	str(e, "addressFormated", f.AddressFormatted)
	str(e, "legalname", f.LegalName)
	str(e, "phone", f.Phone)
	str(e, "fax", f.Fax)
	str(e, "email", f.Email)
	str(e, "website", f.Website)
	str(e, "vatId", f.VATID)
	str(e, "logoUrl", f.LogoURL)
	e.ObjEnd()
}

// Encode writes the package as a JSON object.
func (p *PackageInfo) Encode(e *jx.Encoder) {
	e.ObjStart()
	num(e, "packageweight", p.Weight)
	str(e, "packagedescr", p.Description)
	str(e, "packagetrackingnumber", p.TrackingNumber)
	e.ObjEnd()
}

// Encode writes the row as a JSON object. Discount rows and item rows carry
// different field sets; serials is omitted when empty.
func (f *ItemField) Encode(e *jx.Encoder) {
	e.ObjStart()
	str(e, "itemtype", string(f.Type))
	if f.IsDiscount() {
		str(e, "itemDescription", f.ItemDescription)
		num(e, "itemQuantity", f.ItemQuantity)
		num(e, "soItemDiscountRate", f.DiscountRate)
		num(e, "soItemAmount", f.Amount)
		num(e, "soItemUnitPrice", f.UnitPrice)
		num(e, "soItemTaxAmount", f.TaxAmount)
		num(e, "soItemTaxUnitAmount", f.TaxUnitAmount)
		e.ObjEnd()
		return
	}

	str(e, "countryofmanufacture", f.CountryOfManufacture)
	str(e, "itemName", f.ItemName)
	str(e, "itemDescription", f.ItemDescription)
	num(e, "itemQuantity", f.ItemQuantity)
	if f.Serials != "" {
		str(e, "serials", f.Serials)
	}
	num(e, "soItemUnitPrice", f.UnitPrice)
	num(e, "soItemTaxAmount", f.TaxAmount)
	num(e, "soItemQuantity", f.Quantity)
	num(e, "soItemTaxUnitAmount", f.TaxUnitAmount)
	e.ObjEnd()
}

func str(e *jx.Encoder, name, v string) {
	e.FieldStart(name)
	e.Str(v)
}

func num(e *jx.Encoder, name string, v decimal.Decimal) {
	e.FieldStart(name)
	e.Num(jx.Num(v.String()))
}
