// Package record defines the ERP records read by the commercial invoice flow
// and the read-only Gateway that supplies them.
package record

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ItemTypeDiscount marks an order line that discounts the line before it.
const ItemTypeDiscount = "Discount"

// Order is a sales order header with its item sublist.
type Order struct {
	ID            int64
	TranID        string
	OtherRefNum   string
	BillAddress   string
	ShipAddress   string
	VATRegNum     string
	ShipMethod    string
	Terms         string
	CurrencyName  string
	DiscountRate  string
	DiscountTotal decimal.Decimal
	ShippingCost  decimal.Decimal
	SubsidiaryID  int64
	SalesRepID    int64
	Lines         []OrderLine
}

// OrderLine is one row of the order item sublist. Line is the stable line
// identity that fulfillment lines refer back to; it is not the slice index.
type OrderLine struct {
	Line      int
	ItemID    int64
	ItemType  string
	Rate      decimal.Decimal
	Amount    decimal.Decimal
	TaxAmount decimal.Decimal
	TaxRate   decimal.Decimal
	Quantity  decimal.Decimal
}

// IsDiscount reports whether the line is a discount line.
func (l OrderLine) IsDiscount() bool {
	return l.ItemType == ItemTypeDiscount
}

// Fulfillment is an item fulfillment (shipment) created from an order.
type Fulfillment struct {
	ID          int64
	TranID      string
	TranDate    time.Time
	CreatedFrom int64
	Lines       []FulfillmentLine
	Packages    []Package
}

// FulfillmentLine is one shipped line. OrderLine is the back-reference to
// OrderLine.Line on the originating order.
type FulfillmentLine struct {
	OrderLine       int
	ItemID          int64
	ItemName        string
	ItemDescription string
	Quantity        decimal.Decimal
	// InventoryDetail is nil when the line carries no inventory detail.
	InventoryDetail *InventoryDetail
}

// InventoryDetail holds the inventory assignments of a fulfillment line.
type InventoryDetail struct {
	Assignments []InventoryAssignment
}

// InventoryAssignment is a single serial/lot assignment.
type InventoryAssignment struct {
	IssueInventoryNumber string
}

// Package is one shipped package.
type Package struct {
	Weight         decimal.Decimal
	Description    string
	TrackingNumber string
}

// Subsidiary is the legal entity printed in the invoice footer.
type Subsidiary struct {
	ID              int64
	LegalName       string
	MainAddressText string
	Phone           string
	Fax             string
	Email           string
	URL             string
	FederalIDNumber string
	LogoFileID      int64
}

// Salesperson is the employee set as sales rep on the order.
type Salesperson struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	MobilePhone string
}

// Item is the item master data needed on the invoice.
type Item struct {
	ID                   int64
	CountryOfManufacture string
}

// File is a stored file; URL is relative to the application domain.
type File struct {
	ID  int64
	URL string
}

// Kind names a record type in errors and logs.
type Kind string

const (
	KindOrder       Kind = "sales order"
	KindFulfillment Kind = "item fulfillment"
	KindSubsidiary  Kind = "subsidiary"
	KindSalesperson Kind = "employee"
	KindItem        Kind = "item"
	KindFile        Kind = "file"
)

// NotFoundError reports that the gateway has no record of the given kind and id.
type NotFoundError struct {
	Kind Kind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// Gateway provides read access to ERP records by internal id. Implementations
// return *NotFoundError when a record does not exist.
type Gateway interface {
	Order(ctx context.Context, id int64) (*Order, error)
	Fulfillment(ctx context.Context, id int64) (*Fulfillment, error)
	Subsidiary(ctx context.Context, id int64) (*Subsidiary, error)
	Salesperson(ctx context.Context, id int64) (*Salesperson, error)
	Item(ctx context.Context, id int64) (*Item, error)
	File(ctx context.Context, id int64) (*File, error)
}
