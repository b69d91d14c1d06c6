// Package fixture loads ERP record sets from YAML documents.
//
// Field names follow the ERP record field ids so that exported records can be
// pasted in with little editing. Files ending in ".gz" are gunzipped first.
package fixture

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xenking/commercial-invoice/internal/domain/record"
)

// Set is a collection of records.
type Set struct {
	Orders       []*record.Order
	Fulfillments []*record.Fulfillment
	Subsidiaries []*record.Subsidiary
	Salespeople  []*record.Salesperson
	Items        []*record.Item
	Files        []*record.File
}

// Load reads a record set from path.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	set, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return set, nil
}

// Decode reads a YAML record set.
func Decode(r io.Reader) (*Set, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "yaml")
	}

	set := doc.set()
	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Set) validate() error {
	checks := []struct {
		kind record.Kind
		ids  []int64
	}{
		{record.KindOrder, lo.Map(s.Orders, func(o *record.Order, _ int) int64 { return o.ID })},
		{record.KindFulfillment, lo.Map(s.Fulfillments, func(f *record.Fulfillment, _ int) int64 { return f.ID })},
		{record.KindSubsidiary, lo.Map(s.Subsidiaries, func(v *record.Subsidiary, _ int) int64 { return v.ID })},
		{record.KindSalesperson, lo.Map(s.Salespeople, func(v *record.Salesperson, _ int) int64 { return v.ID })},
		{record.KindItem, lo.Map(s.Items, func(v *record.Item, _ int) int64 { return v.ID })},
		{record.KindFile, lo.Map(s.Files, func(v *record.File, _ int) int64 { return v.ID })},
	}
	for _, c := range checks {
		if lo.Contains(c.ids, 0) {
			return errors.Errorf("%s without id", c.kind)
		}
		if dup := lo.FindDuplicates(c.ids); len(dup) > 0 {
			return errors.Errorf("duplicate %s id %d", c.kind, dup[0])
		}
	}
	return nil
}

type document struct {
	Subsidiaries []subsidiary  `yaml:"subsidiaries"`
	Employees    []employee    `yaml:"employees"`
	Items        []item        `yaml:"items"`
	Files        []file        `yaml:"files"`
	Orders       []salesOrder  `yaml:"salesorders"`
	Fulfillments []fulfillment `yaml:"itemfulfillments"`
}

type subsidiary struct {
	ID              int64  `yaml:"id"`
	LegalName       string `yaml:"legalname"`
	MainAddressText string `yaml:"mainaddress_text"`
	AddrPhone       string `yaml:"addrphone"`
	Fax             string `yaml:"fax"`
	Email           string `yaml:"email"`
	URL             string `yaml:"url"`
	FederalIDNumber string `yaml:"federalidnumber"`
	Logo            int64  `yaml:"logo"`
}

type employee struct {
	ID          int64  `yaml:"id"`
	FirstName   string `yaml:"firstname"`
	LastName    string `yaml:"lastname"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	MobilePhone string `yaml:"mobilephone"`
}

type item struct {
	ID                   int64  `yaml:"id"`
	CountryOfManufacture string `yaml:"countryofmanufacture"`
}

type file struct {
	ID  int64  `yaml:"id"`
	URL string `yaml:"url"`
}

type salesOrder struct {
	ID            int64           `yaml:"id"`
	TranID        string          `yaml:"tranid"`
	OtherRefNum   string          `yaml:"otherrefnum"`
	BillAddress   string          `yaml:"billaddress"`
	ShipAddress   string          `yaml:"shipaddress"`
	VATRegNum     string          `yaml:"vatregnum"`
	ShipMethod    string          `yaml:"shipmethod"`
	Terms         string          `yaml:"terms"`
	CurrencyName  string          `yaml:"currencyname"`
	DiscountRate  string          `yaml:"discountrate"`
	DiscountTotal decimal.Decimal `yaml:"discounttotal"`
	ShippingCost  decimal.Decimal `yaml:"shippingcost"`
	Subsidiary    int64           `yaml:"subsidiary"`
	SalesRep      int64           `yaml:"salesrep"`
	Item          []orderLine     `yaml:"item"`
}

type orderLine struct {
	Line     int             `yaml:"line"`
	Item     int64           `yaml:"item"`
	ItemType string          `yaml:"itemtype"`
	Rate     decimal.Decimal `yaml:"rate"`
	Amount   decimal.Decimal `yaml:"amount"`
	Tax1Amt  decimal.Decimal `yaml:"tax1amt"`
	TaxRate1 decimal.Decimal `yaml:"taxrate1"`
	Quantity decimal.Decimal `yaml:"quantity"`
}

type fulfillment struct {
	ID          int64             `yaml:"id"`
	TranID      string            `yaml:"tranid"`
	TranDate    time.Time         `yaml:"trandate"`
	CreatedFrom int64             `yaml:"createdfrom"`
	Item        []fulfillmentLine `yaml:"item"`
	Package     []pkg             `yaml:"package"`
}

type fulfillmentLine struct {
	OrderLine       int              `yaml:"orderline"`
	Item            int64            `yaml:"item"`
	ItemName        string           `yaml:"itemname"`
	ItemDescription string           `yaml:"itemdescription"`
	ItemQuantity    decimal.Decimal  `yaml:"itemquantity"`
	InventoryDetail *inventoryDetail `yaml:"inventorydetail"`
}

type inventoryDetail struct {
	Assignments []assignment `yaml:"inventoryassignment"`
}

type assignment struct {
	IssueInventoryNumber string `yaml:"issueinventorynumber"`
}

type pkg struct {
	PackageWeight         decimal.Decimal `yaml:"packageweight"`
	PackageDescr          string          `yaml:"packagedescr"`
	PackageTrackingNumber string          `yaml:"packagetrackingnumber"`
}

func (d *document) set() *Set {
	return &Set{
		Subsidiaries: lo.Map(d.Subsidiaries, func(s subsidiary, _ int) *record.Subsidiary {
			return &record.Subsidiary{
				ID:              s.ID,
				LegalName:       s.LegalName,
				MainAddressText: s.MainAddressText,
				Phone:           s.AddrPhone,
				Fax:             s.Fax,
				Email:           s.Email,
				URL:             s.URL,
				FederalIDNumber: s.FederalIDNumber,
				LogoFileID:      s.Logo,
			}
		}),
		Salespeople: lo.Map(d.Employees, func(e employee, _ int) *record.Salesperson {
			return &record.Salesperson{
				ID:          e.ID,
				FirstName:   e.FirstName,
				LastName:    e.LastName,
				Email:       e.Email,
				Phone:       e.Phone,
				MobilePhone: e.MobilePhone,
			}
		}),
		Items: lo.Map(d.Items, func(i item, _ int) *record.Item {
			return &record.Item{ID: i.ID, CountryOfManufacture: i.CountryOfManufacture}
		}),
		Files: lo.Map(d.Files, func(f file, _ int) *record.File {
			return &record.File{ID: f.ID, URL: f.URL}
		}),
		Orders:       lo.Map(d.Orders, func(o salesOrder, _ int) *record.Order { return o.record() }),
		Fulfillments: lo.Map(d.Fulfillments, func(f fulfillment, _ int) *record.Fulfillment { return f.record() }),
	}
}

func (o salesOrder) record() *record.Order {
	return &record.Order{
		ID:            o.ID,
		TranID:        o.TranID,
		OtherRefNum:   o.OtherRefNum,
		BillAddress:   o.BillAddress,
		ShipAddress:   o.ShipAddress,
		VATRegNum:     o.VATRegNum,
		ShipMethod:    o.ShipMethod,
		Terms:         o.Terms,
		CurrencyName:  o.CurrencyName,
		DiscountRate:  o.DiscountRate,
		DiscountTotal: o.DiscountTotal,
		ShippingCost:  o.ShippingCost,
		SubsidiaryID:  o.Subsidiary,
		SalesRepID:    o.SalesRep,
		Lines: lo.Map(o.Item, func(l orderLine, _ int) record.OrderLine {
			return record.OrderLine{
				Line:      l.Line,
				ItemID:    l.Item,
				ItemType:  l.ItemType,
				Rate:      l.Rate,
				Amount:    l.Amount,
				TaxAmount: l.Tax1Amt,
				TaxRate:   l.TaxRate1,
				Quantity:  l.Quantity,
			}
		}),
	}
}

func (f fulfillment) record() *record.Fulfillment {
	return &record.Fulfillment{
		ID:          f.ID,
		TranID:      f.TranID,
		TranDate:    f.TranDate,
		CreatedFrom: f.CreatedFrom,
		Lines: lo.Map(f.Item, func(l fulfillmentLine, _ int) record.FulfillmentLine {
			out := record.FulfillmentLine{
				OrderLine:       l.OrderLine,
				ItemID:          l.Item,
				ItemName:        l.ItemName,
				ItemDescription: l.ItemDescription,
				Quantity:        l.ItemQuantity,
			}
			if l.InventoryDetail != nil {
				out.InventoryDetail = &record.InventoryDetail{
					Assignments: lo.Map(l.InventoryDetail.Assignments, func(a assignment, _ int) record.InventoryAssignment {
						return record.InventoryAssignment{IssueInventoryNumber: a.IssueInventoryNumber}
					}),
				}
			}
			return out
		}),
		Packages: lo.Map(f.Package, func(p pkg, _ int) record.Package {
			return record.Package{
				Weight:         p.PackageWeight,
				Description:    p.PackageDescr,
				TrackingNumber: p.PackageTrackingNumber,
			}
		}),
	}
}
