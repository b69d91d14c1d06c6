package invoice

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/xenking/commercial-invoice/internal/domain/record"
)

// Lookup resolves the records the assembler references by id while building
// the view-model. record.Gateway satisfies it.
type Lookup interface {
	Item(ctx context.Context, id int64) (*record.Item, error)
	File(ctx context.Context, id int64) (*record.File, error)
}

// AssemblerConfig holds the host context the assembler would otherwise read
// from ambient state.
type AssemblerConfig struct {
	// Domain is the application host name logo URLs are resolved against.
	Domain string
	// Dates controls how todaysDate and ifDate are printed.
	Dates DateFormat
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Assembler turns loaded records into a commercial invoice view-model.
type Assembler struct {
	lookup Lookup
	domain string
	dates  DateFormat
	now    func() time.Time
}

// NewAssembler creates an Assembler that resolves items and files via lookup.
func NewAssembler(lookup Lookup, cfg AssemblerConfig) *Assembler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Dates.Layout == "" {
		cfg.Dates.Layout = DefaultDateFormat.Layout
	}
	return &Assembler{
		lookup: lookup,
		domain: cfg.Domain,
		dates:  cfg.Dates,
		now:    cfg.Now,
	}
}

// Assemble builds the view-model for one order/fulfillment pair. It either
// returns a complete view-model or an error; partial results are never
// returned.
func (a *Assembler) Assemble(
	ctx context.Context,
	order *record.Order,
	fulfillment *record.Fulfillment,
	subsidiary *record.Subsidiary,
	salesperson *record.Salesperson,
) (*ViewModel, error) {
	vm, err := a.header(order, fulfillment, salesperson)
	if err != nil {
		return nil, err
	}

	footer, err := a.footer(ctx, subsidiary)
	if err != nil {
		return nil, err
	}
	vm.FooterInfo = footer

	vm.Packages = packages(fulfillment)

	rows, err := a.itemFields(ctx, order, fulfillment)
	if err != nil {
		return nil, err
	}
	vm.ItemFields = rows

	return vm, nil
}

func (a *Assembler) header(order *record.Order, f *record.Fulfillment, sp *record.Salesperson) (*ViewModel, error) {
	// The tax rate of the first line stands for the whole order.
	if len(order.Lines) == 0 {
		return nil, &LookupError{Ref: "order line", Key: "0"}
	}

	return &ViewModel{
		Name:            sp.FirstName + " " + sp.LastName,
		Email:           sp.Email,
		Phone:           sp.Phone,
		Mobile:          sp.MobilePhone,
		SalesOrderNr:    order.TranID,
		PONo:            order.OtherRefNum,
		TodaysDate:      a.dates.Today(a.now()),
		BillingAddress:  NormalizeLineBreaks(order.BillAddress, HeaderLineBreak),
		ShippingAddress: NormalizeLineBreaks(order.ShipAddress, HeaderLineBreak),
		VATNr:           order.VATRegNum,
		ShippingMethod:  order.ShipMethod,
		TermsOfPayment:  order.Terms,
		CurrencyName:    order.CurrencyName,
		DiscountRate:    order.DiscountRate,
		DiscountTotal:   order.DiscountTotal,
		ShippingCost:    order.ShippingCost,
		IFNumber:        f.TranID,
		IFDate:          a.dates.Format(f.TranDate),
		TaxPercent:      TaxPercent(order.Lines[0].TaxRate),
	}, nil
}

func (a *Assembler) footer(ctx context.Context, s *record.Subsidiary) (FooterInfo, error) {
	logo, err := a.logoURL(ctx, s.LogoFileID)
	if err != nil {
		return FooterInfo{}, err
	}

	return FooterInfo{
		AddressFormatted: NormalizeLineBreaks(s.MainAddressText, FooterLineBreak),
		LegalName:        s.LegalName,
		Phone:            s.Phone,
		Fax:              s.Fax,
		Email:            s.Email,
		Website:          s.URL,
		VATID:            s.FederalIDNumber,
		LogoURL:          logo,
	}, nil
}

func (a *Assembler) logoURL(ctx context.Context, fileID int64) (string, error) {
	key := strconv.FormatInt(fileID, 10)
	if fileID == 0 {
		return "", &LookupError{Ref: "logo file", Key: key}
	}

	file, err := a.lookup.File(ctx, fileID)
	if err != nil {
		return "", lookupFailed("logo file", key, err)
	}
	return LogoURL(a.domain, file.URL), nil
}

// lookupFailed reports a missing referenced record as a LookupError. Other
// gateway failures are not data problems and are only wrapped.
func lookupFailed(ref, key string, err error) error {
	var nfErr *record.NotFoundError
	if errors.As(err, &nfErr) {
		return &LookupError{Ref: ref, Key: key, Err: err}
	}
	return errors.Wrapf(err, "lookup %s %s", ref, key)
}

func packages(f *record.Fulfillment) []PackageInfo {
	out := make([]PackageInfo, len(f.Packages))
	for i, p := range f.Packages {
		out[i] = PackageInfo{
			Weight:         p.Weight,
			Description:    p.Description,
			TrackingNumber: p.TrackingNumber,
		}
	}
	return out
}

func (a *Assembler) itemFields(ctx context.Context, order *record.Order, f *record.Fulfillment) ([]ItemField, error) {
	rows := make([]ItemField, 0, len(f.Lines))

	for _, fl := range f.Lines {
		idx := matchOrderLine(order.Lines, fl.OrderLine)
		if idx < 0 {
			return nil, &LookupError{Ref: "order line", Key: strconv.Itoa(fl.OrderLine)}
		}
		ol := order.Lines[idx]

		item, err := a.lookup.Item(ctx, fl.ItemID)
		if err != nil {
			return nil, lookupFailed("item", strconv.FormatInt(fl.ItemID, 10), err)
		}

		taxUnit, err := perUnit(ol.TaxAmount, ol.Quantity, "soItemTaxUnitAmount", ol.Line)
		if err != nil {
			return nil, err
		}

		rows = append(rows, ItemField{
			Type:                 RowInventory,
			CountryOfManufacture: item.CountryOfManufacture,
			ItemName:             fl.ItemName,
			ItemDescription:      fl.ItemDescription,
			ItemQuantity:         fl.Quantity,
			Serials:              serials(fl.InventoryDetail),
			UnitPrice:            ol.Rate,
			TaxAmount:            ol.TaxAmount,
			Quantity:             ol.Quantity,
			TaxUnitAmount:        taxUnit,
		})

		// Discounts are positional: only the line directly after the matched
		// one can discount it.
		next := idx + 1
		if next >= len(order.Lines) || !order.Lines[next].IsDiscount() {
			continue
		}
		dl := order.Lines[next]

		// The divisor is the discounted item's quantity, not the discount
		// line's own.
		discountTaxUnit, err := perUnit(dl.TaxAmount, ol.Quantity, "soItemTaxUnitAmount", dl.Line)
		if err != nil {
			return nil, err
		}

		rows = append(rows, ItemField{
			Type:            RowDiscount,
			ItemDescription: string(RowDiscount),
			ItemQuantity:    decimal.NewFromInt(1),
			DiscountRate:    dl.Rate,
			Amount:          dl.Amount,
			UnitPrice:       dl.Rate,
			TaxAmount:       dl.TaxAmount,
			TaxUnitAmount:   discountTaxUnit,
		})
	}

	return rows, nil
}

// matchOrderLine returns the index of the first order line whose Line equals
// ref, or -1.
func matchOrderLine(lines []record.OrderLine, ref int) int {
	for i, l := range lines {
		if l.Line == ref {
			return i
		}
	}
	return -1
}

func perUnit(total, qty decimal.Decimal, field string, line int) (decimal.Decimal, error) {
	if qty.IsZero() {
		return decimal.Zero, &ComputationError{Field: field, Line: line}
	}
	return total.Div(qty), nil
}

// serials joins the non-empty serial numbers of an inventory detail.
func serials(detail *record.InventoryDetail) string {
	if detail == nil {
		return ""
	}
	numbers := lo.FilterMap(detail.Assignments, func(a record.InventoryAssignment, _ int) (string, bool) {
		return a.IssueInventoryNumber, a.IssueInventoryNumber != ""
	})
	return strings.Join(numbers, ", ")
}
