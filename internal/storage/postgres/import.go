package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/commercial-invoice/internal/domain/record"
	"github.com/xenking/commercial-invoice/internal/storage/fixture"
)

const (
	upsertFileSQL = `INSERT INTO files (id, url) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET url = EXCLUDED.url`

	upsertSubsidiarySQL = `INSERT INTO subsidiaries (id, legal_name, main_address_text, phone, fax, email, url,
		federal_id_number, logo_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET legal_name = EXCLUDED.legal_name,
		main_address_text = EXCLUDED.main_address_text, phone = EXCLUDED.phone, fax = EXCLUDED.fax,
		email = EXCLUDED.email, url = EXCLUDED.url, federal_id_number = EXCLUDED.federal_id_number,
		logo_file_id = EXCLUDED.logo_file_id`

	upsertEmployeeSQL = `INSERT INTO employees (id, first_name, last_name, email, phone, mobile_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
		email = EXCLUDED.email, phone = EXCLUDED.phone, mobile_phone = EXCLUDED.mobile_phone`

	upsertItemSQL = `INSERT INTO items (id, country_of_manufacture) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET country_of_manufacture = EXCLUDED.country_of_manufacture`

	upsertOrderSQL = `INSERT INTO sales_orders (id, tran_id, other_ref_num, bill_address, ship_address,
		vat_reg_num, ship_method, terms, currency_name, discount_rate, discount_total, shipping_cost,
		subsidiary_id, sales_rep_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET tran_id = EXCLUDED.tran_id, other_ref_num = EXCLUDED.other_ref_num,
		bill_address = EXCLUDED.bill_address, ship_address = EXCLUDED.ship_address,
		vat_reg_num = EXCLUDED.vat_reg_num, ship_method = EXCLUDED.ship_method, terms = EXCLUDED.terms,
		currency_name = EXCLUDED.currency_name, discount_rate = EXCLUDED.discount_rate,
		discount_total = EXCLUDED.discount_total, shipping_cost = EXCLUDED.shipping_cost,
		subsidiary_id = EXCLUDED.subsidiary_id, sales_rep_id = EXCLUDED.sales_rep_id`

	deleteOrderLinesSQL = `DELETE FROM sales_order_lines WHERE order_id = $1`

	insertOrderLineSQL = `INSERT INTO sales_order_lines (order_id, position, line, item_id, item_type,
		rate, amount, tax_amount, tax_rate, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	upsertFulfillmentSQL = `INSERT INTO item_fulfillments (id, tran_id, tran_date, created_from)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET tran_id = EXCLUDED.tran_id, tran_date = EXCLUDED.tran_date,
		created_from = EXCLUDED.created_from`

	// Assignments cascade from their line.
	deleteFulfillmentLinesSQL = `DELETE FROM item_fulfillment_lines WHERE fulfillment_id = $1`

	deletePackagesSQL = `DELETE FROM fulfillment_packages WHERE fulfillment_id = $1`

	insertFulfillmentLineSQL = `INSERT INTO item_fulfillment_lines (fulfillment_id, position, order_line,
		item_id, item_name, item_description, quantity, has_inventory_detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertAssignmentSQL = `INSERT INTO inventory_assignments (fulfillment_id, line_position, position,
		issue_inventory_number)
		VALUES ($1, $2, $3, $4)`

	insertPackageSQL = `INSERT INTO fulfillment_packages (fulfillment_id, position, weight, description,
		tracking_number)
		VALUES ($1, $2, $3, $4, $5)`
)

// Import upserts every record of set in one transaction. Sublists of orders
// and fulfillments are replaced, not merged.
func (g *Gateway) Import(ctx context.Context, set *fixture.Set) error {
	err := pgx.BeginFunc(ctx, g.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, f := range set.Files {
			b.Queue(upsertFileSQL, f.ID, f.URL)
		}
		for _, s := range set.Subsidiaries {
			b.Queue(upsertSubsidiarySQL, s.ID, s.LegalName, s.MainAddressText, s.Phone, s.Fax,
				s.Email, s.URL, s.FederalIDNumber, s.LogoFileID)
		}
		for _, s := range set.Salespeople {
			b.Queue(upsertEmployeeSQL, s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.MobilePhone)
		}
		for _, i := range set.Items {
			b.Queue(upsertItemSQL, i.ID, i.CountryOfManufacture)
		}
		for _, o := range set.Orders {
			queueOrder(b, o)
		}
		for _, f := range set.Fulfillments {
			queueFulfillment(b, f)
		}
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		return fmt.Errorf("importing records: %w", err)
	}
	return nil
}

func queueOrder(b *pgx.Batch, o *record.Order) {
	b.Queue(upsertOrderSQL, o.ID, o.TranID, o.OtherRefNum, o.BillAddress, o.ShipAddress,
		o.VATRegNum, o.ShipMethod, o.Terms, o.CurrencyName, o.DiscountRate, o.DiscountTotal,
		o.ShippingCost, o.SubsidiaryID, o.SalesRepID)
	b.Queue(deleteOrderLinesSQL, o.ID)
	for pos, l := range o.Lines {
		b.Queue(insertOrderLineSQL, o.ID, pos, l.Line, l.ItemID, l.ItemType,
			l.Rate, l.Amount, l.TaxAmount, l.TaxRate, l.Quantity)
	}
}

func queueFulfillment(b *pgx.Batch, f *record.Fulfillment) {
	b.Queue(upsertFulfillmentSQL, f.ID, f.TranID, f.TranDate, f.CreatedFrom)
	b.Queue(deleteFulfillmentLinesSQL, f.ID)
	b.Queue(deletePackagesSQL, f.ID)
	for pos, l := range f.Lines {
		b.Queue(insertFulfillmentLineSQL, f.ID, pos, l.OrderLine, l.ItemID, l.ItemName,
			l.ItemDescription, l.Quantity, l.InventoryDetail != nil)
		if l.InventoryDetail == nil {
			continue
		}
		for apos, a := range l.InventoryDetail.Assignments {
			b.Queue(insertAssignmentSQL, f.ID, pos, apos, a.IssueInventoryNumber)
		}
	}
	for pos, p := range f.Packages {
		b.Queue(insertPackageSQL, f.ID, pos, p.Weight, p.Description, p.TrackingNumber)
	}
}
