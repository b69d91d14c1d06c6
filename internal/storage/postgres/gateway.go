package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/commercial-invoice/internal/domain/record"
)

const (
	getOrderSQL = `SELECT id, tran_id, other_ref_num, bill_address, ship_address, vat_reg_num,
		ship_method, terms, currency_name, discount_rate, discount_total, shipping_cost,
		subsidiary_id, sales_rep_id
		FROM sales_orders WHERE id = $1`

	listOrderLinesSQL = `SELECT line, item_id, item_type, rate, amount, tax_amount, tax_rate, quantity
		FROM sales_order_lines WHERE order_id = $1 ORDER BY position`

	getFulfillmentSQL = `SELECT id, tran_id, tran_date, created_from
		FROM item_fulfillments WHERE id = $1`

	listFulfillmentLinesSQL = `SELECT position, order_line, item_id, item_name, item_description,
		quantity, has_inventory_detail
		FROM item_fulfillment_lines WHERE fulfillment_id = $1 ORDER BY position`

	listInventoryAssignmentsSQL = `SELECT line_position, issue_inventory_number
		FROM inventory_assignments WHERE fulfillment_id = $1 ORDER BY line_position, position`

	listPackagesSQL = `SELECT weight, description, tracking_number
		FROM fulfillment_packages WHERE fulfillment_id = $1 ORDER BY position`

	getSubsidiarySQL = `SELECT id, legal_name, main_address_text, phone, fax, email, url,
		federal_id_number, logo_file_id
		FROM subsidiaries WHERE id = $1`

	getEmployeeSQL = `SELECT id, first_name, last_name, email, phone, mobile_phone
		FROM employees WHERE id = $1`

	getItemSQL = `SELECT id, country_of_manufacture FROM items WHERE id = $1`

	getFileSQL = `SELECT id, url FROM files WHERE id = $1`
)

var _ record.Gateway = (*Gateway)(nil)

// Gateway implements record.Gateway backed by PostgreSQL.
type Gateway struct {
	pool *pgxpool.Pool
}

// NewGateway returns a Gateway that uses the given pool.
func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

// getOne runs a single-row query and maps pgx.ErrNoRows to a NotFoundError.
func getOne[T any](ctx context.Context, pool *pgxpool.Pool, kind record.Kind, id int64, sql string, scan pgx.RowToFunc[T]) (*T, error) {
	rows, err := pool.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", kind, id, err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &record.NotFoundError{Kind: kind, ID: id}
		}
		return nil, fmt.Errorf("getting %s %d: %w", kind, id, err)
	}
	return &v, nil
}

// Order returns a sales order with its lines in sublist order.
func (g *Gateway) Order(ctx context.Context, id int64) (*record.Order, error) {
	o, err := getOne(ctx, g.pool, record.KindOrder, id, getOrderSQL, scanOrder)
	if err != nil {
		return nil, err
	}

	rows, err := g.pool.Query(ctx, listOrderLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing lines of order %d: %w", id, err)
	}
	o.Lines, err = pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return nil, fmt.Errorf("listing lines of order %d: %w", id, err)
	}
	return o, nil
}

// Fulfillment returns an item fulfillment with its lines, inventory detail
// and packages. The sublists are fetched in one batch.
func (g *Gateway) Fulfillment(ctx context.Context, id int64) (*record.Fulfillment, error) {
	f, err := getOne(ctx, g.pool, record.KindFulfillment, id, getFulfillmentSQL, scanFulfillment)
	if err != nil {
		return nil, err
	}

	b := &pgx.Batch{}
	b.Queue(listFulfillmentLinesSQL, id)
	b.Queue(listInventoryAssignmentsSQL, id)
	b.Queue(listPackagesSQL, id)

	br := g.pool.SendBatch(ctx, b)
	defer func() { _ = br.Close() }()

	lines, err := collect(br, scanFulfillmentLine)
	if err != nil {
		return nil, fmt.Errorf("listing lines of fulfillment %d: %w", id, err)
	}
	assignments, err := collect(br, scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("listing inventory detail of fulfillment %d: %w", id, err)
	}
	f.Packages, err = collect(br, scanPackage)
	if err != nil {
		return nil, fmt.Errorf("listing packages of fulfillment %d: %w", id, err)
	}

	byPosition := make(map[int]int, len(lines))
	f.Lines = make([]record.FulfillmentLine, len(lines))
	for i, l := range lines {
		byPosition[l.position] = i
		f.Lines[i] = l.FulfillmentLine
	}
	for _, a := range assignments {
		i, ok := byPosition[a.linePosition]
		if !ok || f.Lines[i].InventoryDetail == nil {
			continue
		}
		detail := f.Lines[i].InventoryDetail
		detail.Assignments = append(detail.Assignments, a.InventoryAssignment)
	}

	return f, nil
}

func collect[T any](br pgx.BatchResults, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := br.Query()
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

func (g *Gateway) Subsidiary(ctx context.Context, id int64) (*record.Subsidiary, error) {
	return getOne(ctx, g.pool, record.KindSubsidiary, id, getSubsidiarySQL, scanSubsidiary)
}

func (g *Gateway) Salesperson(ctx context.Context, id int64) (*record.Salesperson, error) {
	return getOne(ctx, g.pool, record.KindSalesperson, id, getEmployeeSQL, scanSalesperson)
}

func (g *Gateway) Item(ctx context.Context, id int64) (*record.Item, error) {
	return getOne(ctx, g.pool, record.KindItem, id, getItemSQL, scanItem)
}

func (g *Gateway) File(ctx context.Context, id int64) (*record.File, error) {
	return getOne(ctx, g.pool, record.KindFile, id, getFileSQL, scanFile)
}

func scanOrder(row pgx.CollectableRow) (record.Order, error) {
	var o record.Order
	err := row.Scan(
		&o.ID, &o.TranID, &o.OtherRefNum, &o.BillAddress, &o.ShipAddress, &o.VATRegNum,
		&o.ShipMethod, &o.Terms, &o.CurrencyName, &o.DiscountRate, &o.DiscountTotal, &o.ShippingCost,
		&o.SubsidiaryID, &o.SalesRepID,
	)
	return o, err
}

func scanOrderLine(row pgx.CollectableRow) (record.OrderLine, error) {
	var (
		l    record.OrderLine
		line int32
	)
	err := row.Scan(&line, &l.ItemID, &l.ItemType, &l.Rate, &l.Amount, &l.TaxAmount, &l.TaxRate, &l.Quantity)
	l.Line = int(line)
	return l, err
}

func scanFulfillment(row pgx.CollectableRow) (record.Fulfillment, error) {
	var f record.Fulfillment
	err := row.Scan(&f.ID, &f.TranID, &f.TranDate, &f.CreatedFrom)
	return f, err
}

type fulfillmentLineRow struct {
	record.FulfillmentLine
	position int
}

func scanFulfillmentLine(row pgx.CollectableRow) (fulfillmentLineRow, error) {
	var (
		l                  fulfillmentLineRow
		position, line     int32
		hasInventoryDetail bool
	)
	err := row.Scan(&position, &line, &l.ItemID, &l.ItemName, &l.ItemDescription, &l.Quantity, &hasInventoryDetail)
	l.position = int(position)
	l.OrderLine = int(line)
	if hasInventoryDetail {
		l.InventoryDetail = &record.InventoryDetail{}
	}
	return l, err
}

type assignmentRow struct {
	record.InventoryAssignment
	linePosition int
}

func scanAssignment(row pgx.CollectableRow) (assignmentRow, error) {
	var (
		a            assignmentRow
		linePosition int32
	)
	err := row.Scan(&linePosition, &a.IssueInventoryNumber)
	a.linePosition = int(linePosition)
	return a, err
}

func scanPackage(row pgx.CollectableRow) (record.Package, error) {
	var p record.Package
	err := row.Scan(&p.Weight, &p.Description, &p.TrackingNumber)
	return p, err
}

func scanSubsidiary(row pgx.CollectableRow) (record.Subsidiary, error) {
	var s record.Subsidiary
	err := row.Scan(
		&s.ID, &s.LegalName, &s.MainAddressText, &s.Phone, &s.Fax, &s.Email, &s.URL,
		&s.FederalIDNumber, &s.LogoFileID,
	)
	return s, err
}

func scanSalesperson(row pgx.CollectableRow) (record.Salesperson, error) {
	var s record.Salesperson
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.MobilePhone)
	return s, err
}

func scanItem(row pgx.CollectableRow) (record.Item, error) {
	var i record.Item
	err := row.Scan(&i.ID, &i.CountryOfManufacture)
	return i, err
}

func scanFile(row pgx.CollectableRow) (record.File, error) {
	var f record.File
	err := row.Scan(&f.ID, &f.URL)
	return f, err
}
