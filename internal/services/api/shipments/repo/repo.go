// Package repo provides postgres access for shipments and boxes
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shipscan/internal/core/labels"
	"shipscan/internal/modkit/repokit"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/platform/store"
	"shipscan/internal/services/api/shipments/domain"
)

// Repo defines the repository contract for shipments
type Repo interface {
	CreateShipment(ctx context.Context, warehouse, date string) (domain.CreatedShipment, error)
	GetShipment(ctx context.Context, id string) (domain.Shipment, error)
	ListShipments(ctx context.Context, limit int) ([]domain.Shipment, error)
	UpdateShipment(ctx context.Context, id string, status, deliveryDate *string) error
	DeleteShipment(ctx context.Context, id string) error

	CreateBox(ctx context.Context, shipmentID string) (domain.Box, error)
	ListBoxes(ctx context.Context, shipmentID string) ([]domain.Box, error)
	DeleteBox(ctx context.Context, boxID string) error
	DeleteRow(ctx context.Context, rowID string) error

	ShipmentSummary(ctx context.Context, shipmentID string) ([]domain.SummaryLine, error)
	BoxSummary(ctx context.Context, boxID string) ([]domain.SummaryLine, error)
	Listing(ctx context.Context, shipmentID string, limit int) ([]domain.ListingRow, error)
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const shipmentCols = `
select s.shipment_id::text, s.warehouse, to_char(s.shipment_date, 'YYYY-MM-DD'), s.number_in_day, s.status,
coalesce(to_char(s.delivery_date, 'YYYY-MM-DD'), ''), s.created_at,
(select count(*) from shipment_kiz k where k.shipment_id = s.shipment_id)::int
from shipments s
`

func scanShipment(row store.Row) (domain.Shipment, error) {
	var s domain.Shipment
	if err := row.Scan(&s.ShipmentID, &s.Warehouse, &s.ShipmentDate, &s.NumberInDay, &s.Status,
		&s.DeliveryDate, &s.CreatedAt, &s.Rows); err != nil {
		return s, err
	}
	s.Label = labels.Shipment(s.Warehouse, s.ShipmentDate, s.NumberInDay)
	s.Locked = s.Status == domain.StatusShipped
	return s, nil
}

func (r *queries) CreateShipment(ctx context.Context, warehouse, date string) (domain.CreatedShipment, error) {
	const sql = `select shipment_id::text, number_in_day from create_shipment($1, $2::date)`
	out, err := store.One(ctx, r.q, func(row store.Row) (domain.CreatedShipment, error) {
		var c domain.CreatedShipment
		err := row.Scan(&c.ShipmentID, &c.NumberInDay)
		return c, err
	}, sql, warehouse, date)
	if err != nil {
		return domain.CreatedShipment{}, fromStore(err, "create shipment")
	}
	out.Label = labels.Shipment(warehouse, date, out.NumberInDay)
	return out, nil
}

func (r *queries) GetShipment(ctx context.Context, id string) (domain.Shipment, error) {
	s, err := store.One(ctx, r.q, scanShipment, shipmentCols+`where s.shipment_id = $1::uuid`, id)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Shipment{}, perr.NotFoundf("shipment %s not found", id)
	}
	if err != nil {
		return domain.Shipment{}, fromStore(err, "get shipment")
	}
	return s, nil
}

func (r *queries) ListShipments(ctx context.Context, limit int) ([]domain.Shipment, error) {
	out, err := store.Many(ctx, r.q, scanShipment,
		shipmentCols+`order by s.shipment_date desc, s.number_in_day desc limit $1`, limit)
	if err != nil {
		return nil, fromStore(err, "list shipments")
	}
	return out, nil
}

func (r *queries) UpdateShipment(ctx context.Context, id string, status, deliveryDate *string) error {
	const sql = `
update shipments
set status = coalesce($2, status),
    delivery_date = coalesce($3::date, delivery_date)
where shipment_id = $1::uuid
`
	tag, err := r.q.Exec(ctx, sql, id, optional(status), optional(deliveryDate))
	if err != nil {
		return fromStore(err, "update shipment")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("shipment %s not found", id)
	}
	return nil
}

func (r *queries) DeleteShipment(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `select delete_shipment_cascade($1::uuid)`, id); err != nil {
		return fromStore(err, "delete shipment")
	}
	return nil
}

func (r *queries) CreateBox(ctx context.Context, shipmentID string) (domain.Box, error) {
	const sql = `select box_id::text, ordinal, label from create_box($1::uuid)`
	b, err := store.One(ctx, r.q, func(row store.Row) (domain.Box, error) {
		var b domain.Box
		err := row.Scan(&b.BoxID, &b.Ordinal, &b.Label)
		return b, err
	}, sql, shipmentID)
	if err != nil {
		return domain.Box{}, fromStore(err, "create box")
	}
	b.ShipmentID = shipmentID
	return b, nil
}

func (r *queries) ListBoxes(ctx context.Context, shipmentID string) ([]domain.Box, error) {
	const sql = `
select b.box_id::text, b.shipment_id::text, b.ordinal, b.label,
(select count(*) from shipment_kiz k where k.box_id = b.box_id)::int
from boxes b
where b.shipment_id = $1::uuid
order by b.ordinal
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Box, error) {
		var b domain.Box
		err := row.Scan(&b.BoxID, &b.ShipmentID, &b.Ordinal, &b.Label, &b.Rows)
		return b, err
	}, sql, shipmentID)
	if err != nil {
		return nil, fromStore(err, "list boxes")
	}
	return out, nil
}

// DeleteBox removes the rows of a box, frees marking codes the shipment no longer
// holds and deletes the box. Run it inside a transaction
func (r *queries) DeleteBox(ctx context.Context, boxID string) error {
	shipmentID, err := store.One(ctx, r.q, func(row store.Row) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	}, `select shipment_id::text from boxes where box_id = $1::uuid for update`, boxID)
	if errors.Is(err, perr.ErrNotFound) {
		return perr.NotFoundf("box %s not found", boxID)
	}
	if err != nil {
		return fromStore(err, "lock box")
	}

	const free = `
with gone as (
  delete from shipment_kiz where box_id = $1::uuid returning kiz_code
)
update kiz k
set status = 'free', last_shipment_id = null, updated_at = now()
where k.kiz_code in (select g.kiz_code from gone g where g.kiz_code is not null)
  and k.last_shipment_id = $2::uuid
  and not exists (
    select 1 from shipment_kiz x
    where x.shipment_id = $2::uuid and x.kiz_code = k.kiz_code and x.box_id is distinct from $1::uuid
  )
`
	if _, err := r.q.Exec(ctx, free, boxID, shipmentID); err != nil {
		return fromStore(err, "delete box rows")
	}
	if _, err := r.q.Exec(ctx, `delete from boxes where box_id = $1::uuid`, boxID); err != nil {
		return fromStore(err, "delete box")
	}
	return nil
}

func (r *queries) DeleteRow(ctx context.Context, rowID string) error {
	if _, err := r.q.Exec(ctx, `select delete_row($1::uuid)`, rowID); err != nil {
		return fromStore(err, "delete row")
	}
	return nil
}

const summarySQL = `
select k.barcode, coalesce(k.wb_code, ''), coalesce(k.supplier_code, ''), coalesce(k.size, ''), count(*)::int
from shipment_kiz k
where %s
group by 1, 2, 3, 4
order by 1, 2, 3, 4
`

func scanSummary(row store.Row) (domain.SummaryLine, error) {
	var l domain.SummaryLine
	err := row.Scan(&l.Barcode, &l.WBCode, &l.SupplierCode, &l.Size, &l.Qty)
	return l, err
}

func (r *queries) ShipmentSummary(ctx context.Context, shipmentID string) ([]domain.SummaryLine, error) {
	out, err := store.Many(ctx, r.q, scanSummary, summaryWhere("k.shipment_id = $1::uuid"), shipmentID)
	if err != nil {
		return nil, fromStore(err, "shipment summary")
	}
	return out, nil
}

func (r *queries) BoxSummary(ctx context.Context, boxID string) ([]domain.SummaryLine, error) {
	out, err := store.Many(ctx, r.q, scanSummary, summaryWhere("k.box_id = $1::uuid"), boxID)
	if err != nil {
		return nil, fromStore(err, "box summary")
	}
	return out, nil
}

func (r *queries) Listing(ctx context.Context, shipmentID string, limit int) ([]domain.ListingRow, error) {
	const sql = `
select v.id::text, v.shipment_id::text, coalesce(v.box_id::text, ''), coalesce(b.ordinal, 0), v.barcode,
coalesce(v.wb_code, ''), coalesce(v.supplier_code, ''), coalesce(v.size, ''), coalesce(v.kiz_code, ''), v.created_at
from v_listing v
left join boxes b on b.box_id = v.box_id
where v.shipment_id = $1::uuid
order by v.created_at desc
limit $2
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.ListingRow, error) {
		var (
			l       domain.ListingRow
			ordinal int
			at      time.Time
		)
		if err := row.Scan(&l.ID, &l.ShipmentID, &l.BoxID, &ordinal, &l.Barcode,
			&l.WBCode, &l.SupplierCode, &l.Size, &l.KizCode, &at); err != nil {
			return l, err
		}
		l.BoxLabel = labels.Box(ordinal)
		l.CreatedAt = at
		return l, nil
	}, sql, shipmentID, limit)
	if err != nil {
		return nil, fromStore(err, "listing")
	}
	return out, nil
}

func summaryWhere(cond string) string { return fmt.Sprintf(summarySQL, cond) }

// fromStore maps reasons raised by the shipment functions to project errors
func fromStore(err error, op string) error {
	reason, detail, ok := perr.RaisedReason(err)
	if !ok {
		return perr.FromPostgres(err, op)
	}
	if detail == "" {
		detail = reason
	}
	switch reason {
	case domain.ReasonShipmentNotFound, domain.ReasonRowNotFound:
		return perr.WithOp(perr.NotFoundf("%s", detail), op)
	default:
		return perr.WithOp(perr.Conflictf("%s", detail), op)
	}
}

func optional(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
