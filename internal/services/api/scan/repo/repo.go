// Package repo provides postgres access for the scan pipeline
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
	"shipscan/internal/services/api/scan/domain"
)

// Repo defines the repository contract for scan rows
type Repo interface {
	CatalogItem(ctx context.Context, barcode string) (CatalogItem, error)
	ScanKiz(ctx context.Context, row domain.ScanRow, item CatalogItem) (string, error)
	LastUseOfCode(ctx context.Context, code string) (domain.ConflictLocation, error)
	ShipmentState(ctx context.Context, shipmentID, boxID string) (domain.ShipmentState, error)
}

// CatalogItem is what the card catalog knows about a barcode. Empty fields were not found
type CatalogItem struct {
	WBCode       string
	SupplierCode string
	Size         string
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

// StatementTimeout bounds every statement of a transaction
func StatementTimeout(d time.Duration) repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		if d <= 0 {
			return nil
		}
		_, err := q.Exec(ctx, fmt.Sprintf("set local statement_timeout = %d", d.Milliseconds()))
		return err
	}
}

func (r *queries) CatalogItem(ctx context.Context, barcode string) (CatalogItem, error) {
	const sql = `
select coalesce(sz.nmid::text, ''), coalesce(c.vendorcode, ''), coalesce(sz.techsize, '')
from wb_size_skus k
join wb_sizes sz on sz.chrtid = k.chrtid
left join wb_cards c on c.nmid = sz.nmid
where k.sku = $1
limit 1
`
	item, err := store.One(ctx, r.q, func(row store.Row) (CatalogItem, error) {
		var it CatalogItem
		err := row.Scan(&it.WBCode, &it.SupplierCode, &it.Size)
		return it, err
	}, sql, barcode)
	if errors.Is(err, perr.ErrNotFound) {
		return CatalogItem{}, nil
	}
	if err != nil {
		return CatalogItem{}, perr.FromPostgres(err, "catalog lookup")
	}
	return item, nil
}

func (r *queries) ScanKiz(ctx context.Context, row domain.ScanRow, item CatalogItem) (string, error) {
	const sql = `select scan_kiz($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8)::text`
	var code any
	if row.Code != nil {
		code = *row.Code
	}
	id, err := store.Scalar[string](ctx, r.q, sql,
		row.ShipmentID,
		row.BoxID,
		row.Barcode,
		nullable(item.WBCode),
		nullable(item.SupplierCode),
		nullable(item.Size),
		row.Code != nil,
		code,
	)
	if err != nil {
		if reason, detail, ok := perr.RaisedReason(err); ok {
			return "", &domain.StoreConflict{Reason: reason, Message: detail}
		}
		return "", perr.FromPostgres(err, "scan_kiz")
	}
	return id, nil
}

func (r *queries) LastUseOfCode(ctx context.Context, code string) (domain.ConflictLocation, error) {
	const sql = `
select k.shipment_id::text, s.warehouse, to_char(s.shipment_date, 'YYYY-MM-DD'), s.number_in_day,
coalesce(k.box_id::text, ''), coalesce(b.ordinal, 0), k.created_at
from shipment_kiz k
join shipments s on s.shipment_id = k.shipment_id
left join boxes b on b.box_id = k.box_id
where k.kiz_code = $1
order by k.created_at desc
limit 1
`
	loc, err := store.One(ctx, r.q, func(row store.Row) (domain.ConflictLocation, error) {
		var (
			l         domain.ConflictLocation
			warehouse string
			date      string
			number    int
			ordinal   int
		)
		if err := row.Scan(&l.ShipmentID, &warehouse, &date, &number, &l.BoxID, &ordinal, &l.LastSeenAt); err != nil {
			return l, err
		}
		l.ShipmentLabel = labels.Shipment(warehouse, date, number)
		l.BoxLabel = labels.Box(ordinal)
		return l, nil
	}, sql, code)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.ConflictLocation{}, perr.NotFoundf("marking code %s was never recorded", code)
	}
	if err != nil {
		return domain.ConflictLocation{}, perr.FromPostgres(err, "find last use of code")
	}
	return loc, nil
}

func (r *queries) ShipmentState(ctx context.Context, shipmentID, boxID string) (domain.ShipmentState, error) {
	const sql = `
select s.shipment_id::text, s.status,
exists (select 1 from boxes b where b.box_id = nullif($2, '')::uuid and b.shipment_id = s.shipment_id)
from shipments s
where s.shipment_id = $1::uuid
`
	st, err := store.One(ctx, r.q, func(row store.Row) (domain.ShipmentState, error) {
		var s domain.ShipmentState
		err := row.Scan(&s.ShipmentID, &s.Status, &s.BoxFound)
		return s, err
	}, sql, shipmentID, boxID)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.ShipmentState{}, perr.NotFoundf("shipment %s not found", shipmentID)
	}
	if err != nil {
		return domain.ShipmentState{}, perr.FromPostgres(err, "shipment state")
	}
	return st, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
