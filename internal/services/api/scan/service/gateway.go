package service

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"shipscan/internal/core/pairing"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/platform/metrics"
	"shipscan/internal/services/api/scan/domain"
)

// Gateway writes committed pairs to the store and counts successful writes
type Gateway struct {
	store   domain.Store
	changes atomic.Uint64
}

// NewGateway returns a gateway over st
func NewGateway(st domain.Store) *Gateway {
	if st == nil {
		panic("scan.Gateway requires a non nil Store")
	}
	return &Gateway{store: st}
}

// Commit makes exactly one insert attempt. Duplicate marking codes come back
// as a Conflict wrapping *domain.DuplicateError and a shipment shipped in the
// meantime as a Conflict on the shipment_locked field. Anything else keeps the
// store's error code
func (g *Gateway) Commit(ctx context.Context, shipmentID, boxID, barcode string, code *string) (string, error) {
	row := domain.ScanRow{
		ShipmentID: shipmentID,
		BoxID:      boxID,
		Barcode:    barcode,
		Code:       code,
	}
	start := time.Now()
	id, err := g.store.InsertScanRow(ctx, row)
	metrics.CommitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", classify(err, code)
	}
	g.changes.Add(1)
	metrics.CommitsTotal.WithLabelValues(strconv.FormatBool(code != nil)).Inc()
	return id, nil
}

// Changes is the number of rows written through this gateway
func (g *Gateway) Changes() uint64 { return g.changes.Load() }

func classify(err error, code *string) error {
	var c *domain.StoreConflict
	if errors.As(err, &c) && domain.IsDuplicateReason(c.Reason) {
		dup := &domain.DuplicateError{Reason: c.Reason, Message: c.Message}
		if code != nil {
			dup.Code = *code
		}
		return perr.WithField(perr.Wrap(dup, perr.ErrorCodeConflict, dup.Error()), string(domain.DuplicateMarkingCode))
	}
	if c != nil && c.Reason == domain.ReasonShipmentLocked {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeConflict, c.Error()), string(pairing.ShipmentLocked))
	}
	if c != nil {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeConflict, c.Error()), string(domain.StoreError))
	}
	if _, ok := perr.As(err); ok {
		return perr.WithField(err, string(domain.StoreError))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeUnavailable, "store timed out"), string(domain.StoreError))
	}
	return perr.WithField(perr.Wrap(err, perr.ErrorCodeDB, "store write failed"), string(domain.StoreError))
}

// RejectOf names the reject code a commit error maps to
func RejectOf(err error) pairing.Reject {
	var dup *domain.DuplicateError
	if errors.As(err, &dup) {
		return domain.DuplicateMarkingCode
	}
	if e, ok := perr.As(err); ok && e.Field() == string(pairing.ShipmentLocked) {
		return pairing.ShipmentLocked
	}
	return domain.StoreError
}
