// Package service contains shipment and box workflows
package service

import (
	"context"
	"crypto/subtle"

	"shipscan/internal/modkit/repokit"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/services/api/shipments/domain"
	"shipscan/internal/services/api/shipments/repo"
)

const defaultListLimit = 200

// Service defines the service contract for shipments
type Service interface {
	domain.ServicePort
}

// Passwords guard the destructive operations
type Passwords struct {
	Shipment string
	Box      string
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	pw     Passwords
}

// New creates a new shipments service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], pw Passwords) *Svc {
	if db == nil {
		panic("shipments.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("shipments.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, pw: pw}
}

// CreateShipment numbers a new shipment within its warehouse and day
func (s *Svc) CreateShipment(ctx context.Context, in domain.CreateShipmentInput) (domain.CreatedShipment, error) {
	return s.Repo.CreateShipment(ctx, in.Warehouse, in.ShipmentDate)
}

// GetShipment returns one shipment
func (s *Svc) GetShipment(ctx context.Context, id string) (domain.Shipment, error) {
	return s.Repo.GetShipment(ctx, id)
}

// ListShipments returns the newest shipments first
func (s *Svc) ListShipments(ctx context.Context, in domain.ListInput) ([]domain.Shipment, error) {
	return s.Repo.ListShipments(ctx, limitOr(in.Limit))
}

// UpdateShipment changes status and delivery date
func (s *Svc) UpdateShipment(ctx context.Context, id string, in domain.UpdateShipmentInput) (domain.Shipment, error) {
	if in.Empty() {
		return domain.Shipment{}, perr.Newf(perr.ErrorCodeValidation, "nothing to update")
	}
	if err := s.Repo.UpdateShipment(ctx, id, in.Status, in.DeliveryDate); err != nil {
		return domain.Shipment{}, err
	}
	return s.Repo.GetShipment(ctx, id)
}

// DeleteShipment removes a shipment with its boxes and rows and frees its marking codes
func (s *Svc) DeleteShipment(ctx context.Context, id string, in domain.DeleteInput) error {
	if !passwordOK(s.pw.Shipment, in.Password) {
		return perr.WithField(perr.Forbiddenf("wrong password"), "password")
	}
	return s.Repo.DeleteShipment(ctx, id)
}

// CreateBox appends the next numbered box to a shipment
func (s *Svc) CreateBox(ctx context.Context, shipmentID string) (domain.Box, error) {
	return s.Repo.CreateBox(ctx, shipmentID)
}

// ListBoxes returns the boxes of a shipment in order
func (s *Svc) ListBoxes(ctx context.Context, shipmentID string) ([]domain.Box, error) {
	if _, err := s.Repo.GetShipment(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.Repo.ListBoxes(ctx, shipmentID)
}

// DeleteBox removes a box and its rows in one transaction
func (s *Svc) DeleteBox(ctx context.Context, boxID string, in domain.DeleteInput) error {
	if !passwordOK(s.pw.Box, in.Password) {
		return perr.WithField(perr.Forbiddenf("wrong password"), "password")
	}
	return s.db.Tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).DeleteBox(ctx, boxID)
	})
}

// DeleteRow removes one scanned row
func (s *Svc) DeleteRow(ctx context.Context, rowID string) error {
	return s.Repo.DeleteRow(ctx, rowID)
}

// ShipmentSummary groups the rows of a shipment by article
func (s *Svc) ShipmentSummary(ctx context.Context, shipmentID string) ([]domain.SummaryLine, error) {
	return s.Repo.ShipmentSummary(ctx, shipmentID)
}

// BoxSummary groups the rows of a box by article
func (s *Svc) BoxSummary(ctx context.Context, boxID string) ([]domain.SummaryLine, error) {
	return s.Repo.BoxSummary(ctx, boxID)
}

// Listing returns the rows of a shipment newest first
func (s *Svc) Listing(ctx context.Context, shipmentID string, in domain.ListInput) ([]domain.ListingRow, error) {
	return s.Repo.Listing(ctx, shipmentID, limitOr(in.Limit))
}

func passwordOK(want, got string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func limitOr(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
