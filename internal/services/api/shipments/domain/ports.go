package domain

import "context"

// ServicePort is the shipments contract exposed to transport and other modules
type ServicePort interface {
	CreateShipment(ctx context.Context, in CreateShipmentInput) (CreatedShipment, error)
	GetShipment(ctx context.Context, id string) (Shipment, error)
	ListShipments(ctx context.Context, in ListInput) ([]Shipment, error)
	UpdateShipment(ctx context.Context, id string, in UpdateShipmentInput) (Shipment, error)
	DeleteShipment(ctx context.Context, id string, in DeleteInput) error

	CreateBox(ctx context.Context, shipmentID string) (Box, error)
	ListBoxes(ctx context.Context, shipmentID string) ([]Box, error)
	DeleteBox(ctx context.Context, boxID string, in DeleteInput) error
	DeleteRow(ctx context.Context, rowID string) error

	ShipmentSummary(ctx context.Context, shipmentID string) ([]SummaryLine, error)
	BoxSummary(ctx context.Context, boxID string) ([]SummaryLine, error)
	Listing(ctx context.Context, shipmentID string, in ListInput) ([]ListingRow, error)
}
