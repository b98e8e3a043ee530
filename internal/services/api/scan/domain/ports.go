package domain

import "context"

// Store is the persistence the scan pipeline needs
type Store interface {
	InsertScanRow(ctx context.Context, row ScanRow) (string, error)
	FindLastUseOfCode(ctx context.Context, code string) (ConflictLocation, error)
	ShipmentState(ctx context.Context, shipmentID, boxID string) (ShipmentState, error)
}

// ServicePort is the scan session contract exposed to transport and other modules
type ServicePort interface {
	Create(ctx context.Context, in CreateSessionInput) (Snapshot, error)
	Get(ctx context.Context, id string) (Snapshot, error)
	SetContext(ctx context.Context, id string, in ContextInput) (Snapshot, error)
	Enqueue(ctx context.Context, id string, in PacketsInput) (EnqueueResult, error)
	Ack(ctx context.Context, id string) (AckResult, error)
	CancelPending(ctx context.Context, id string) (Snapshot, error)
	Close(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (<-chan Event, func(), error)
	Where(ctx context.Context, code string) (ConflictLocation, error)
}
