package domain

// CreateSessionInput opens a session, optionally with a selection
type CreateSessionInput struct {
	Station      string `json:"station,omitempty" validate:"omitempty,max=64" example:"desk-2"`
	ShipmentID   string `json:"shipment_id,omitempty" validate:"omitempty,uuid" example:"4b1f3b5e-8c1d-4c57-9a3e-2f1b2a0c9d11"`
	BoxID        string `json:"box_id,omitempty" validate:"omitempty,uuid" example:"6a0e7c1e-0b0e-4c1e-8f5d-3c2b1a0d9e8f"`
	RequiresCode bool   `json:"requires_marking_code,omitempty" example:"true"`
}

// ContextInput selects what a session scans into
type ContextInput struct {
	ShipmentID   string `json:"shipment_id,omitempty" validate:"omitempty,uuid"`
	BoxID        string `json:"box_id,omitempty" validate:"omitempty,uuid"`
	RequiresCode bool   `json:"requires_marking_code"`
}

// PacketsInput carries raw scanner packets in arrival order
type PacketsInput struct {
	Packets []string `json:"packets" validate:"required,min=1,max=500,dive,max=2048" example:"4601234567890"`
	Wait    bool     `json:"wait,omitempty" example:"true"`
}

// EnqueueResult reports what happened to submitted packets
type EnqueueResult struct {
	Accepted int       `json:"accepted"`
	Dropped  int       `json:"dropped"`
	Ignored  int       `json:"ignored"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// AckResult reports whether a block was cleared
type AckResult struct {
	Cleared  bool     `json:"cleared"`
	Snapshot Snapshot `json:"snapshot"`
}

// WhereInput asks where a marking code was last used
type WhereInput struct {
	Code string `json:"code" validate:"required,max=2048"`
}
