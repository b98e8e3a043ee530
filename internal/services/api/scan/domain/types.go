// Package domain holds types shared by the scan session service, its store and transport
package domain

import (
	"time"

	"shipscan/internal/core/pairing"
)

// Store level conflict reasons raised by scan_kiz
const (
	ReasonCodeAlreadyUsed   = "CODE_ALREADY_USED"
	ReasonCodeDupInShipment = "CODE_DUP_IN_SHIPMENT"
	ReasonShipmentLocked    = "SHIPMENT_LOCKED"
)

// Reject codes beyond the pairing rules
const (
	DuplicateMarkingCode pairing.Reject = "duplicate_marking_code"
	StoreError           pairing.Reject = "store_error"
	InputBlocked         pairing.Reject = "input_blocked"
)

// EventKind names what happened to a packet or to the session
type EventKind string

const (
	EventHold         EventKind = "hold"
	EventCommitted    EventKind = "committed"
	EventRejected     EventKind = "rejected"
	EventDropped      EventKind = "dropped"
	EventBlocked      EventKind = "blocked"
	EventAcknowledged EventKind = "acknowledged"
	EventContext      EventKind = "context"
	EventCancelled    EventKind = "cancelled"
)

// Cue is the audible signal a station plays for an event
type Cue string

const (
	CueNone    Cue = "none"
	CueSuccess Cue = "success"
	CueError   Cue = "error"
)

// Event is one operator visible outcome
type Event struct {
	Seq       uint64         `json:"seq"`
	SessionID string         `json:"session_id"`
	At        time.Time      `json:"at"`
	Kind      EventKind      `json:"kind"`
	Reject    pairing.Reject `json:"reject,omitempty"`
	Message   string         `json:"message,omitempty"`
	Barcode   string         `json:"barcode,omitempty"`
	Code      string         `json:"code,omitempty"`
	RowID     string         `json:"row_id,omitempty"`
	Changes   uint64         `json:"changes"`
	Cue       Cue            `json:"cue"`
}

// ConflictLocation is where a marking code was last recorded
type ConflictLocation struct {
	ShipmentID    string    `json:"shipment_id"`
	ShipmentLabel string    `json:"shipment_label"`
	BoxID         string    `json:"box_id,omitempty"`
	BoxLabel      string    `json:"box_label"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

// DuplicateBlock freezes a session until acknowledged
type DuplicateBlock struct {
	Code     string            `json:"code"`
	Reason   string            `json:"reason"`
	Location *ConflictLocation `json:"location,omitempty"`
	Message  string            `json:"message"`
	Since    time.Time         `json:"since"`
}

// ScanRow is the pair handed to the store
type ScanRow struct {
	ShipmentID string
	BoxID      string
	Barcode    string
	Code       *string
}

// ShipmentState is what the store knows about a shipment selection
type ShipmentState struct {
	ShipmentID string
	Status     string
	BoxFound   bool
}

// Locked reports whether rows may no longer be added
func (s ShipmentState) Locked() bool { return s.Status == "shipped" }

// Snapshot is a read-only copy of a session
type Snapshot struct {
	ID       string          `json:"id"`
	Station  string          `json:"station,omitempty"`
	Context  pairing.Context `json:"context"`
	State    string          `json:"state"`
	Pending  string          `json:"pending,omitempty"`
	Block    *DuplicateBlock `json:"block,omitempty"`
	Queued   int             `json:"queued"`
	InFlight bool            `json:"in_flight"`
	Changes  uint64          `json:"changes"`
	Events   []Event         `json:"events"`
	Created  time.Time       `json:"created_at"`
	LastSeen time.Time       `json:"last_seen_at"`
}
