// Package pairing contains the pure barcode then marking code pairing rules.
// Step evaluates one classified packet against the session context and returns
// a Decision without side effects; the caller performs any commit and then
// applies Committed or keeps the previous state.
package pairing

import (
	"shipscan/internal/core/scancode"
)

// State of one scanning session. Zero value is Idle
type State struct {
	Pending string
}

// Awaiting reports whether a barcode waits for its marking code
func (s State) Awaiting() bool { return s.Pending != "" }

func (s State) String() string {
	if s.Awaiting() {
		return "awaiting_code"
	}
	return "idle"
}

// Context is the shipment selection the session scans into
type Context struct {
	ShipmentID   string `json:"shipment_id"`
	BoxID        string `json:"box_id"`
	RequiresCode bool   `json:"requires_marking_code"`
	Locked       bool   `json:"locked"`
}

// Ready reports whether both a shipment and a box are selected
func (c Context) Ready() bool { return c.ShipmentID != "" && c.BoxID != "" }

// Action is what the caller must do with a packet
type Action uint8

const (
	// ActionReject drops the packet, state unchanged
	ActionReject Action = iota + 1
	// ActionHold stores the barcode as pending, nothing is written
	ActionHold
	// ActionCommit writes Barcode and Code to the store
	ActionCommit
)

func (a Action) String() string {
	switch a {
	case ActionReject:
		return "reject"
	case ActionHold:
		return "hold"
	case ActionCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Step
type Decision struct {
	Action Action
	Reject Reject

	Barcode string
	Code    *string // nil when the pair carries no marking code

	// Replaced is the pending barcode a fresh barcode overwrote
	Replaced string

	// Next is the state to adopt for Reject and Hold, and on a successful Commit
	Next State
}

// Step applies one classified packet to s under ctx
func Step(s State, ctx Context, scan scancode.Scan) Decision {
	if g := CanScan(ctx); !g.Allowed {
		return Decision{Action: ActionReject, Reject: g.Reject, Next: s}
	}

	switch scan.Kind {
	case scancode.KindBarcode:
		if !scancode.IsDigits(scan.Value) {
			return Decision{Action: ActionReject, Reject: InvalidBarcodeFormat, Next: s}
		}
		if ctx.RequiresCode {
			return Decision{
				Action:   ActionHold,
				Barcode:  scan.Value,
				Replaced: s.Pending,
				Next:     State{Pending: scan.Value},
			}
		}
		return Decision{Action: ActionCommit, Barcode: scan.Value, Next: State{}}

	default:
		if g := CanAcceptCode(ctx, s); !g.Allowed {
			return Decision{Action: ActionReject, Reject: g.Reject, Next: s}
		}
		code := scan.Value
		return Decision{Action: ActionCommit, Barcode: s.Pending, Code: &code, Next: State{}}
	}
}

// Retarget returns the state after the context moves from prev to next.
// The pending barcode survives only while the same shipment and box stay
// selected with marking codes still required
func Retarget(s State, prev, next Context) State {
	if !next.RequiresCode || prev.ShipmentID != next.ShipmentID || prev.BoxID != next.BoxID {
		return State{}
	}
	return s
}
