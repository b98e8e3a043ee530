package pairing

import "fmt"

// Reject is a stable code naming why a packet was refused
type Reject string

const (
	ContextNotReady        Reject = "context_not_ready"
	ShipmentLocked         Reject = "shipment_locked"
	InvalidBarcodeFormat   Reject = "invalid_barcode_format"
	MarkingCodeNotExpected Reject = "marking_code_not_expected"
	BarcodeRequiredFirst   Reject = "barcode_required_first"
)

// Message is the operator facing text for r
func (r Reject) Message() string {
	switch r {
	case ContextNotReady:
		return "select a shipment and a box first"
	case ShipmentLocked:
		return "shipment is locked"
	case InvalidBarcodeFormat:
		return "barcode must contain digits only"
	case MarkingCodeNotExpected:
		return "marking codes are off for this session, scan a barcode"
	case BarcodeRequiredFirst:
		return "scan the product barcode before its marking code"
	default:
		return string(r)
	}
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reject  Reject
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func deny(r Reject) GuardResult {
	return GuardResult{Reject: r, Reason: r.Message()}
}

// CanScan evaluates whether any packet may be processed in ctx.
// Rules:
// - Shipment and box must be selected
// - Shipment must not be locked
func CanScan(ctx Context) GuardResult {
	if !ctx.Ready() {
		return deny(ContextNotReady)
	}
	if ctx.Locked {
		return deny(ShipmentLocked)
	}
	return GuardResult{Allowed: true}
}

// CanAcceptCode evaluates whether a marking code may be paired now.
// Rules:
// - Session must require marking codes
// - A barcode must be pending
func CanAcceptCode(ctx Context, s State) GuardResult {
	if !ctx.RequiresCode {
		return deny(MarkingCodeNotExpected)
	}
	if !s.Awaiting() {
		return deny(BarcodeRequiredFirst)
	}
	return GuardResult{Allowed: true}
}
