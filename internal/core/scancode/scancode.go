// Package scancode classifies raw scanner packets into product barcodes and marking codes
package scancode

import (
	"strings"
	"unicode/utf8"

	"shipscan/internal/core/normalize"
)

// Kind is the class of a scanned value
type Kind uint8

const (
	// KindBarcode is a product barcode (EAN/GTIN digits)
	KindBarcode Kind = iota + 1
	// KindMarkingCode is a per-unit marking code (DataMatrix payload)
	KindMarkingCode
)

func (k Kind) String() string {
	switch k {
	case KindBarcode:
		return "barcode"
	case KindMarkingCode:
		return "marking_code"
	default:
		return "unknown"
	}
}

// Scan is a classified packet
type Scan struct {
	Kind  Kind
	Value string
	// Forced is set when a B: or K: prefix chose the kind
	Forced bool
	// Structured is set when the value passed the GS1 element heuristic
	Structured bool
}

// Empty reports whether nothing is left of the packet once classified,
// as with a bare "K:" or a lone group separator
func (s Scan) Empty() bool { return s.Value == "" }

// MinStructuredLen is the shortest normalized value accepted by the GS1 heuristic
const MinStructuredLen = 30

// Classify turns one raw packet into a Scan. It never fails: anything that is not
// recognisably a barcode falls back to a marking code
func Classify(raw string) Scan {
	s := normalize.TrimLineEnd(raw)

	if kind, rest, ok := forcedPrefix(s); ok {
		rest = strings.TrimSpace(rest)
		if kind == KindBarcode {
			return Scan{Kind: KindBarcode, Value: rest, Forced: true}
		}
		v := normalize.Code(rest)
		return Scan{Kind: KindMarkingCode, Value: v, Forced: true, Structured: IsStructured(v)}
	}

	t := strings.TrimSpace(s)
	if IsDigits(t) {
		return Scan{Kind: KindBarcode, Value: t}
	}

	v := normalize.Code(t)
	return Scan{Kind: KindMarkingCode, Value: v, Structured: IsStructured(v)}
}

// forcedPrefix recognises B: and K: in either case and in the Cyrillic
// layout (В and К) a scanner produces with a Russian keyboard active
func forcedPrefix(s string) (Kind, string, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || len(s) <= size || s[size] != ':' {
		return 0, "", false
	}
	rest := s[size+1:]
	switch r {
	case 'B', 'b', 'В', 'в':
		return KindBarcode, rest, true
	case 'K', 'k', 'К', 'к':
		return KindMarkingCode, rest, true
	}
	return 0, "", false
}

// IsDigits reports whether s is non-empty and made only of ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
