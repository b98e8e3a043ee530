package scancode

import (
	"strings"

	"shipscan/internal/core/normalize"
)

const gtinLen = 14

// IsStructured reports whether s looks like a GS1 DataMatrix marking code:
// AI 01 with a 14 digit GTIN, then AIs 21, 91 and 92 at strictly increasing
// offsets, and at least MinStructuredLen characters overall.
// Controls and GS separators are ignored
func IsStructured(s string) bool {
	s = normalize.StripControls(s)
	if len(s) < MinStructuredLen || !strings.HasPrefix(s, "01") {
		return false
	}
	if !IsDigits(s[2 : 2+gtinLen]) {
		return false
	}

	pos := 2 + gtinLen
	for _, ai := range [...]string{"21", "91", "92"} {
		i := strings.Index(s[pos:], ai)
		if i < 0 {
			return false
		}
		pos += i + len(ai)
	}
	return true
}
