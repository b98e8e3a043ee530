package normalize

import (
	"strings"
	"unicode"
)

// GS is the group separator scanners emit between GS1 elements
const GS = '\x1d'

// StripControls drops invalid UTF-8 and every C0, DEL and C1 control. GS and
// tab are controls too. Clean input is returned as is
func StripControls(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// TrimLineEnd drops the CR LF terminator a scanner appends
func TrimLineEnd(s string) string { return strings.TrimRight(s, "\r\n") }
