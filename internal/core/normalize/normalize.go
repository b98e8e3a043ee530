// Package normalize canonicalises marking codes read by handheld scanners.
//
// Controls and invalid bytes go first, then NFKC, a fullwidth fold, the
// Cyrillic homoglyph fold, whitespace and format character removal, and a
// final NFC. Case is kept, marking codes are case sensitive
package normalize

import (
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer applies the pipeline. The zero value is ready and safe for
// concurrent use
type Normalizer struct{}

// chains hold transformer chains, a chain is stateful while it runs
var chains = sync.Pool{New: func() any {
	return transform.Chain(
		norm.NFKC,
		width.Fold,
		runes.Map(foldHomoglyph),
		runes.Remove(runes.Predicate(unicode.IsSpace)),
		runes.Remove(runes.In(unicode.Cf)), // ZWJ, ZWNJ, BOM
		norm.NFC,
	)
}}

// New returns a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Code normalizes s with a shared Normalizer
func Code(s string) string { return Normalizer{}.Normalize(s) }

// Normalize returns the canonical form of s. On a transform error the
// control stripped input is returned
func (Normalizer) Normalize(s string) string {
	s = StripControls(s)
	if s == "" {
		return ""
	}
	t := chains.Get().(transform.Transformer)
	defer chains.Put(t)
	t.Reset()
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
