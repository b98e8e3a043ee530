package normalize

// homoglyphs maps Cyrillic letters that render identically to Latin ones.
// A scanner in a Russian keyboard layout types these instead of the Latin letters
var homoglyphs = map[rune]rune{
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H', 'О': 'O',
	'Р': 'P', 'С': 'C', 'Т': 'T', 'У': 'Y', 'Х': 'X', 'Ё': 'E',
	'а': 'a', 'в': 'b', 'е': 'e', 'к': 'k', 'м': 'm', 'н': 'h', 'о': 'o',
	'р': 'p', 'с': 'c', 'т': 't', 'у': 'y', 'х': 'x', 'ё': 'e',
}

func foldHomoglyph(r rune) rune {
	if l, ok := homoglyphs[r]; ok {
		return l
	}
	return r
}

// FoldHomoglyphs maps only the Cyrillic look-alikes and leaves everything else intact
func FoldHomoglyphs(s string) string {
	b := []rune(s)
	changed := false
	for i, r := range b {
		if l, ok := homoglyphs[r]; ok {
			b[i] = l
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
