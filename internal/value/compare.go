package value

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Compare orders two values, returning (result, true) when they are
// comparable and (0, false) otherwise. Only Str-to-Str and number-like
// comparisons are defined; everything else is not comparable. Strings
// are NFC-normalized before collation so visually identical strings
// built from different combining-character sequences compare equal,
// matching the form the assembler gives string literals. A
// fresh collator is built per call (language.Und, the locale-agnostic
// default) rather than shared, since collate.Collator keeps an internal
// buffer that isn't safe for concurrent reuse.
func (v Value) Compare(other Value) (int, bool) {
	if v.IsStr() && other.IsStr() {
		a := norm.NFC.String(v.RawStr())
		b := norm.NFC.String(other.RawStr())
		col := collate.New(language.Und)
		return col.CompareString(a, b), true
	}

	if v.IsNumber() && other.IsNumber() {
		af, _ := v.AsFloat()
		bf, _ := other.AsFloat()
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	return 0, false
}

// NormalizeStr returns the NFC normal form of s, the same form Compare
// uses internally. Exposed so callers (e.g. the assembler's constant
// deduplication pass) can dedupe string literals consistently with
// runtime comparison.
func NormalizeStr(s string) string {
	return norm.NFC.String(s)
}
