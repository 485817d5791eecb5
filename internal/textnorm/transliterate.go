package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// substitutions covers characters that have no canonical decomposition into
// an ASCII base letter plus combining marks.
var substitutions = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "TH",
	'ħ': "h", 'Ħ': "H",
	'ı': "i",
	'‘': "'", '’': "'", '‚': "'", '′': "'",
	'“': `"`, '”': `"`, '„': `"`, '«': `"`, '»': `"`, '″': `"`,
	'‐': "-", '‑': "-", '‒': "-", '–': "-", '—': "-", '―': "-", '−': "-",
	'…': "...",
	'•': "*",
	'€': "EUR", '£': "GBP", '¥': "JPY",
	'©': "(c)", '®': "(r)", '™': "TM",
	'×': "x", '÷': "/",
	'\u00a0': " ", '\u2009': " ", '\u202f': " ",
}

// Transliterate maps text to its closest ASCII approximation. Accents are
// stripped after compatibility decomposition and a fixed substitution table
// handles the remaining common Latin letters and punctuation. Characters with
// no mapping, such as CJK ideographs, pass through unchanged.
//
// Input that is not valid UTF-8 yields an *EncodingError.
func Transliterate(text string) (string, error) {
	if off := invalidOffset(text); off >= 0 {
		return "", &EncodingError{Offset: off, Err: ErrInvalidUTF8}
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if sub, ok := substitutions[r]; ok {
			b.WriteString(sub)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, n, err := transform.String(t, b.String())
	if err != nil {
		return "", &EncodingError{Offset: n, Err: err}
	}
	return out, nil
}

// transliterateLossy drops malformed bytes instead of failing, for use in
// pipelines where a single bad document must not abort the run.
func transliterateLossy(text string) string {
	text = strings.ToValidUTF8(text, "")
	out, err := Transliterate(text)
	if err != nil {
		return text
	}
	return out
}

func invalidOffset(s string) int {
	if utf8.ValidString(s) {
		return -1
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
