package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalize prepares raw source bytes for lexing: it strips a leading
// UTF-8 byte-order mark and applies NFC normalization so that visually
// identical identifiers (e.g. an accented letter typed as one precomposed
// rune vs. letter+combining-mark) hash to the same idhash.ID.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, utf8BOM)
	return norm.NFC.Bytes(src)
}
