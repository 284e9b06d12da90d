package sheet

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// decoder strips a byte order mark (switching to UTF-16 when the mark says
// so) and replaces ill-formed UTF-8 with U+FFFD.
func decoder() transform.Transformer {
	return transform.Chain(
		unicode.BOMOverride(unicode.UTF8BOM.NewDecoder()),
		runes.ReplaceIllFormed(),
	)
}

// Decode converts a raw CSV export to clean UTF-8 text.
func Decode(raw []byte) (string, error) {
	out, _, err := transform.Bytes(decoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(out), nil
}

// NewReader wraps r with the same decoding as Decode, for streaming use.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, decoder())
}
