package core

// streaming.go provides the reader chain that turns uploaded bytes into text:
//
//	raw bytes -> BOMSkippingReader -> ISO-8859-1 decoder -> UTF-8 text
//
// ISO-8859-1 maps every byte to a rune, so decoding never fails on arbitrary
// input. A stricter codec would reject half of the exports seen in practice.

import (
	"bufio"
	"bytes"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// utf8BOM is the byte order mark added by Windows spreadsheet tools.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
// Decoded as Latin-1 the BOM would otherwise glue "ï»¿" onto the first
// column name.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// NewLatin1Reader returns a reader yielding the UTF-8 text of r, decoded as
// ISO-8859-1 after skipping any BOM.
func NewLatin1Reader(r io.Reader) io.Reader {
	return transform.NewReader(NewBOMSkippingReader(r), charmap.ISO8859_1.NewDecoder())
}

// decodeLatin1 decodes a whole buffer through NewLatin1Reader.
func decodeLatin1(raw []byte) (string, error) {
	text, err := io.ReadAll(NewLatin1Reader(bytes.NewReader(raw)))
	if err != nil {
		return "", err
	}
	return string(text), nil
}
