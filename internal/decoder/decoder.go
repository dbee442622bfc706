// Package decoder resolves configured text encodings for log input.
package decoder

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// utf-8 and its subsets are read as-is; everything else goes through a
// transform to utf-8.
var encodingOverrides = map[string]encoding.Encoding{
	"":         unicode.UTF8,
	"utf8":     unicode.UTF8,
	"utf-8":    unicode.UTF8,
	"ascii":    unicode.UTF8,
	"us-ascii": unicode.UTF8,
	"utf16":    unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16":   unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be": unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// LookupEncoding returns the encoding for an IANA name, case-insensitively.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if e, ok := encodingOverrides[strings.ToLower(name)]; ok {
		return e, nil
	}
	e, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding '%s': %w", name, err)
	}
	if e == nil {
		return nil, fmt.Errorf("no charmap defined for encoding '%s'", name)
	}
	return e, nil
}

// IsUTF8 reports whether bytes in this encoding can be consumed without a transform.
func IsUTF8(e encoding.Encoding) bool {
	return e == unicode.UTF8
}

// NewReader wraps r so that it yields utf-8 text.
func NewReader(e encoding.Encoding, r io.Reader) io.Reader {
	if IsUTF8(e) {
		return r
	}
	return transform.NewReader(r, e.NewDecoder())
}
