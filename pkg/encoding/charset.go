// Package encoding decodes text written in the legacy character sets
// that older CAD exporters still produce for object names.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for character set names Lookup does not know.
var ErrUnknownCharset = errors.New("unknown charset")

var charsets = map[string]encoding.Encoding{
	"shift_jis": japanese.ShiftJIS,
	"sjis":      japanese.ShiftJIS,
	"cp932":     japanese.ShiftJIS,
	"euc-jp":    japanese.EUCJP,
	"euc-kr":    korean.EUCKR,
	"cp949":     korean.EUCKR,
}

// Lookup returns the encoding for a character set name. Names are case
// insensitive and "_" and "-" are interchangeable. UTF-8 and the empty
// name return nil, meaning no conversion is needed.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	if enc, ok := charsets[key]; ok {
		return enc, nil
	}
	if enc, ok := charsets[strings.ReplaceAll(key, "-", "_")]; ok {
		return enc, nil
	}
	if enc, ok := charsets[strings.ReplaceAll(key, "_", "-")]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// NewReader returns a reader that decodes r from the named character
// set to UTF-8.
func NewReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// ToUTF8 converts data from the named character set to a UTF-8 string.
func ToUTF8(data []byte, charset string) (string, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(data), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
