package mdict

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// textCodec bundles the golang.org/x/text encoding used to decode stored
// key/record bytes with the NUL-terminator width that encoding uses (1 byte
// for every single-byte/multi-byte-ASCII-compatible codec, 2 bytes for
// UTF-16LE), since key-block entries are NUL-terminated in the codec's own
// unit, not always a single zero byte.
type textCodec struct {
	name     string
	enc      encoding.Encoding // nil means UTF-8, i.e. a no-op passthrough
	nulWidth int
}

// resolveEncoding maps a header's Encoding= label to a textCodec. An unknown
// label defaults to UTF-8.
func resolveEncoding(label string) textCodec {
	switch normalizeEncodingLabel(label) {
	case "", "UTF8":
		return textCodec{name: "UTF-8", nulWidth: 1}
	case "UTF16", "UTF16LE":
		return textCodec{name: "UTF-16LE", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nulWidth: 2}
	case "GBK":
		return textCodec{name: "GBK", enc: simplifiedchinese.GBK, nulWidth: 1}
	case "GB18030":
		return textCodec{name: "GB18030", enc: simplifiedchinese.GB18030, nulWidth: 1}
	case "BIG5":
		return textCodec{name: "BIG5", enc: traditionalchinese.Big5, nulWidth: 1}
	case "LATIN1", "ISO88591", "ISO8859":
		return textCodec{name: "Latin-1", enc: charmap.ISO8859_1, nulWidth: 1}
	default:
		return textCodec{name: "UTF-8", nulWidth: 1}
	}
}

// normalizeEncodingLabel folds a header-supplied encoding label to a bare
// uppercase alphanumeric token so "UTF-8", "utf8", "Utf-8" and "UTF_8" all
// match the same case in resolveEncoding.
func normalizeEncodingLabel(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decode converts stored bytes (key bytes or a text record's bytes) to a Go
// string using the codec. UTF-8 (enc == nil) is returned unchanged.
func (c textCodec) decode(b []byte) (string, error) {
	if c.enc == nil {
		return string(b), nil
	}
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrapf(err, "mdict: decode %s text", c.name)
	}
	return string(out), nil
}

// normalizeKey applies the header's KeyCaseSensitive and StripKey rules to
// produce the normalized form used for comparisons. The raw form is
// preserved separately for display.
func normalizeKey(raw string, h *Header) string {
	s := raw
	if !h.KeyCaseSensitive {
		s = asciiLower(s)
	}
	if h.StripKey {
		s = stripNonAlnum(s)
	}
	return s
}

// asciiLower folds ASCII letters only; full Unicode case folding is
// deliberately not attempted, since observed dictionaries never need it.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// stripNonAlnum removes whitespace and non-alphanumeric bytes, retaining the
// original form for display elsewhere.
func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r > 127:
			// Non-ASCII runes (e.g. CJK) are kept: "non-alphanumeric" here
			// means ASCII punctuation/whitespace, not every non-Latin glyph.
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeForPrefix applies only the header's case-folding rule, not
// StripKey: prefix matching folds case the way the reader does but keeps
// punctuation, so a typed prefix lines up with displayed keys.
func normalizeForPrefix(raw string, h *Header) string {
	if !h.KeyCaseSensitive {
		return asciiLower(raw)
	}
	return raw
}

// normalizeResourceName enforces the leading '/' MDD archives use for
// resource paths before any other normalization is applied.
func normalizeResourceName(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}
