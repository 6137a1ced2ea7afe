package mdict

import (
	"encoding/binary"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// EncryptionFlag mirrors the header's Encryption= attribute, a small
// bitmask: bit0 marks record data as encrypted, bit1 marks the key index as
// encrypted. Both historically map to obsolete proprietary modes this
// package refuses to decode.
type EncryptionFlag uint8

const (
	encryptionRecordBit   EncryptionFlag = 1 << 0
	encryptionKeyIndexBit EncryptionFlag = 1 << 1
)

// RecordEncrypted reports whether record payloads require decryption.
func (f EncryptionFlag) RecordEncrypted() bool { return f&encryptionRecordBit != 0 }

// KeyIndexEncrypted reports whether the key index requires decryption.
func (f EncryptionFlag) KeyIndexEncrypted() bool { return f&encryptionKeyIndexBit != 0 }

// Header is the typed descriptor decoded from a dictionary's leading
// length-prefixed block.
type Header struct {
	EngineVersion    float64
	Format           string
	Encoding         string
	Encryption       EncryptionFlag
	KeyCaseSensitive bool
	StripKey         bool
	CreationDate     string
	Title            string
	Description      string
	StyleSheet       map[string][2]string

	// DataOffset is the absolute byte position where the key-info section
	// begins: header length + 4 (length field) + 4 (checksum field).
	DataOffset int64

	codec textCodec
}

// IsV2 reports whether this header selects the v2.x field widths.
func (h *Header) IsV2() bool { return h.EngineVersion >= 2.0 }

var headerAttrRE = regexp.MustCompile(`(\w+)="([^"]*)"`)

// parseHeader reads the 4-byte length prefix, decodes the UTF-16LE header
// text, and projects its attributes into a Header.
func parseHeader(r io.Reader) (*Header, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, errors.Wrap(err, "mdict: read header length")
	}
	// A zero-length header or one over 64 MiB means we are not looking at a
	// real MDict file (or the length field itself is corrupt).
	if length == 0 || length > 64<<20 {
		return nil, errors.Wrapf(ErrBadHeader, "implausible header length %d", length)
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(err, "mdict: read header bytes")
	}

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	text, err := utf16.NewDecoder().Bytes(raw)
	if err != nil {
		// Some writers omit the BOM; retry without expecting one before
		// giving up.
		text, err = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return nil, errors.Wrap(ErrBadHeader, "header is not valid UTF-16LE")
		}
	}
	headerStr := strings.TrimRight(string(text), "\x00")

	var checksum uint32
	if err := binary.Read(r, binary.BigEndian, &checksum); err != nil {
		return nil, errors.Wrap(err, "mdict: read header checksum")
	}
	_ = checksum // reserved; nothing verifies it

	h, err := parseHeaderAttrs(headerStr)
	if err != nil {
		return nil, err
	}
	h.DataOffset = int64(length) + 8
	return h, nil
}

func parseHeaderAttrs(headerStr string) (*Header, error) {
	matches := headerAttrRE.FindAllStringSubmatch(headerStr, -1)
	if matches == nil {
		return nil, errors.Wrap(ErrBadHeader, "no attributes found in header")
	}

	attrs := make(map[string]string, len(matches))
	for _, m := range matches {
		attrs[m[1]] = m[2]
	}

	version := 2.0
	if v, ok := attrs["GeneratedByEngineVersion"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			version = parsed
		}
	}

	encLabel := attrs["Encoding"]
	if encLabel == "" {
		encLabel = "UTF-8"
	}

	var encFlag EncryptionFlag
	if v, ok := attrs["Encryption"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			encFlag = EncryptionFlag(n)
		}
	}

	h := &Header{
		EngineVersion:    version,
		Format:           defaultStr(attrs["Format"], "Html"),
		Encoding:         encLabel,
		Encryption:       encFlag,
		KeyCaseSensitive: attrs["KeyCaseSensitive"] == "Yes",
		StripKey:         attrs["StripKey"] == "Yes",
		CreationDate:     attrs["CreationDate"],
		Title:            defaultStr(attrs["Title"], "Dictionary"),
		Description:      attrs["Description"],
		StyleSheet:       parseStyleSheet(attrs["StyleSheet"]),
		codec:            resolveEncoding(encLabel),
	}
	return h, nil
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parseStyleSheet parses the "number\tstyle_start\tstyle_end\r\n..." format
// some dictionaries use for the StyleSheet attribute. It is metadata only:
// preserved for collaborators (an HTML renderer) but never consulted for
// lookup.
func parseStyleSheet(raw string) map[string][2]string {
	sheet := make(map[string][2]string)
	if raw == "" {
		return sheet
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		sheet[parts[0]] = [2]string{parts[1], parts[2]}
	}
	return sheet
}
