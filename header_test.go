package mdict

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func buildHeaderBytes(t *testing.T, attrs string) []byte {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	headerBytes, err := enc.NewEncoder().Bytes([]byte(attrs))
	require.NoError(t, err)

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(len(headerBytes)))
	out.Write(headerBytes)
	binary.Write(&out, binary.BigEndian, uint32(0))
	return out.Bytes()
}

func TestParseHeader_DefaultsMissingEngineVersion(t *testing.T) {
	raw := buildHeaderBytes(t, `<Dictionary Encoding="UTF-8" Title="T" />`)
	h, err := parseHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 2.0, h.EngineVersion)
	assert.True(t, h.IsV2())
}

func TestParseHeader_UnknownEncodingDefaultsUTF8(t *testing.T) {
	raw := buildHeaderBytes(t, `<Dictionary GeneratedByEngineVersion="2.0" Encoding="Shift-JIS" Title="T" />`)
	h, err := parseHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", h.codec.name)
}

func TestParseHeader_EncryptionFlags(t *testing.T) {
	raw := buildHeaderBytes(t, `<Dictionary GeneratedByEngineVersion="2.0" Encoding="UTF-8" Encryption="2" Title="T" />`)
	h, err := parseHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, h.Encryption.KeyIndexEncrypted())
	assert.False(t, h.Encryption.RecordEncrypted())
}

func TestParseHeader_V1UsesSingleByteKeyLengths(t *testing.T) {
	raw := buildHeaderBytes(t, `<Dictionary GeneratedByEngineVersion="1.2" Encoding="UTF-8" Title="T" />`)
	h, err := parseHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.False(t, h.IsV2())
}

func TestParseHeader_TitleDefaultsWhenAbsent(t *testing.T) {
	raw := buildHeaderBytes(t, `<Dictionary GeneratedByEngineVersion="2.0" Encoding="UTF-8" />`)
	h, err := parseHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Dictionary", h.Title)
}

func TestParseHeader_ImplausibleLengthRejected(t *testing.T) {
	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(0))
	_, err := parseHeader(&out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestParseHeader_StyleSheetParsing(t *testing.T) {
	raw := buildHeaderBytes(t, `<Dictionary GeneratedByEngineVersion="2.0" Encoding="UTF-8" StyleSheet="1`+"\t"+`<b>`+"\t"+`</b>`+"\r\n"+`" Title="T" />`)
	h, err := parseHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, [2]string{"<b>", "</b>"}, h.StyleSheet["1"])
}
