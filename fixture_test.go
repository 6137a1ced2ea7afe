package mdict

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/adler32"
	"os"
	"strconv"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

// fixtureEntry is one (key, payload) pair used to build a synthetic .mdx or
// .mdd file for tests. Payload is UTF-8 definition text for .mdx fixtures,
// or raw bytes for .mdd fixtures.
type fixtureEntry struct {
	key     string
	payload []byte
}

// fixtureOpts configures buildArchive. keyBlocks partitions the flattened,
// already-sorted key order into one or more key blocks; payloads are
// concatenated in flattened key order into a single record block unless
// recordBlockSplit carves them into several.
type fixtureOpts struct {
	version          float64
	encoding         string
	encryption       string
	keyCaseSensitive bool
	stripKey         bool
	keyBlocks        [][]fixtureEntry
	compressKey      bool
	compressRecord   bool
	// recordBlockSplit, if non-empty, gives the byte length of each record
	// block in turn (summing to the total payload length); if empty, all
	// payload bytes form a single record block.
	recordBlockSplit []int
}

func buildArchive(t *testing.T, o fixtureOpts) []byte {
	t.Helper()

	var flat []fixtureEntry
	for _, b := range o.keyBlocks {
		flat = append(flat, b...)
	}

	// --- record space: concatenate all payloads ---
	var recordSpace bytes.Buffer
	for _, e := range flat {
		recordSpace.Write(e.payload)
	}
	allBytes := recordSpace.Bytes()

	splits := o.recordBlockSplit
	if len(splits) == 0 {
		splits = []int{len(allBytes)}
	}

	var recordBlockPayloads [][]byte
	var recordBlockInfoBuf bytes.Buffer
	pos := 0
	for _, n := range splits {
		chunk := allBytes[pos : pos+n]
		pos += n
		framed := frameCompress(t, chunk, o.compressRecord)
		recordBlockPayloads = append(recordBlockPayloads, framed)
		binary.Write(&recordBlockInfoBuf, binary.BigEndian, uint64(len(framed)))
		binary.Write(&recordBlockInfoBuf, binary.BigEndian, uint64(n))
	}

	v2 := o.version >= 2.0
	nulWidth := 1
	if normalizeEncodingLabel(o.encoding) == "UTF16" || normalizeEncodingLabel(o.encoding) == "UTF16LE" {
		nulWidth = 2
	}

	// --- key blocks ---
	var keyBlockPayloads [][]byte
	var keyInfoBuf bytes.Buffer
	offset := 0
	for _, block := range o.keyBlocks {
		var decoded bytes.Buffer
		for _, e := range block {
			// Record offsets inside key entries are 4 bytes in v1.x files
			// and 8 bytes in v2.x files.
			if v2 {
				binary.Write(&decoded, binary.BigEndian, uint64(offset))
			} else {
				binary.Write(&decoded, binary.BigEndian, uint32(offset))
			}
			decoded.Write(encodeFixtureKey(t, e.key, o.encoding))
			decoded.Write(make([]byte, nulWidth))
			offset += len(e.payload)
		}
		framed := frameCompress(t, decoded.Bytes(), o.compressKey)
		keyBlockPayloads = append(keyBlockPayloads, framed)

		binary.Write(&keyInfoBuf, binary.BigEndian, uint64(len(framed)))
		binary.Write(&keyInfoBuf, binary.BigEndian, uint64(decoded.Len()))
		binary.Write(&keyInfoBuf, binary.BigEndian, uint64(len(block)))
		writePaddedKey(&keyInfoBuf, block[0].key, o.encoding, v2, nulWidth)
		writePaddedKey(&keyInfoBuf, block[len(block)-1].key, o.encoding, v2, nulWidth)
	}

	keyInfoRaw := keyInfoBuf.Bytes()
	var keyInfoSection []byte
	if v2 {
		keyInfoSection = frameCompress(t, keyInfoRaw, true)
	} else {
		keyInfoSection = keyInfoRaw
	}

	// --- assemble header ---
	kc := "No"
	if o.keyCaseSensitive {
		kc = "Yes"
	}
	sk := "No"
	if o.stripKey {
		sk = "Yes"
	}
	headerStr := `<Dictionary GeneratedByEngineVersion="` + ftoa(o.version) + `" Encoding="` + o.encoding +
		`" Encryption="` + o.encryption + `" KeyCaseSensitive="` + kc + `" StripKey="` + sk +
		`" Title="Fixture" Description="test fixture" />`

	utf16enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	headerBytes, err := utf16enc.NewEncoder().Bytes([]byte(headerStr))
	if err != nil {
		t.Fatalf("encode header: %v", err)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(len(headerBytes)))
	out.Write(headerBytes)
	binary.Write(&out, binary.BigEndian, uint32(0)) // checksum, unverified

	// key-info header fields
	writeCount(&out, v2, int64(len(o.keyBlocks)))
	writeCount(&out, v2, int64(len(flat)))
	if v2 {
		binary.Write(&out, binary.BigEndian, uint64(len(keyInfoRaw)))
		out.Write(make([]byte, 4))
	}
	writeCount(&out, v2, int64(len(keyInfoSection)))
	totalKeyBlockSize := 0
	for _, p := range keyBlockPayloads {
		totalKeyBlockSize += len(p)
	}
	writeCount(&out, v2, int64(totalKeyBlockSize))
	out.Write(keyInfoSection)

	for _, p := range keyBlockPayloads {
		out.Write(p)
	}

	// record-info section (always uncompressed, 8-byte pairs)
	writeCount(&out, v2, int64(len(splits)))
	writeCount(&out, v2, int64(len(flat)))
	writeCount(&out, v2, int64(recordBlockInfoBuf.Len()))
	totalRecordBlockSize := 0
	for _, p := range recordBlockPayloads {
		totalRecordBlockSize += len(p)
	}
	writeCount(&out, v2, int64(totalRecordBlockSize))
	out.Write(recordBlockInfoBuf.Bytes())

	for _, p := range recordBlockPayloads {
		out.Write(p)
	}

	return out.Bytes()
}

func writeCount(buf *bytes.Buffer, v2 bool, v int64) {
	if v2 {
		binary.Write(buf, binary.BigEndian, uint64(v))
	} else {
		binary.Write(buf, binary.BigEndian, uint32(v))
	}
}

func writePaddedKey(buf *bytes.Buffer, key, encoding string, v2 bool, nulWidth int) {
	enc := encodeFixtureKey(nil, key, encoding)
	if v2 {
		binary.Write(buf, binary.BigEndian, uint16(len(enc)))
	} else {
		binary.Write(buf, binary.BigEndian, uint8(len(enc)))
	}
	buf.Write(enc)
	buf.Write(make([]byte, nulWidth))
}

func encodeFixtureKey(t *testing.T, key, encoding string) []byte {
	if normalizeEncodingLabel(encoding) == "UTF16" || normalizeEncodingLabel(encoding) == "UTF16LE" {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		b, err := enc.NewEncoder().Bytes([]byte(key))
		if err != nil {
			if t != nil {
				t.Fatalf("encode key %q: %v", key, err)
			}
			return []byte(key)
		}
		return b
	}
	return []byte(key)
}

// frameCompress builds a framed block: tag + 3 reserved bytes, 4-byte
// big-endian Adler-32 of the decompressed bytes, then the codec payload.
func frameCompress(t *testing.T, decompressed []byte, compress bool) []byte {
	var buf bytes.Buffer
	if compress {
		buf.WriteByte(tagZlib)
	} else {
		buf.WriteByte(tagNone)
	}
	buf.Write(make([]byte, 3))
	binary.Write(&buf, binary.BigEndian, adler32.Checksum(decompressed))

	if compress {
		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		if _, err := zw.Write(decompressed); err != nil {
			t.Fatalf("zlib write: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("zlib close: %v", err)
		}
		buf.Write(zbuf.Bytes())
	} else {
		buf.Write(decompressed)
	}
	return buf.Bytes()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.mdx")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}
