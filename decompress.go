package mdict

import (
	"bytes"
	"encoding/binary"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Compression tags recognized in a block's frame header.
const (
	tagNone byte = 0x00
	tagLZO  byte = 0x01
	tagZlib byte = 0x02
)

// frameHeaderSize is the 4-byte (tag + 3 reserved) prefix, followed by a
// 4-byte Adler-32 checksum, before the codec payload begins.
const frameHeaderSize = 4 + 4

// decompressFramed decodes a framed block: tag byte, 3 reserved bytes,
// 4-byte big-endian Adler-32 checksum of the decompressed output, then the
// codec payload.
func decompressFramed(buf []byte) ([]byte, error) {
	if len(buf) < frameHeaderSize {
		return nil, errors.Wrap(ErrCorruptBlock, "block shorter than frame header")
	}
	tag := buf[0]
	wantChecksum := binary.BigEndian.Uint32(buf[4:8])
	payload := buf[frameHeaderSize:]

	out, err := decompressTagged(tag, payload)
	if err != nil {
		return nil, err
	}

	if got := adler32.Checksum(out); got != wantChecksum {
		return nil, errors.Wrapf(ErrCorruptBlock, "adler32 mismatch: got %#x want %#x", got, wantChecksum)
	}
	return out, nil
}

// decompressRawWithTag decompresses a buffer that carries no frame at all
// (no reserved bytes, no checksum), used only for v1.x key-info payloads,
// which are stored without one. The tag is supplied by the
// caller rather than read from the buffer, since there is nothing to read
// it from; v1.x key-info always calls this with tagNone.
func decompressRawWithTag(buf []byte, tag byte) ([]byte, error) {
	return decompressTagged(tag, buf)
}

func decompressTagged(tag byte, payload []byte) ([]byte, error) {
	switch tag {
	case tagNone:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case tagZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, errors.Wrap(ErrCorruptBlock, "zlib: "+err.Error())
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.Wrap(ErrCorruptBlock, "zlib: "+err.Error())
		}
		return out, nil
	case tagLZO:
		return nil, errors.Wrap(ErrUnsupportedCompression, "LZO compression is not linked")
	default:
		return nil, errors.Wrapf(ErrUnsupportedCompression, "unknown compression tag %#x", tag)
	}
}
