package mdict

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// keyEntry is one decoded (offset, key) pair from inside a decompressed key
// block.
type keyEntry struct {
	offset int64
	key    string // display form, as decoded by the codec
	norm   string // normalized form, for comparison
}

// search locates the key block whose [first_key,last_key] range contains
// the normalized query, decodes it, and scans for an exact match.
// It returns found=false (no error) when the key genuinely is not present.
func (s *store) search(query string) (canonicalKey string, offset, length int64, found bool, err error) {
	target := s.normalize(query)

	blockIdx := s.index.findKeyBlock(target)
	if blockIdx < 0 {
		return "", 0, 0, false, nil
	}

	var entries []keyEntry
	err = s.withFile(func(f io.ReadSeeker) error {
		var readErr error
		entries, readErr = s.readKeyBlockEntries(f, blockIdx)
		return readErr
	})
	if err != nil {
		return "", 0, 0, false, err
	}

	for i, e := range entries {
		if e.norm != target {
			continue
		}

		var recordLength int64
		switch {
		case i < len(entries)-1:
			recordLength = entries[i+1].offset - e.offset
		case blockIdx == len(s.index.keyBlocks)-1:
			recordLength = s.index.totalLogicalSize - e.offset
		default:
			nextOffset, nerr := s.firstEntryOffset(blockIdx + 1)
			if nerr != nil {
				return "", 0, 0, false, nerr
			}
			recordLength = nextOffset - e.offset
		}
		if recordLength < 0 {
			return "", 0, 0, false, errors.Wrap(ErrCorruptBlock, "negative record length")
		}
		return e.key, e.offset, recordLength, true, nil
	}

	return "", 0, 0, false, nil
}

// readKeyBlockEntries decompresses key block blockIdx and decodes every
// (offset, key) entry inside it, in file order.
func (s *store) readKeyBlockEntries(f io.ReadSeeker, blockIdx int) ([]keyEntry, error) {
	block := s.index.keyBlocks[blockIdx]

	if _, err := f.Seek(block.FileOffset, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "mdict: seek to key block")
	}
	buf := make([]byte, block.CompressedSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, errors.Wrap(err, "mdict: read key block")
	}
	data, err := decompressFramed(buf)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != block.DecompressedSize {
		return nil, errors.Wrapf(ErrCorruptBlock, "key block decompressed to %d bytes, expected %d", len(data), block.DecompressedSize)
	}

	r := bytes.NewReader(data)
	nulWidth := s.header.codec.nulWidth
	v2 := s.header.IsV2()
	entries := make([]keyEntry, 0, block.NumEntries)

	for i := int64(0); i < block.NumEntries; i++ {
		offset, err := readRecordOffset(r, v2)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptBlock, "key block %d entry %d: buffer drained early reading offset", blockIdx, i)
		}
		key, err := readNulTerminatedKey(r, nulWidth, s.header)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptBlock, "key block %d entry %d: %v", blockIdx, i, err)
		}
		entries = append(entries, keyEntry{
			offset: offset,
			key:    key,
			norm:   s.normalize(key),
		})
	}
	if int64(len(entries)) != block.NumEntries {
		return nil, errors.Wrapf(ErrCorruptBlock, "key block %d: declared %d entries, decoded %d", blockIdx, block.NumEntries, len(entries))
	}
	return entries, nil
}

// readRecordOffset reads one key entry's logical record offset: 4 bytes for
// v1.x files, 8 bytes big-endian for v2.x.
func readRecordOffset(r io.Reader, v2 bool) (int64, error) {
	if v2 {
		var v uint64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return 0, err
		}
		return int64(v), nil
	}
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return int64(v), nil
}

// readNulTerminatedKey scans bytes up to (and consuming) the codec's NUL
// terminator (1 byte for single-byte-compatible codecs, 2 for UTF-16LE).
func readNulTerminatedKey(r *bytes.Reader, nulWidth int, h *Header) (string, error) {
	var raw []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", errors.Wrap(ErrCorruptBlock, "buffer drained before NUL terminator")
		}
		if nulWidth == 2 {
			// UTF-16 code units are read as aligned pairs, so a zero byte
			// inside a unit (e.g. the high byte of 'a') is not a terminator.
			b2, err := r.ReadByte()
			if err != nil {
				return "", errors.Wrap(ErrCorruptBlock, "buffer drained before UTF-16 NUL terminator")
			}
			if b == 0 && b2 == 0 {
				break
			}
			raw = append(raw, b, b2)
			continue
		}
		if b == 0 {
			break
		}
		raw = append(raw, b)
	}
	return h.codec.decode(raw)
}

// firstEntryOffset decompresses key block blockIdx just far enough to
// recover its first entry's logical offset, used when a matched entry is
// the last in its block and its record length must be derived from the
// following block's first entry.
func (s *store) firstEntryOffset(blockIdx int) (int64, error) {
	var offset int64
	err := s.withFile(func(f io.ReadSeeker) error {
		entries, err := s.readKeyBlockEntries(f, blockIdx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.Wrap(ErrCorruptBlock, "key block has zero entries")
		}
		offset = entries[0].offset
		return nil
	})
	return offset, err
}
