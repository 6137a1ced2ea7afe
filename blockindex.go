package mdict

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// KeyBlockInfo describes one key block, in index order.
type KeyBlockInfo struct {
	CompressedSize   int64
	DecompressedSize int64
	NumEntries       int64
	FirstKey         string
	LastKey          string
	FileOffset       int64

	normFirst string
	normLast  string
}

// RecordBlockInfo describes one record block, in index order.
type RecordBlockInfo struct {
	CompressedSize   int64
	DecompressedSize int64
	FileOffset       int64
	LogicalOffset    int64
}

// blockIndex bundles both index arrays plus the derived offsets needed to
// seek directly to any block's payload.
type blockIndex struct {
	keyBlocks    []KeyBlockInfo
	recordBlocks []RecordBlockInfo

	totalLogicalSize int64 // sum of record block decompressed sizes
}

// buildBlockIndex reads the key-info and record-info sections starting at
// header.DataOffset and returns the two index arrays.
func buildBlockIndex(r io.ReadSeeker, h *Header) (*blockIndex, error) {
	if _, err := r.Seek(h.DataOffset, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "mdict: seek to key-info section")
	}

	v2 := h.IsV2()

	numKeyBlocks, err := readCount(r, v2)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: read num_key_blocks")
	}
	if _, err := readCount(r, v2); err != nil { // num_entries, unused here
		return nil, errors.Wrap(err, "mdict: read key-info num_entries")
	}
	if v2 {
		var decompSize uint64
		if err := binary.Read(r, binary.BigEndian, &decompSize); err != nil {
			return nil, errors.Wrap(err, "mdict: read key_info_decompressed_size")
		}
		var zeros [4]byte
		if _, err := io.ReadFull(r, zeros[:]); err != nil {
			return nil, errors.Wrap(err, "mdict: read key-info padding")
		}
	}
	keyInfoSize, err := readCount(r, v2)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: read key_info_size")
	}
	if _, err := readCount(r, v2); err != nil { // key_blocks_total_size, unused (recomputed below)
		return nil, errors.Wrap(err, "mdict: read key_blocks_total_size")
	}

	keyInfoRaw := make([]byte, keyInfoSize)
	if _, err := io.ReadFull(r, keyInfoRaw); err != nil {
		return nil, errors.Wrap(err, "mdict: read key-info payload")
	}

	var keyInfoData []byte
	if v2 {
		keyInfoData, err = decompressFramed(keyInfoRaw)
	} else {
		keyInfoData, err = decompressRawWithTag(keyInfoRaw, tagNone)
	}
	if err != nil {
		return nil, errors.Wrap(err, "mdict: decompress key-info")
	}

	keyBlocks, err := parseKeyBlockInfos(keyInfoData, numKeyBlocks, h)
	if err != nil {
		return nil, err
	}

	keyBlockPayloadStart, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: locate key-block payloads")
	}
	assignKeyBlockOffsets(keyBlocks, keyBlockPayloadStart)

	keyBlocksTotalSize := int64(0)
	for i := range keyBlocks {
		keyBlocksTotalSize += keyBlocks[i].CompressedSize
	}
	if _, err := r.Seek(keyBlockPayloadStart+keyBlocksTotalSize, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "mdict: seek to record-info section")
	}

	numRecordBlocks, err := readCount(r, v2)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: read num_record_blocks")
	}
	if _, err := readCount(r, v2); err != nil { // num_entries, unused here
		return nil, errors.Wrap(err, "mdict: read record-info num_entries")
	}
	recordInfoSize, err := readCount(r, v2)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: read record_info_size")
	}
	if _, err := readCount(r, v2); err != nil { // record_blocks_total_size, unused
		return nil, errors.Wrap(err, "mdict: read record_blocks_total_size")
	}

	recordInfoRaw := make([]byte, recordInfoSize)
	if _, err := io.ReadFull(r, recordInfoRaw); err != nil {
		return nil, errors.Wrap(err, "mdict: read record-info payload")
	}

	recordBlockPayloadStart, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: locate record-block payloads")
	}

	recordBlocks, totalLogicalSize, err := parseRecordBlockInfos(recordInfoRaw, numRecordBlocks, recordBlockPayloadStart)
	if err != nil {
		return nil, err
	}

	idx := &blockIndex{
		keyBlocks:        keyBlocks,
		recordBlocks:     recordBlocks,
		totalLogicalSize: totalLogicalSize,
	}
	if err := idx.validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

// readCount reads a count/size field whose width depends on the format
// version: 4 bytes for v1.x, 8 bytes big-endian for v2.x.
func readCount(r io.Reader, v2 bool) (int64, error) {
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

// readKeyLength reads the version-sized key-length prefix used both by the
// key-info descriptors' first/last key and by in-block key entries: 1 byte
// for v1.x, 2 bytes big-endian for v2.x.
func readKeyLength(r io.Reader, v2 bool) (int, error) {
	if v2 {
		var v uint16
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return 0, err
		}
		return int(v), nil
	}
	var v uint8
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseKeyBlockInfos(data []byte, numBlocks int64, h *Header) ([]KeyBlockInfo, error) {
	r := bytes.NewReader(data)
	v2 := h.IsV2()
	nulWidth := h.codec.nulWidth

	blocks := make([]KeyBlockInfo, numBlocks)
	for i := range blocks {
		var compressedSize, decompressedSize, numEntries uint64
		if err := binary.Read(r, binary.BigEndian, &compressedSize); err != nil {
			return nil, errors.Wrapf(ErrCorruptBlock, "key-info block %d: %v", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &decompressedSize); err != nil {
			return nil, errors.Wrapf(ErrCorruptBlock, "key-info block %d: %v", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &numEntries); err != nil {
			return nil, errors.Wrapf(ErrCorruptBlock, "key-info block %d: %v", i, err)
		}

		firstKey, err := readPaddedKey(r, v2, nulWidth, h)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptBlock, "key-info block %d first_key: %v", i, err)
		}
		lastKey, err := readPaddedKey(r, v2, nulWidth, h)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptBlock, "key-info block %d last_key: %v", i, err)
		}

		blocks[i] = KeyBlockInfo{
			CompressedSize:   int64(compressedSize),
			DecompressedSize: int64(decompressedSize),
			NumEntries:       int64(numEntries),
			FirstKey:         firstKey,
			LastKey:          lastKey,
			normFirst:        normalizeKey(firstKey, h),
			normLast:         normalizeKey(lastKey, h),
		}
	}
	return blocks, nil
}

// readPaddedKey reads a version-sized length prefix, the key bytes, and the
// codec's NUL padding (+1 byte for single-byte codecs, +2 for UTF-16).
func readPaddedKey(r io.Reader, v2 bool, nulWidth int, h *Header) (string, error) {
	length, err := readKeyLength(r, v2)
	if err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", err
	}
	pad := make([]byte, nulWidth)
	if _, err := io.ReadFull(r, pad); err != nil {
		return "", err
	}
	return h.codec.decode(raw)
}

func assignKeyBlockOffsets(blocks []KeyBlockInfo, start int64) {
	offset := start
	for i := range blocks {
		blocks[i].FileOffset = offset
		offset += blocks[i].CompressedSize
	}
}

func parseRecordBlockInfos(data []byte, numBlocks int64, payloadStart int64) ([]RecordBlockInfo, int64, error) {
	r := bytes.NewReader(data)
	blocks := make([]RecordBlockInfo, numBlocks)

	fileOffset := payloadStart
	var logicalOffset int64
	for i := range blocks {
		var compressedSize, decompressedSize uint64
		if err := binary.Read(r, binary.BigEndian, &compressedSize); err != nil {
			return nil, 0, errors.Wrapf(ErrCorruptBlock, "record-info block %d: %v", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &decompressedSize); err != nil {
			return nil, 0, errors.Wrapf(ErrCorruptBlock, "record-info block %d: %v", i, err)
		}

		blocks[i] = RecordBlockInfo{
			CompressedSize:   int64(compressedSize),
			DecompressedSize: int64(decompressedSize),
			FileOffset:       fileOffset,
			LogicalOffset:    logicalOffset,
		}
		fileOffset += int64(compressedSize)
		logicalOffset += int64(decompressedSize)
	}
	return blocks, logicalOffset, nil
}

// validate checks the invariants a well-formed index satisfies: key-block
// ranges are non-overlapping and monotone under the file's collation, and
// each block's first key sorts no later than its last.
func (idx *blockIndex) validate() error {
	prev := ""
	for i, b := range idx.keyBlocks {
		if b.normFirst > b.normLast {
			return errors.Wrapf(ErrCorruptBlock, "key block %d: first_key > last_key", i)
		}
		if i > 0 && b.normFirst < prev {
			return errors.Wrapf(ErrCorruptBlock, "key block %d: overlaps with preceding block", i)
		}
		prev = b.normLast
	}
	return nil
}

// findKeyBlock returns the index of the unique key block whose
// [first_key,last_key] range (under normalized comparison) could contain
// target, or -1 if none does. Blocks partition a sorted key space, so a
// binary search on the last keys is enough.
func (idx *blockIndex) findKeyBlock(target string) int {
	n := len(idx.keyBlocks)
	i := sort.Search(n, func(i int) bool {
		return idx.keyBlocks[i].normLast >= target
	})
	if i == n || target < idx.keyBlocks[i].normFirst {
		return -1
	}
	return i
}

// findRecordBlock returns the index of the record block whose logical
// address range contains logicalOffset, or -1 if the offset is past the
// end of the address space.
func (idx *blockIndex) findRecordBlock(logicalOffset int64) int {
	n := len(idx.recordBlocks)
	i := sort.Search(n, func(i int) bool {
		b := idx.recordBlocks[i]
		return b.LogicalOffset+b.DecompressedSize > logicalOffset
	})
	if i == n {
		return -1
	}
	return i
}
