package mdict

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// store is the block-indexed reader shared by TextDictionary and
// ResourceArchive. The two public types differ only in how they decode a
// located payload (text vs opaque bytes) and in whether resource-name
// normalization applies; everything else (opening, the header, the index,
// key search, and record reads) lives here.
type store struct {
	path       string
	header     *Header
	index      *blockIndex
	isResource bool
}

// openStore parses the header, refuses key-index encryption immediately,
// and builds the block index. Record-level encryption is tolerated here and
// rejected on the first read that would need decrypted data.
func openStore(path string, isResource bool) (*store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "mdict: open")
	}
	defer f.Close()

	h, err := parseHeader(f)
	if err != nil {
		return nil, err
	}
	if h.Encryption.KeyIndexEncrypted() {
		return nil, errors.Wrap(ErrUnsupportedEncryption, "key index is encrypted")
	}

	idx, err := buildBlockIndex(f, h)
	if err != nil {
		return nil, err
	}

	return &store{path: path, header: h, index: idx, isResource: isResource}, nil
}

// withFile opens a fresh handle for one request and closes it on return,
// so concurrent lookups never share a seek position.
func (s *store) withFile(fn func(io.ReadSeeker) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(err, "mdict: open")
	}
	defer f.Close()
	return fn(f)
}

// normalize applies the header's StripKey/KeyCaseSensitive rules, and for
// resource archives additionally enforces a leading '/'.
func (s *store) normalize(key string) string {
	if s.isResource {
		key = normalizeResourceName(key)
	}
	return normalizeKey(key, s.header)
}

// readRecord locates and decompresses the record block(s) holding
// [logicalOffset, logicalOffset+length) and returns the raw bytes. Records
// that run past the end of their block (dictionary writers do not produce
// them in practice) are handled by continuing into the next block rather
// than truncating.
func (s *store) readRecord(logicalOffset, length int64) ([]byte, error) {
	out := make([]byte, 0, length)

	err := s.withFile(func(f io.ReadSeeker) error {
		remainingOffset := logicalOffset
		remainingLength := length

		for remainingLength > 0 {
			bi := s.index.findRecordBlock(remainingOffset)
			if bi < 0 {
				return errors.Wrapf(ErrCorruptBlock, "no record block covers logical offset %d", remainingOffset)
			}
			block := s.index.recordBlocks[bi]

			data, err := s.decompressRecordBlock(f, block)
			if err != nil {
				return err
			}

			withinBlock := remainingOffset - block.LogicalOffset
			if withinBlock < 0 || withinBlock > int64(len(data)) {
				return errors.Wrap(ErrCorruptBlock, "record offset outside decompressed block")
			}

			avail := int64(len(data)) - withinBlock
			take := remainingLength
			if take > avail {
				take = avail // clamp to block end; continue from the next block
			}
			out = append(out, data[withinBlock:withinBlock+take]...)

			remainingOffset += take
			remainingLength -= take

			if take == 0 {
				// Nothing left to read and nothing consumed: avoid spinning.
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store) decompressRecordBlock(f io.ReadSeeker, block RecordBlockInfo) ([]byte, error) {
	if s.header.Encryption.RecordEncrypted() {
		return nil, errors.Wrap(ErrUnsupportedEncryption, "record data is encrypted")
	}
	if _, err := f.Seek(block.FileOffset, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "mdict: seek to record block")
	}
	buf := make([]byte, block.CompressedSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, errors.Wrap(err, "mdict: read record block")
	}
	data, err := decompressFramed(buf)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != block.DecompressedSize {
		return nil, errors.Wrapf(ErrCorruptBlock, "record block decompressed to %d bytes, expected %d", len(data), block.DecompressedSize)
	}
	return data, nil
}

// HeaderInfo is the read-only metadata summary both reader types expose.
type HeaderInfo struct {
	Title       string
	Description string
	Encoding    string
	EntryCount  int64
}

func (s *store) headerInfo() HeaderInfo {
	var entries int64
	for _, b := range s.index.keyBlocks {
		entries += b.NumEntries
	}
	return HeaderInfo{
		Title:       s.header.Title,
		Description: s.header.Description,
		Encoding:    s.header.codec.name,
		EntryCount:  entries,
	}
}

func (s *store) close() error { return nil } // per-request handles; nothing to hold open
