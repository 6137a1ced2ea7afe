package mdict

import "github.com/pkg/errors"

// Sentinel errors for the failure classes a reader can hit. Callers should
// compare against these with errors.Is (or unwrap with errors.Cause, since
// every return site wraps one of these with github.com/pkg/errors to attach
// a stack and a short description of what was being read).
var (
	// ErrBadHeader indicates an implausible header length, a UTF-16 decode
	// failure, or unparseable header attributes.
	ErrBadHeader = errors.New("mdict: bad header")

	// ErrUnsupportedCompression indicates a compression tag of 0x01 (LZO,
	// for which no backend is linked) or an unrecognized tag.
	ErrUnsupportedCompression = errors.New("mdict: unsupported compression")

	// ErrUnsupportedEncryption indicates a non-trivial Encryption flag.
	ErrUnsupportedEncryption = errors.New("mdict: unsupported encryption")

	// ErrCorruptBlock indicates an Adler-32 checksum mismatch, a
	// decompressed size disagreeing with the index, or a key-block entry
	// count that drained the buffer prematurely.
	ErrCorruptBlock = errors.New("mdict: corrupt block")
)

// A key that is simply absent is not an error: Lookup and Locate report it
// through their found return value instead.
