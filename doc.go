/*

Package mdict is a reader for the MDict family of binary dictionary files:
the `.mdx` format (text/HTML definitions keyed by words) and the `.mdd`
format (arbitrary resource blobs keyed by virtual paths).

This is not a full implementation of every historical MDict feature, and
purposefully refuses the obsolete proprietary encryption modes rather than
decoding them; it is primarily intended to back a desktop or CLI lookup
tool.

On-disk layout:

	[4B big-endian header length][header, UTF-16LE XML][4B checksum]
	[key-info section][key-block payloads]
	[record-info section][record-block payloads]

The key-info section describes one KeyBlockInfo per key block (first/last
key, compressed/decompressed size, entry count); the record-info section
describes one RecordBlockInfo per record block the same way. A lookup binary
searches the key-info array for the block whose [first,last] range contains
the query, decompresses only that block, then binary searches the
record-info array for the block holding the matched entry's logical offset
and decompresses only that one.

Observed header attributes (not exhaustive):

	GeneratedByEngineVersion  float, defaults to 2.0 if absent
	Encoding                  UTF-8 | UTF-16 | GBK | GB18030 | BIG5 | Latin-1
	Encryption                decimal bitmask; bit0=record data encrypted,
	                          bit1=key index encrypted
	KeyCaseSensitive          Yes | No
	StripKey                  Yes | No
	Title, Description, CreationDate, StyleSheet

*/
package mdict
