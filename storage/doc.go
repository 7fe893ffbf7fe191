// Package storage simulates a minimal cloud object store backed by a local directory.
//
// A Simulator models upload and download bandwidth, a storage and transfer pricing
// model and transfer latency. Objects can be stored raw or compressed with one of the
// squash codecs, in which case the compressed stream, its metadata document and an
// info record are stored side by side:
//
//	<name>.compressed     compressed stream
//	<name>.metadata.json  codec metadata
//	<name>.info.json      original name, size, algorithm and xxHash64 checksum
//
// Downloads reverse the compression and verify the checksum.
package storage
