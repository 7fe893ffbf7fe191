// Package squash provides lossless byte codecs for reducing the size of files bound for
// cloud storage.
//
// Three codecs implement one contract: compress a byte sequence into a stream plus a
// metadata record, and reverse it given both. The stream carries no header; the metadata
// is the only side channel and is persisted as a sibling JSON or CBOR document.
//
// # Core Features
//
//   - Static Huffman coding over bytes, with an explicit code table in the metadata
//   - 12-bit LZW dictionary coding, capped at 4096 entries
//   - Order-0 arithmetic coding with 32-bit integer interval arithmetic
//   - Metadata persisted as JSON or canonical CBOR next to the compressed file
//   - File type detection, codec benchmarking and a simulated cloud bucket
//
// # Basic Usage
//
// Compressing and restoring a byte slice:
//
//	import "github.com/arloliu/squash"
//
//	compressed, meta, err := squash.Compress(squash.Huffman, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	original, err := squash.Decompress(squash.Huffman, compressed, meta)
//
// Compressing a file, with the metadata written to "data.bin.huf.metadata.json":
//
//	stats, err := squash.CompressFile(squash.LZW, "data.bin", "data.bin.huf")
//	fmt.Printf("ratio %.3f\n", stats.CompressionRatio())
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the compress, metadata and
// filecodec packages, simplifying the most common use cases. For fine-grained control,
// use those packages directly:
//
//   - compress: the codecs and their metadata types
//   - metadata: JSON and CBOR persistence of metadata records
//   - filecodec: file-to-file compression with sibling metadata documents
//   - analysis: file type detection and codec recommendations
//   - report: codec benchmarking over files and directories
//   - storage: a local directory posing as a cloud bucket
package squash

import (
	"github.com/arloliu/squash/compress"
	"github.com/arloliu/squash/filecodec"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/metadata"
)

// Algorithm aliases for the supported codecs.
const (
	Huffman    = format.AlgorithmHuffman
	LZW        = format.AlgorithmLZW
	Arithmetic = format.AlgorithmArithmetic
)

// Compress compresses data with the given algorithm.
//
// Parameters:
//   - alg: Codec to use
//   - data: Input bytes, not modified
//
// Returns:
//   - []byte: Compressed stream, owned by the caller
//   - compress.Metadata: Record needed by Decompress
//   - error: errs.ErrUnsupportedAlgorithm or codec errors
func Compress(alg format.Algorithm, data []byte) ([]byte, compress.Metadata, error) {
	codec, err := compress.GetCodec(alg)
	if err != nil {
		return nil, nil, err
	}

	return codec.Compress(data)
}

// Decompress reverses Compress.
func Decompress(alg format.Algorithm, data []byte, meta compress.Metadata) ([]byte, error) {
	codec, err := compress.GetCodec(alg)
	if err != nil {
		return nil, err
	}

	return codec.Decompress(data, meta)
}

// MarshalMetadata serializes meta as a JSON document.
func MarshalMetadata(meta compress.Metadata) ([]byte, error) {
	return metadata.Marshal(meta, format.MetadataJSON)
}

// UnmarshalMetadata parses a JSON metadata document produced for alg.
func UnmarshalMetadata(doc []byte, alg format.Algorithm) (compress.Metadata, error) {
	return metadata.Unmarshal(doc, alg, format.MetadataJSON)
}

// CompressFile compresses src into dst and writes the metadata to dst + ".metadata.json".
//
// Use filecodec.New for CBOR metadata or logging.
func CompressFile(alg format.Algorithm, src, dst string) (compress.CompressionStats, error) {
	adapter, err := filecodec.ForAlgorithm(alg)
	if err != nil {
		return compress.CompressionStats{Algorithm: alg}, err
	}

	return adapter.CompressFile(src, dst)
}

// DecompressFile decompresses src into dst using the sibling metadata document of src.
func DecompressFile(alg format.Algorithm, src, dst string) (compress.CompressionStats, error) {
	adapter, err := filecodec.ForAlgorithm(alg)
	if err != nil {
		return compress.CompressionStats{Algorithm: alg}, err
	}

	return adapter.DecompressFile(src, dst)
}
