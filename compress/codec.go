package compress

import (
	"fmt"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
)

// Codec turns a byte sequence into a compressed stream plus the metadata needed to reverse it.
//
// The compressed stream carries no header; the algorithm is known out-of-band and the
// metadata is the only side channel. For every finite input x:
//
//	compressed, meta, _ := codec.Compress(x)
//	original, _ := codec.Decompress(compressed, meta)
//	// bytes.Equal(original, x) == true
//
// Thread Safety: built-in codecs keep all transient state (code tables, dictionaries,
// interval bounds, pending bits) inside a single call, so one value may be shared
// between goroutines.
type Codec interface {
	// Algorithm returns the algorithm implemented by the codec.
	Algorithm() format.Algorithm

	// Compress compresses the input data.
	//
	// Empty input yields an empty compressed stream and a zeroed metadata record.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, Metadata, error)

	// Decompress reverses Compress using the metadata it produced.
	//
	// Error conditions:
	//   - errs.ErrAlgorithmMismatch if meta was produced by another codec
	//   - errs.ErrCorruptMetadata if meta is incomplete or disagrees with data
	//
	// No partial output is ever returned together with an error.
	Decompress(data []byte, meta Metadata) ([]byte, error)
}

// CompressionStats provides detailed information about compression operations.
//
// Stats are derived from a completed operation and never influence decoding.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.Algorithm

	// OriginalSize is the size of uncompressed data
	OriginalSize int64

	// CompressedSize is the size of compressed data
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the data
	CompressionTimeNs int64

	// DecompressionTimeNs is the time taken to decompress the data (if applicable)
	DecompressionTimeNs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Values equal to 1.0 indicate no compression benefit.
// Values greater than 1.0 indicate expansion.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSaved returns the number of bytes saved by compression (negative on expansion).
func (s CompressionStats) SpaceSaved() int64 {
	return s.OriginalSize - s.CompressedSize
}

// SpaceSavings returns the space savings as a percentage.
//
// Higher values indicate better compression.
//
// Returns:
//   - float64: Space savings percentage (0 when original size is zero)
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a Codec based on the specified algorithm.
//
// Parameters:
//   - algorithm: Algorithm (Huffman, LZW, or Arithmetic)
//
// Returns:
//   - Codec: Codec instance for the specified algorithm
//   - error: errs.ErrUnsupportedAlgorithm for values outside the enumeration
func CreateCodec(algorithm format.Algorithm) (Codec, error) {
	switch algorithm {
	case format.AlgorithmHuffman:
		return NewHuffmanCodec(), nil
	case format.AlgorithmLZW:
		return NewLZWCodec(), nil
	case format.AlgorithmArithmetic:
		return NewArithmeticCodec(), nil
	default:
		return nil, fmt.Errorf("%w: 0x%x", errs.ErrUnsupportedAlgorithm, uint8(algorithm))
	}
}

var builtinCodecs = map[format.Algorithm]Codec{
	format.AlgorithmHuffman:    NewHuffmanCodec(),
	format.AlgorithmLZW:        NewLZWCodec(),
	format.AlgorithmArithmetic: NewArithmeticCodec(),
}

// GetCodec retrieves a built-in Codec for the specified algorithm.
func GetCodec(algorithm format.Algorithm) (Codec, error) {
	if codec, ok := builtinCodecs[algorithm]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedAlgorithm, algorithm)
}

// checkMetadata verifies that meta belongs to want and is internally consistent.
func checkMetadata(want format.Algorithm, meta Metadata) error {
	if meta == nil {
		return fmt.Errorf("%w: %s metadata is missing", errs.ErrCorruptMetadata, want)
	}
	if meta.Algorithm() != want {
		return fmt.Errorf("%w: expected %s metadata, got %s", errs.ErrAlgorithmMismatch, want, meta.Algorithm())
	}

	return meta.Validate()
}
