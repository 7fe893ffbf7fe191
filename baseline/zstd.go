package baseline

// ZstdCompressor provides Zstandard compression, the strongest of the baseline compressors.
//
// Two implementations exist behind build tags:
//   - default: pure Go klauspost/compress/zstd with one shared encoder and decoder
//   - gozstd (with cgo): valyala/gozstd bindings to the reference C library
//
// Both produce standard zstd frames, so output is interchangeable.
type ZstdCompressor struct{}

var _ Compressor = (*ZstdCompressor)(nil)

// ZstdLevel is the zstd compression level used by both implementations.
const ZstdLevel = 3

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

func (c ZstdCompressor) Name() string { return "zstd" }
