package baseline

// maxDecodedSize bounds the output of any baseline Decompress, so a corrupt
// stream cannot make a report run allocate without limit.
const maxDecodedSize = 128 * 1024 * 1024

// Compressor is a self-framing block compressor.
type Compressor interface {
	// Name returns the short lower-case name shown in reports.
	Name() string

	// Compress compresses data. Empty input yields nil.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress. Empty input yields nil.
	Decompress(data []byte) ([]byte, error)
}

// All returns every baseline compressor in report order.
func All() []Compressor {
	return []Compressor{
		NewZstdCompressor(),
		NewS2Compressor(),
		NewLZ4Compressor(),
	}
}
