//go:build cgo && gozstd

package baseline

import (
	"github.com/valyala/gozstd"
)

// Compress compresses the input data using the reference zstd library.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, ZstdLevel), nil
}

// Decompress decompresses zstd frames using the reference zstd library.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
