//go:build !(cgo && gozstd)

package baseline

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// One encoder and one decoder serve every goroutine: EncodeAll and DecodeAll are
// safe for concurrent use, and the report analyzer runs baselines from its worker pool.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	errZstdInit error
)

func zstdCoders() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, errZstdInit = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(ZstdLevel)),
			zstd.WithEncoderCRC(false),
		)
		if errZstdInit != nil {
			errZstdInit = fmt.Errorf("zstd: create encoder: %w", errZstdInit)
			return
		}

		zstdDecoder, errZstdInit = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(0),
			zstd.WithDecoderMaxMemory(maxDecodedSize),
		)
		if errZstdInit != nil {
			errZstdInit = fmt.Errorf("zstd: create decoder: %w", errZstdInit)
		}
	})

	return zstdEncoder, zstdDecoder, errZstdInit
}

// Compress writes data as a single zstd frame without a content checksum, so
// sizes line up with the cgo build.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	enc, _, err := zstdCoders()
	if err != nil {
		return nil, err
	}

	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress decodes zstd frames. Frames that declare more than maxDecodedSize
// bytes are rejected.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	_, dec, err := zstdCoders()
	if err != nil {
		return nil, err
	}

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: decode frame: %w", err)
	}

	return out, nil
}
