package baseline

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Level selects how hard the S2 encoder searches for matches.
type S2Level uint8

const (
	// S2Default is the fastest S2 encoder.
	S2Default S2Level = iota
	// S2Better trades some speed for a ratio close to Snappy's best.
	S2Better
	// S2Best spends the most time and gives the smallest S2 output.
	S2Best
)

// S2Compressor measures S2 block encoding at a fixed effort level.
//
// Reports show S2 as the "fast LZ77" reference point: a codec that beats it on ratio
// for a category of files is worth its slower speed there.
type S2Compressor struct {
	level S2Level
}

var _ Compressor = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 compressor at S2Default.
func NewS2Compressor() S2Compressor {
	return S2Compressor{level: S2Default}
}

// NewS2CompressorLevel creates an S2 compressor at the given level.
// Unknown levels fall back to S2Default.
func NewS2CompressorLevel(level S2Level) S2Compressor {
	if level > S2Best {
		level = S2Default
	}

	return S2Compressor{level: level}
}

// Name returns "s2", "s2-better" or "s2-best" so levels stay apart in summaries.
func (c S2Compressor) Name() string {
	switch c.level {
	case S2Better:
		return "s2-better"
	case S2Best:
		return "s2-best"
	default:
		return "s2"
	}
}

func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch c.level {
	case S2Better:
		return s2.EncodeBetter(nil, data), nil
	case S2Best:
		return s2.EncodeBest(nil, data), nil
	default:
		return s2.Encode(nil, data), nil
	}
}

// Decompress decodes an S2 block of any level.
//
// The decoded length in the block header is checked against maxDecodedSize before
// any output is allocated.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2: read block header: %w", err)
	}
	if n > maxDecodedSize {
		return nil, fmt.Errorf("s2: decoded size %d exceeds %d", n, maxDecodedSize)
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("s2: decode block: %w", err)
	}

	return out, nil
}
