package compress

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/pool"
)

const (
	// LZWCodeSize is the fixed width of an emitted LZW code in bits.
	LZWCodeSize = 12
	// LZWMaxDictSize is the dictionary cap; once reached, no further entries are added.
	LZWMaxDictSize = 1 << LZWCodeSize

	lzwInitialDictSize = 256
)

// LZWCodec implements Lempel-Ziv-Welch dictionary coding with fixed 12-bit codes.
//
// The dictionary starts with the 256 single-byte strings and grows by one entry per
// emitted code until it holds 4096 entries, after which it is frozen.
// Codes are packed most significant bit first into a contiguous bit stream.
//
// Characteristics:
//   - Best for: repetitive input with recurring substrings
//   - Worst case: short or random input, where 12-bit codes exceed 8-bit bytes
type LZWCodec struct{}

var _ Codec = (*LZWCodec)(nil)

// NewLZWCodec creates a new LZW codec.
//
// Returns:
//   - LZWCodec: New LZW codec instance
func NewLZWCodec() LZWCodec {
	return LZWCodec{}
}

// Algorithm returns format.AlgorithmLZW.
func (c LZWCodec) Algorithm() format.Algorithm {
	return format.AlgorithmLZW
}

// Compress compresses the input data using LZW.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: ceil(len(codes)*12/8) bytes of packed codes (nil if input is empty)
//   - Metadata: *LZWMetadata listing the emitted codes
//   - error: Bit writer error if any
func (c LZWCodec) Compress(data []byte) ([]byte, Metadata, error) {
	codes := lzwEncode(data)
	meta := &LZWMetadata{
		Codes:       codes,
		CodeSize:    LZWCodeSize,
		MaxDictSize: LZWMaxDictSize,
	}
	if len(codes) == 0 {
		return nil, meta, nil
	}

	buf := pool.GetCodecBuffer()
	defer pool.PutCodecBuffer(buf)

	w := bitio.NewWriter(buf)
	for _, code := range codes {
		if err := w.WriteBits(uint64(code)&(LZWMaxDictSize-1), LZWCodeSize); err != nil { //nolint: gosec
			return nil, nil, fmt.Errorf("lzw: write code: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, nil, fmt.Errorf("lzw: flush bits: %w", err)
	}

	return buf.Clone(), meta, nil
}

// Decompress decompresses an LZW stream.
//
// The packed stream is unpacked into codes and cross-checked against the code list in
// the metadata, then the dictionary is rebuilt code by code. A code equal to the next
// free dictionary slot is resolved as previous string plus its own first byte.
//
// Parameters:
//   - data: Compressed data
//   - meta: *LZWMetadata produced by Compress
//
// Returns:
//   - []byte: Decompressed data (nil if there are no codes)
//   - error: errs.ErrCorruptMetadata or errs.ErrAlgorithmMismatch
func (c LZWCodec) Decompress(data []byte, meta Metadata) ([]byte, error) {
	if err := checkMetadata(format.AlgorithmLZW, meta); err != nil {
		return nil, err
	}
	m, _ := meta.(*LZWMetadata)

	expected := (len(m.Codes)*LZWCodeSize + 7) / 8
	if len(data) != expected {
		return nil, fmt.Errorf("%w: stream has %d bytes, %d codes need %d",
			errs.ErrCorruptMetadata, len(data), len(m.Codes), expected)
	}
	if len(m.Codes) == 0 {
		return nil, nil
	}

	r := bitio.NewReader(bytes.NewReader(data))
	for i, want := range m.Codes {
		got, err := r.ReadBits(LZWCodeSize)
		if err != nil {
			return nil, fmt.Errorf("%w: unpack code %d: %v", errs.ErrCorruptMetadata, i, err)
		}
		if int(got) != want { //nolint: gosec
			return nil, fmt.Errorf("%w: code %d is %d in stream, %d in metadata", errs.ErrCorruptMetadata, i, got, want)
		}
	}

	return lzwDecode(m.Codes)
}

// lzwEncode returns the code sequence for data.
//
// The dictionary key is prefix code << 8 | next byte, which identifies every
// dictionary string uniquely without materializing it.
func lzwEncode(data []byte) []int {
	codes := []int{}
	if len(data) == 0 {
		return codes
	}

	dict := make(map[uint32]int, LZWMaxDictSize-lzwInitialDictSize)
	next := lzwInitialDictSize
	current := int(data[0])

	for _, b := range data[1:] {
		key := uint32(current)<<8 | uint32(b) //nolint: gosec
		if code, ok := dict[key]; ok {
			current = code
			continue
		}

		codes = append(codes, current)
		if next < LZWMaxDictSize {
			dict[key] = next
			next++
		}
		current = int(b)
	}
	codes = append(codes, current)

	return codes
}

// lzwDecode rebuilds the dictionary while expanding codes.
func lzwDecode(codes []int) ([]byte, error) {
	table := make([][]byte, lzwInitialDictSize, LZWMaxDictSize)
	for i := range table {
		table[i] = []byte{byte(i)}
	}

	first := codes[0]
	if first >= lzwInitialDictSize {
		return nil, fmt.Errorf("%w: first code %d is not a literal", errs.ErrCorruptMetadata, first)
	}

	out := make([]byte, 0, len(codes)*2)
	prev := table[first]
	out = append(out, prev...)

	for i, code := range codes[1:] {
		var entry []byte
		switch {
		case code < len(table):
			entry = table[code]
		case code == len(table) && len(table) < LZWMaxDictSize:
			entry = make([]byte, len(prev)+1)
			copy(entry, prev)
			entry[len(prev)] = prev[0]
		default:
			return nil, fmt.Errorf("%w: code %d at index %d exceeds dictionary size %d",
				errs.ErrCorruptMetadata, code, i+1, len(table))
		}

		out = append(out, entry...)
		if len(table) < LZWMaxDictSize {
			added := make([]byte, len(prev)+1)
			copy(added, prev)
			added[len(prev)] = entry[0]
			table = append(table, added)
		}
		prev = entry
	}

	return out, nil
}
