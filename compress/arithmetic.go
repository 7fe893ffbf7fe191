package compress

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/icza/bitio"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/pool"
)

const (
	arithmeticPrecision = 32
	arithmeticMax       = uint64(1)<<arithmeticPrecision - 1
	arithmeticHalf      = uint64(1) << (arithmeticPrecision - 1)
	arithmeticQuarter   = uint64(1) << (arithmeticPrecision - 2)

	// MaxArithmeticSymbols is the largest input the arithmetic codec accepts.
	// Keeping the total frequency at or below a quarter of the interval guarantees
	// that every symbol keeps a non-empty sub-interval after narrowing.
	MaxArithmeticSymbols = 1 << (arithmeticPrecision - 2)
)

// ArithmeticCodec implements order-0 arithmetic coding with a static frequency model.
//
// The model is counted over the whole input and shipped in ArithmeticMetadata.
// The coder uses 32-bit integer interval bounds with the usual three-case
// renormalization and a pending-bit counter for the straddling case.
//
// Characteristics:
//   - Best for: skewed distributions, approaching the order-0 entropy of the input
//   - Limit: at most MaxArithmeticSymbols input bytes
type ArithmeticCodec struct{}

var _ Codec = (*ArithmeticCodec)(nil)

// NewArithmeticCodec creates a new arithmetic codec.
//
// Returns:
//   - ArithmeticCodec: New arithmetic codec instance
func NewArithmeticCodec() ArithmeticCodec {
	return ArithmeticCodec{}
}

// Algorithm returns format.AlgorithmArithmetic.
func (c ArithmeticCodec) Algorithm() format.Algorithm {
	return format.AlgorithmArithmetic
}

// Compress compresses the input data using arithmetic coding.
//
// Parameters:
//   - data: Input data to compress, at most MaxArithmeticSymbols bytes
//
// Returns:
//   - []byte: Compressed data, zero padded to a byte boundary (nil if input is empty)
//   - Metadata: *ArithmeticMetadata with the frequency model
//   - error: errs.ErrInputTooLarge or a bit writer error
func (c ArithmeticCodec) Compress(data []byte) ([]byte, Metadata, error) {
	if len(data) > MaxArithmeticSymbols {
		return nil, nil, fmt.Errorf("%w: %d bytes exceeds arithmetic limit %d",
			errs.ErrInputTooLarge, len(data), MaxArithmeticSymbols)
	}

	meta := buildArithmeticModel(data)
	if len(data) == 0 {
		return nil, meta, nil
	}

	buf := pool.GetCodecBuffer()
	defer pool.PutCodecBuffer(buf)

	st := newArithmeticState(bitio.NewWriter(buf))
	total := uint64(meta.TotalFreq) //nolint: gosec
	for _, b := range data {
		cumLow := uint64(meta.CumulativeFreq[b])    //nolint: gosec
		cumHigh := cumLow + uint64(meta.FreqTable[b]) //nolint: gosec
		st.encodeSymbol(cumLow, cumHigh, total)
	}
	st.finish()
	if st.err != nil {
		return nil, nil, fmt.Errorf("arithmetic: write bits: %w", st.err)
	}

	return buf.Clone(), meta, nil
}

// Decompress decompresses an arithmetic-coded stream.
//
// Bits past the end of data are read as zero. Decoding stops after exactly
// TotalSymbols symbols.
//
// Parameters:
//   - data: Compressed data
//   - meta: *ArithmeticMetadata produced by Compress
//
// Returns:
//   - []byte: Decompressed data (nil if TotalSymbols is zero)
//   - error: errs.ErrCorruptMetadata or errs.ErrAlgorithmMismatch
func (c ArithmeticCodec) Decompress(data []byte, meta Metadata) ([]byte, error) {
	if err := checkMetadata(format.AlgorithmArithmetic, meta); err != nil {
		return nil, err
	}
	m, _ := meta.(*ArithmeticMetadata)

	if m.TotalSymbols == 0 {
		return nil, nil
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty stream for %d symbols", errs.ErrCorruptMetadata, m.TotalSymbols)
	}
	if m.TotalFreq > MaxArithmeticSymbols {
		return nil, fmt.Errorf("%w: total_freq %d exceeds %d", errs.ErrCorruptMetadata, m.TotalFreq, MaxArithmeticSymbols)
	}

	symbols := sortedSymbols(m.FreqTable)
	total := uint64(m.TotalFreq) //nolint: gosec

	src := newBitSource(data)
	var value uint64
	for range arithmeticPrecision {
		value = value<<1 | src.next()
	}

	low, high := uint64(0), arithmeticMax
	out := make([]byte, 0, m.TotalSymbols)
	for len(out) < m.TotalSymbols {
		if value < low || value > high {
			return nil, fmt.Errorf("%w: code value left the interval at symbol %d", errs.ErrCorruptMetadata, len(out))
		}
		r := high - low + 1
		target := ((value-low+1)*total - 1) / r

		// first symbol whose interval ends beyond target
		idx := sort.Search(len(symbols), func(i int) bool {
			sym := symbols[i]
			return uint64(m.CumulativeFreq[sym]+m.FreqTable[sym]) > target //nolint: gosec
		})
		if idx == len(symbols) {
			return nil, fmt.Errorf("%w: no symbol for target %d", errs.ErrCorruptMetadata, target)
		}
		sym := symbols[idx]
		out = append(out, sym)

		cumLow := uint64(m.CumulativeFreq[sym])     //nolint: gosec
		cumHigh := cumLow + uint64(m.FreqTable[sym]) //nolint: gosec
		high = low + r*cumHigh/total - 1
		low += r * cumLow / total

	renormalize:
		for {
			switch {
			case high < arithmeticHalf:
			case low >= arithmeticHalf:
				low -= arithmeticHalf
				high -= arithmeticHalf
				value -= arithmeticHalf
			case low >= arithmeticQuarter && high < arithmeticHalf+arithmeticQuarter:
				low -= arithmeticQuarter
				high -= arithmeticQuarter
				value -= arithmeticQuarter
			default:
				break renormalize
			}
			low <<= 1
			high = high<<1 | 1
			value = (value<<1 | src.next()) & arithmeticMax
		}
	}

	return out, nil
}

// buildArithmeticModel counts the input and derives the cumulative table in
// ascending symbol order.
func buildArithmeticModel(data []byte) *ArithmeticMetadata {
	meta := &ArithmeticMetadata{
		FreqTable:      map[byte]int{},
		CumulativeFreq: map[byte]int{},
		TotalFreq:      len(data),
		TotalSymbols:   len(data),
	}

	freqs := countFrequencies(data)
	running := 0
	for sym, freq := range freqs {
		if freq == 0 {
			continue
		}
		meta.FreqTable[byte(sym)] = freq
		meta.CumulativeFreq[byte(sym)] = running
		running += freq
	}

	return meta
}

// arithmeticState is the encoder state of one Compress call.
type arithmeticState struct {
	low     uint64
	high    uint64
	pending int
	out     *bitio.Writer
	err     error
}

func newArithmeticState(out *bitio.Writer) *arithmeticState {
	return &arithmeticState{low: 0, high: arithmeticMax, out: out}
}

// encodeSymbol narrows the interval to [cumLow, cumHigh) of total and renormalizes.
// After it returns, low <= high and the interval spans more than a quarter of the range.
func (s *arithmeticState) encodeSymbol(cumLow, cumHigh, total uint64) {
	r := s.high - s.low + 1
	s.high = s.low + r*cumHigh/total - 1
	s.low += r * cumLow / total

	for {
		switch {
		case s.high < arithmeticHalf:
			s.emit(false)
		case s.low >= arithmeticHalf:
			s.emit(true)
			s.low -= arithmeticHalf
			s.high -= arithmeticHalf
		case s.low >= arithmeticQuarter && s.high < arithmeticHalf+arithmeticQuarter:
			s.pending++
			s.low -= arithmeticQuarter
			s.high -= arithmeticQuarter
		default:
			return
		}
		s.low <<= 1
		s.high = s.high<<1 | 1
	}
}

// finish emits enough bits to select a point inside the final interval and
// flushes the writer, zero padding the last byte.
func (s *arithmeticState) finish() {
	s.pending++
	s.emit(s.low >= arithmeticQuarter)
	if s.err == nil {
		s.err = s.out.Close()
	}
}

// emit writes bit followed by all pending opposite bits.
func (s *arithmeticState) emit(bit bool) {
	s.writeBit(bit)
	for ; s.pending > 0; s.pending-- {
		s.writeBit(!bit)
	}
}

func (s *arithmeticState) writeBit(bit bool) {
	if s.err != nil {
		return
	}
	s.err = s.out.WriteBool(bit)
}

// bitSource reads bits MSB first and yields zero bits once the data is exhausted.
type bitSource struct {
	r         *bitio.Reader
	exhausted bool
}

func newBitSource(data []byte) *bitSource {
	return &bitSource{r: bitio.NewReader(bytes.NewReader(data))}
}

func (s *bitSource) next() uint64 {
	if s.exhausted {
		return 0
	}
	bit, err := s.r.ReadBool()
	if err != nil {
		// io.EOF is the normal end; any other read error is treated the same way
		s.exhausted = true
		return 0
	}
	if bit {
		return 1
	}

	return 0
}
