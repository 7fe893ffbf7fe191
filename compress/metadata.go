package compress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
)

// Metadata is the side record produced by Compress and consumed by Decompress.
//
// It is a closed variant: the only implementations are HuffmanMetadata, LZWMetadata
// and ArithmeticMetadata. A record never depends on state from a prior call.
type Metadata interface {
	// Algorithm returns the algorithm that produced the record.
	Algorithm() format.Algorithm

	// Validate checks internal consistency and returns errs.ErrCorruptMetadata on failure.
	Validate() error

	isMetadata()
}

// HuffmanMetadata carries the code table needed to decode a Huffman stream.
type HuffmanMetadata struct {
	// Codes maps every symbol present in the input to its bit string of '0'/'1'.
	Codes map[byte]string
	// OriginalLength is the number of meaningful bits before zero padding.
	OriginalLength int
	// Padding is the number of zero bits appended to reach a byte boundary.
	Padding int
}

var _ Metadata = (*HuffmanMetadata)(nil)

func (m *HuffmanMetadata) Algorithm() format.Algorithm { return format.AlgorithmHuffman }

func (m *HuffmanMetadata) isMetadata() {}

// Validate checks that every code is a non-empty bit string and that padding
// agrees with OriginalLength.
func (m *HuffmanMetadata) Validate() error {
	if m.OriginalLength < 0 {
		return fmt.Errorf("%w: negative original_length %d", errs.ErrCorruptMetadata, m.OriginalLength)
	}
	if m.OriginalLength > 0 && len(m.Codes) == 0 {
		return fmt.Errorf("%w: huffman_codes is empty", errs.ErrCorruptMetadata)
	}
	if m.Padding < 0 || m.Padding > 7 {
		return fmt.Errorf("%w: padding %d out of range", errs.ErrCorruptMetadata, m.Padding)
	}
	if want := (8 - m.OriginalLength%8) % 8; m.Padding != want {
		return fmt.Errorf("%w: padding %d does not match original_length %d (want %d)",
			errs.ErrCorruptMetadata, m.Padding, m.OriginalLength, want)
	}
	for sym, code := range m.Codes {
		if code == "" || strings.Trim(code, "01") != "" {
			return fmt.Errorf("%w: invalid code %q for symbol %d", errs.ErrCorruptMetadata, code, sym)
		}
	}

	return nil
}

// LZWMetadata carries the emitted code list of an LZW stream.
//
// The dictionary itself is never stored; the decoder rebuilds it from Codes.
type LZWMetadata struct {
	// Codes is the ordered list of emitted dictionary codes.
	Codes []int
	// CodeSize is the width of a packed code in bits (always 12).
	CodeSize int
	// MaxDictSize is the dictionary cap (always 4096).
	MaxDictSize int
}

var _ Metadata = (*LZWMetadata)(nil)

func (m *LZWMetadata) Algorithm() format.Algorithm { return format.AlgorithmLZW }

func (m *LZWMetadata) isMetadata() {}

// Validate checks the fixed code geometry and the code range.
func (m *LZWMetadata) Validate() error {
	if m.CodeSize != LZWCodeSize {
		return fmt.Errorf("%w: code_size %d, expected %d", errs.ErrCorruptMetadata, m.CodeSize, LZWCodeSize)
	}
	if m.MaxDictSize != LZWMaxDictSize {
		return fmt.Errorf("%w: max_dict_size %d, expected %d", errs.ErrCorruptMetadata, m.MaxDictSize, LZWMaxDictSize)
	}
	for i, code := range m.Codes {
		if code < 0 || code >= LZWMaxDictSize {
			return fmt.Errorf("%w: code %d at index %d out of range", errs.ErrCorruptMetadata, code, i)
		}
	}

	return nil
}

// ArithmeticMetadata carries the static order-0 model of an arithmetic stream.
type ArithmeticMetadata struct {
	// FreqTable maps each present symbol to its count.
	FreqTable map[byte]int
	// CumulativeFreq maps each present symbol to the sum of counts of all smaller symbols.
	CumulativeFreq map[byte]int
	// TotalFreq is the sum of all counts.
	TotalFreq int
	// TotalSymbols is the number of symbols to decode.
	TotalSymbols int
}

var _ Metadata = (*ArithmeticMetadata)(nil)

func (m *ArithmeticMetadata) Algorithm() format.Algorithm { return format.AlgorithmArithmetic }

func (m *ArithmeticMetadata) isMetadata() {}

// Validate checks that the cumulative table is the strictly increasing prefix sum of
// the frequency table and that it closes on TotalFreq.
func (m *ArithmeticMetadata) Validate() error {
	if m.TotalSymbols < 0 || m.TotalFreq < 0 {
		return fmt.Errorf("%w: negative totals", errs.ErrCorruptMetadata)
	}
	if m.TotalSymbols == 0 {
		if m.TotalFreq != 0 || len(m.FreqTable) != 0 {
			return fmt.Errorf("%w: frequencies present for an empty stream", errs.ErrCorruptMetadata)
		}

		return nil
	}
	if len(m.FreqTable) == 0 {
		return fmt.Errorf("%w: freq_table is empty", errs.ErrCorruptMetadata)
	}
	if len(m.CumulativeFreq) != len(m.FreqTable) {
		return fmt.Errorf("%w: cumulative_freq has %d entries, freq_table has %d",
			errs.ErrCorruptMetadata, len(m.CumulativeFreq), len(m.FreqTable))
	}
	if m.TotalFreq != m.TotalSymbols {
		return fmt.Errorf("%w: total_freq %d does not match total_symbols %d",
			errs.ErrCorruptMetadata, m.TotalFreq, m.TotalSymbols)
	}

	running := 0
	for _, sym := range sortedSymbols(m.FreqTable) {
		freq := m.FreqTable[sym]
		if freq <= 0 {
			return fmt.Errorf("%w: non-positive frequency %d for symbol %d", errs.ErrCorruptMetadata, freq, sym)
		}
		cum, ok := m.CumulativeFreq[sym]
		if !ok || cum != running {
			return fmt.Errorf("%w: cumulative frequency for symbol %d is %d, expected %d",
				errs.ErrCorruptMetadata, sym, cum, running)
		}
		running += freq
	}
	if running != m.TotalFreq {
		return fmt.Errorf("%w: frequencies sum to %d, total_freq is %d", errs.ErrCorruptMetadata, running, m.TotalFreq)
	}

	return nil
}

// sortedSymbols returns the keys of a symbol table in ascending order.
func sortedSymbols[V any](table map[byte]V) []byte {
	symbols := make([]byte, 0, len(table))
	for sym := range table {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

	return symbols
}
