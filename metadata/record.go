package metadata

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/arloliu/squash/compress"
	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
)

// CoerceKeys normalizes a decoded document.
//
// Maps of any key type become map[any]any. Keys that are integers, or strings holding a
// decimal integer, become int; other keys are kept as they are. Nested maps and sequences
// are converted recursively. Scalars are returned unchanged.
func CoerceKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[any]any, len(val))
		for k, item := range val {
			out[coerceKey(k)] = CoerceKeys(item)
		}

		return out
	case map[any]any:
		out := make(map[any]any, len(val))
		for k, item := range val {
			out[coerceKey(k)] = CoerceKeys(item)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CoerceKeys(item)
		}

		return out
	default:
		return v
	}
}

func coerceKey(k any) any {
	switch key := k.(type) {
	case string:
		if n, err := strconv.Atoi(key); err == nil {
			return n
		}

		return key
	case uint64:
		if key <= math.MaxInt32 {
			return int(key)
		}
	case int64:
		if key >= math.MinInt32 && key <= math.MaxInt32 {
			return int(key)
		}
	}

	return k
}

// FromRecord converts a normalized record into the metadata of alg.
//
// The record must already have gone through CoerceKeys.
func FromRecord(record map[any]any, alg format.Algorithm) (compress.Metadata, error) {
	if name, ok := record[FieldAlgorithm]; ok {
		s, isString := name.(string)
		if !isString {
			return nil, fmt.Errorf("%w: %s is not a string", errs.ErrCorruptMetadata, FieldAlgorithm)
		}
		recorded, err := format.ParseAlgorithm(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCorruptMetadata, err)
		}
		if recorded != alg {
			return nil, fmt.Errorf("%w: record is %s, expected %s", errs.ErrAlgorithmMismatch, recorded, alg)
		}
	}

	var (
		meta compress.Metadata
		err  error
	)
	switch alg {
	case format.AlgorithmHuffman:
		meta, err = huffmanFromRecord(record)
	case format.AlgorithmLZW:
		meta, err = lzwFromRecord(record)
	case format.AlgorithmArithmetic:
		meta, err = arithmeticFromRecord(record)
	default:
		return nil, fmt.Errorf("%w: 0x%x", errs.ErrUnsupportedAlgorithm, uint8(alg))
	}
	if err != nil {
		return nil, err
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	return meta, nil
}

func huffmanFromRecord(record map[any]any) (*compress.HuffmanMetadata, error) {
	raw, err := field[map[any]any](record, FieldHuffmanCodes)
	if err != nil {
		return nil, err
	}
	codes := make(map[byte]string, len(raw))
	for k, v := range raw {
		sym, err := toSymbol(k, FieldHuffmanCodes)
		if err != nil {
			return nil, err
		}
		code, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a string", errs.ErrCorruptMetadata, FieldHuffmanCodes, sym)
		}
		codes[sym] = code
	}

	length, err := intField(record, FieldOriginalLength)
	if err != nil {
		return nil, err
	}
	padding, err := intField(record, FieldPadding)
	if err != nil {
		return nil, err
	}

	return &compress.HuffmanMetadata{Codes: codes, OriginalLength: length, Padding: padding}, nil
}

func lzwFromRecord(record map[any]any) (*compress.LZWMetadata, error) {
	raw, err := field[[]any](record, FieldCompressedCodes)
	if err != nil {
		return nil, err
	}
	codes := make([]int, len(raw))
	for i, v := range raw {
		code, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not an integer", errs.ErrCorruptMetadata, FieldCompressedCodes, i)
		}
		codes[i] = code
	}

	codeSize, err := intField(record, FieldCodeSize)
	if err != nil {
		return nil, err
	}
	maxDict, err := intField(record, FieldMaxDictSize)
	if err != nil {
		return nil, err
	}

	return &compress.LZWMetadata{Codes: codes, CodeSize: codeSize, MaxDictSize: maxDict}, nil
}

func arithmeticFromRecord(record map[any]any) (*compress.ArithmeticMetadata, error) {
	freqs, err := symbolTable(record, FieldFreqTable)
	if err != nil {
		return nil, err
	}
	cums, err := symbolTable(record, FieldCumulativeFreq)
	if err != nil {
		return nil, err
	}
	totalFreq, err := intField(record, FieldTotalFreq)
	if err != nil {
		return nil, err
	}
	totalSymbols, err := intField(record, FieldTotalSymbols)
	if err != nil {
		return nil, err
	}

	return &compress.ArithmeticMetadata{
		FreqTable:      freqs,
		CumulativeFreq: cums,
		TotalFreq:      totalFreq,
		TotalSymbols:   totalSymbols,
	}, nil
}

// field fetches a required field of type T.
func field[T any](record map[any]any, name string) (T, error) {
	var zero T
	raw, ok := record[name]
	if !ok || raw == nil {
		return zero, fmt.Errorf("%w: missing field %s", errs.ErrCorruptMetadata, name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: field %s has type %T", errs.ErrCorruptMetadata, name, raw)
	}

	return v, nil
}

func intField(record map[any]any, name string) (int, error) {
	raw, ok := record[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %s", errs.ErrCorruptMetadata, name)
	}
	n, ok := toInt(raw)
	if !ok {
		return 0, fmt.Errorf("%w: field %s is not an integer", errs.ErrCorruptMetadata, name)
	}

	return n, nil
}

func symbolTable(record map[any]any, name string) (map[byte]int, error) {
	raw, err := field[map[any]any](record, name)
	if err != nil {
		return nil, err
	}
	table := make(map[byte]int, len(raw))
	for k, v := range raw {
		sym, err := toSymbol(k, name)
		if err != nil {
			return nil, err
		}
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not an integer", errs.ErrCorruptMetadata, name, sym)
		}
		table[sym] = n
	}

	return table, nil
}

func toSymbol(k any, name string) (byte, error) {
	n, ok := k.(int)
	if !ok || n < 0 || n > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %s key %v is not a byte value", errs.ErrCorruptMetadata, name, k)
	}

	return byte(n), nil
}

// toInt accepts the integer representations produced by the JSON and CBOR decoders.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}

		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}

		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}

		return toInt(i)
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n > math.MaxInt {
			return 0, false
		}

		return int(n), true
	default:
		return 0, false
	}
}
