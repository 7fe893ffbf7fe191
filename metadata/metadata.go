package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/squash/compress"
	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
)

// Field names of persisted records.
const (
	FieldAlgorithm = "algorithm"

	FieldHuffmanCodes   = "huffman_codes"
	FieldOriginalLength = "original_length"
	FieldPadding        = "padding"

	FieldCompressedCodes = "compressed_codes"
	FieldCodeSize        = "code_size"
	FieldMaxDictSize     = "max_dict_size"

	FieldFreqTable      = "freq_table"
	FieldCumulativeFreq = "cumulative_freq"
	FieldTotalFreq      = "total_freq"
	FieldTotalSymbols   = "total_symbols"
)

var cborEncoder cbor.EncMode

func init() {
	var err error
	cborEncoder, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create cbor encoder: %v", err))
	}
}

// Marshal serializes meta in the given format.
//
// Parameters:
//   - meta: Metadata record produced by a codec
//   - f: format.MetadataJSON or format.MetadataCBOR
//
// Returns:
//   - []byte: Serialized document
//   - error: errs.ErrUnsupportedAlgorithm for unknown record types, or an encoder error
func Marshal(meta compress.Metadata, f format.MetadataFormat) ([]byte, error) {
	record, err := toRecord(meta)
	if err != nil {
		return nil, err
	}

	switch f {
	case format.MetadataJSON:
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("could not encode json metadata: %w", err)
		}

		return data, nil
	case format.MetadataCBOR:
		data, err := cborEncoder.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("could not encode cbor metadata: %w", err)
		}

		return data, nil
	default:
		return nil, fmt.Errorf("unknown metadata format 0x%x", uint8(f))
	}
}

// Unmarshal parses a document written by Marshal into the metadata record of alg.
//
// Parameters:
//   - data: Serialized document
//   - alg: Algorithm whose record is expected
//   - f: format.MetadataJSON or format.MetadataCBOR
//
// Returns:
//   - compress.Metadata: Typed record, already validated
//   - error: errs.ErrCorruptMetadata, errs.ErrAlgorithmMismatch or errs.ErrUnsupportedAlgorithm
func Unmarshal(data []byte, alg format.Algorithm, f format.MetadataFormat) (compress.Metadata, error) {
	var raw any
	switch f {
	case format.MetadataJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: invalid json: %v", errs.ErrCorruptMetadata, err)
		}
	case format.MetadataCBOR:
		if err := cbor.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: invalid cbor: %v", errs.ErrCorruptMetadata, err)
		}
	default:
		return nil, fmt.Errorf("unknown metadata format 0x%x", uint8(f))
	}

	record, ok := CoerceKeys(raw).(map[any]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not a map", errs.ErrCorruptMetadata)
	}

	return FromRecord(record, alg)
}

// toRecord flattens meta into a field map. Symbol tables keep their byte keys;
// encoding/json writes them as decimal strings and CBOR as integers.
func toRecord(meta compress.Metadata) (map[string]any, error) {
	switch m := meta.(type) {
	case *compress.HuffmanMetadata:
		return map[string]any{
			FieldAlgorithm:      format.AlgorithmHuffman.Name(),
			FieldHuffmanCodes:   m.Codes,
			FieldOriginalLength: m.OriginalLength,
			FieldPadding:        m.Padding,
		}, nil
	case *compress.LZWMetadata:
		codes := m.Codes
		if codes == nil {
			codes = []int{}
		}

		return map[string]any{
			FieldAlgorithm:       format.AlgorithmLZW.Name(),
			FieldCompressedCodes: codes,
			FieldCodeSize:        m.CodeSize,
			FieldMaxDictSize:     m.MaxDictSize,
		}, nil
	case *compress.ArithmeticMetadata:
		return map[string]any{
			FieldAlgorithm:      format.AlgorithmArithmetic.Name(),
			FieldFreqTable:      m.FreqTable,
			FieldCumulativeFreq: m.CumulativeFreq,
			FieldTotalFreq:      m.TotalFreq,
			FieldTotalSymbols:   m.TotalSymbols,
		}, nil
	default:
		return nil, fmt.Errorf("%w: metadata type %T", errs.ErrUnsupportedAlgorithm, meta)
	}
}
