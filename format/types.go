package format

import (
	"fmt"
	"strings"
)

type (
	Algorithm      uint8
	MetadataFormat uint8
)

const (
	AlgorithmHuffman    Algorithm = 0x1 // AlgorithmHuffman represents static Huffman coding.
	AlgorithmLZW        Algorithm = 0x2 // AlgorithmLZW represents 12-bit LZW dictionary coding.
	AlgorithmArithmetic Algorithm = 0x3 // AlgorithmArithmetic represents order-0 arithmetic coding.

	MetadataJSON MetadataFormat = 0x1 // MetadataJSON persists metadata as a JSON object.
	MetadataCBOR MetadataFormat = 0x2 // MetadataCBOR persists metadata as canonical CBOR.
)

// Algorithms lists every supported algorithm in declaration order.
var Algorithms = []Algorithm{AlgorithmHuffman, AlgorithmLZW, AlgorithmArithmetic}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmHuffman:
		return "Huffman"
	case AlgorithmLZW:
		return "LZW"
	case AlgorithmArithmetic:
		return "Arithmetic"
	default:
		return "Unknown"
	}
}

// Name returns the lower-case name used on the command line and in persisted records.
func (a Algorithm) Name() string {
	return strings.ToLower(a.String())
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	return a >= AlgorithmHuffman && a <= AlgorithmArithmetic
}

// ParseAlgorithm resolves a case-insensitive algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(name, a.Name()) {
			return a, nil
		}
	}

	return 0, fmt.Errorf("unknown algorithm %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm 0x%x", uint8(a))
	}

	return []byte(a.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed

	return nil
}

func (f MetadataFormat) String() string {
	switch f {
	case MetadataJSON:
		return "JSON"
	case MetadataCBOR:
		return "CBOR"
	default:
		return "Unknown"
	}
}

// Extension returns the file extension used for persisted metadata of this format.
func (f MetadataFormat) Extension() string {
	switch f {
	case MetadataCBOR:
		return ".metadata.cbor"
	default:
		return ".metadata.json"
	}
}

// ParseMetadataFormat resolves a case-insensitive metadata format name.
func ParseMetadataFormat(name string) (MetadataFormat, error) {
	switch strings.ToLower(name) {
	case "json":
		return MetadataJSON, nil
	case "cbor":
		return MetadataCBOR, nil
	default:
		return 0, fmt.Errorf("unknown metadata format %q", name)
	}
}
