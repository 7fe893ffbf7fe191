package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlgorithm_String(t *testing.T) {
	tests := []struct {
		name     string
		alg      Algorithm
		expected string
	}{
		{name: "huffman", alg: AlgorithmHuffman, expected: "Huffman"},
		{name: "lzw", alg: AlgorithmLZW, expected: "LZW"},
		{name: "arithmetic", alg: AlgorithmArithmetic, expected: "Arithmetic"},
		{name: "unknown", alg: Algorithm(0xFF), expected: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.alg.String())
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, alg := range Algorithms {
		parsed, err := ParseAlgorithm(alg.Name())
		require.NoError(t, err)
		require.Equal(t, alg, parsed)
	}

	parsed, err := ParseAlgorithm("ARITHMETIC")
	require.NoError(t, err)
	require.Equal(t, AlgorithmArithmetic, parsed)

	_, err = ParseAlgorithm("zstd")
	require.Error(t, err)
}

func TestAlgorithm_Text(t *testing.T) {
	text, err := AlgorithmLZW.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "lzw", string(text))

	var alg Algorithm
	require.NoError(t, alg.UnmarshalText([]byte("huffman")))
	require.Equal(t, AlgorithmHuffman, alg)

	_, err = Algorithm(0).MarshalText()
	require.Error(t, err)
	require.False(t, Algorithm(0).Valid())
}

func TestMetadataFormat(t *testing.T) {
	require.Equal(t, "JSON", MetadataJSON.String())
	require.Equal(t, "CBOR", MetadataCBOR.String())
	require.Equal(t, "Unknown", MetadataFormat(9).String())
	require.Equal(t, ".metadata.json", MetadataJSON.Extension())
	require.Equal(t, ".metadata.cbor", MetadataCBOR.Extension())

	f, err := ParseMetadataFormat("CBOR")
	require.NoError(t, err)
	require.Equal(t, MetadataCBOR, f)

	_, err = ParseMetadataFormat("yaml")
	require.Error(t, err)
}
