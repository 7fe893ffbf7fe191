package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/internal/pool"
)

func TestArithmeticCodec_RepeatedSymbol(t *testing.T) {
	codec := NewArithmeticCodec()

	compressed, meta, err := codec.Compress([]byte("AAAAAA"))
	require.NoError(t, err)
	require.LessOrEqual(t, len(compressed), 2)
	require.Equal(t, []byte{0x40}, compressed)

	am, ok := meta.(*ArithmeticMetadata)
	require.True(t, ok)
	require.Equal(t, map[byte]int{'A': 6}, am.FreqTable)
	require.Equal(t, map[byte]int{'A': 0}, am.CumulativeFreq)
	require.Equal(t, 6, am.TotalFreq)
	require.Equal(t, 6, am.TotalSymbols)

	decompressed, err := codec.Decompress(compressed, meta)
	require.NoError(t, err)
	require.Equal(t, []byte("AAAAAA"), decompressed)
}

func TestArithmeticCodec_EmptyMetadata(t *testing.T) {
	compressed, meta, err := NewArithmeticCodec().Compress(nil)
	require.NoError(t, err)
	require.Nil(t, compressed)

	am, _ := meta.(*ArithmeticMetadata)
	require.Empty(t, am.FreqTable)
	require.Empty(t, am.CumulativeFreq)
	require.Zero(t, am.TotalFreq)
	require.Zero(t, am.TotalSymbols)
}

func TestArithmeticCodec_CumulativeTable(t *testing.T) {
	for name, input := range testInputs() {
		t.Run(name, func(t *testing.T) {
			_, meta, err := NewArithmeticCodec().Compress(input)
			require.NoError(t, err)
			am, _ := meta.(*ArithmeticMetadata)

			symbols := sortedSymbols(am.FreqTable)
			prev := -1
			for _, sym := range symbols {
				require.Greater(t, am.CumulativeFreq[sym], prev)
				prev = am.CumulativeFreq[sym]
			}
			last := symbols[len(symbols)-1]
			require.Equal(t, am.TotalFreq, am.CumulativeFreq[last]+am.FreqTable[last])
			require.Equal(t, len(input), am.TotalSymbols)
		})
	}
}

func TestArithmeticCodec_IntervalInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	input := make([]byte, 5000)
	for i := range input {
		// skewed towards small symbols
		input[i] = byte(min(rng.ExpFloat64()*8, 255))
	}
	meta := buildArithmeticModel(input)

	buf := pool.NewByteBuffer(1024)
	st := newArithmeticState(bitio.NewWriter(buf))
	total := uint64(meta.TotalFreq)
	for _, b := range input {
		cumLow := uint64(meta.CumulativeFreq[b])
		st.encodeSymbol(cumLow, cumLow+uint64(meta.FreqTable[b]), total)

		require.LessOrEqual(t, st.low, st.high)
		require.LessOrEqual(t, st.high, arithmeticMax)
		// after renormalization the interval spans more than a quarter of the range
		require.Greater(t, st.high-st.low, arithmeticQuarter)
	}
	st.finish()
	require.NoError(t, st.err)
}

func TestArithmeticCodec_ApproachesEntropy(t *testing.T) {
	input := bytes.Repeat([]byte("aaaaaaabbc"), 1000)

	compressed, _, err := NewArithmeticCodec().Compress(input)
	require.NoError(t, err)

	// order-0 entropy is about 1.157 bits per symbol, about 1447 bytes
	require.Less(t, len(compressed), 1460)
	require.Greater(t, len(compressed), 1430)
}

func TestArithmeticCodec_InputTooLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates a 1 GiB slice")
	}
	require.Equal(t, 1<<30, MaxArithmeticSymbols)

	// pages are never touched, the size check runs first
	large := make([]byte, MaxArithmeticSymbols+1)
	compressed, meta, err := NewArithmeticCodec().Compress(large)
	require.ErrorIs(t, err, errs.ErrInputTooLarge)
	require.Nil(t, compressed)
	require.Nil(t, meta)
}

func TestArithmeticCodec_CorruptMetadata(t *testing.T) {
	codec := NewArithmeticCodec()
	compressed, meta, err := codec.Compress([]byte("arithmetic coding"))
	require.NoError(t, err)
	valid, _ := meta.(*ArithmeticMetadata)

	clone := func() *ArithmeticMetadata {
		m := &ArithmeticMetadata{
			FreqTable:      map[byte]int{},
			CumulativeFreq: map[byte]int{},
			TotalFreq:      valid.TotalFreq,
			TotalSymbols:   valid.TotalSymbols,
		}
		for k, v := range valid.FreqTable {
			m.FreqTable[k] = v
		}
		for k, v := range valid.CumulativeFreq {
			m.CumulativeFreq[k] = v
		}

		return m
	}

	tests := []struct {
		name   string
		mutate func(m *ArithmeticMetadata)
		data   []byte
	}{
		{
			name:   "missing frequency table",
			mutate: func(m *ArithmeticMetadata) { m.FreqTable = nil },
		},
		{
			name:   "missing cumulative table",
			mutate: func(m *ArithmeticMetadata) { m.CumulativeFreq = nil },
		},
		{
			name:   "total mismatch",
			mutate: func(m *ArithmeticMetadata) { m.TotalFreq++ },
		},
		{
			name:   "symbols mismatch",
			mutate: func(m *ArithmeticMetadata) { m.TotalSymbols-- },
		},
		{
			name:   "cumulative gap",
			mutate: func(m *ArithmeticMetadata) { m.CumulativeFreq['t']++ },
		},
		{
			name: "zero frequency",
			mutate: func(m *ArithmeticMetadata) {
				m.FreqTable['z'] = 0
				m.CumulativeFreq['z'] = m.TotalFreq
			},
		},
		{
			name:   "negative totals",
			mutate: func(m *ArithmeticMetadata) { m.TotalSymbols = -1 },
		},
		{
			name:   "empty stream",
			mutate: func(m *ArithmeticMetadata) {},
			data:   []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := clone()
			tt.mutate(m)
			data := compressed
			if tt.data != nil {
				data = tt.data
			}

			out, err := codec.Decompress(data, m)
			require.ErrorIs(t, err, errs.ErrCorruptMetadata)
			require.Nil(t, out)
		})
	}
}

func TestArithmeticCodec_FrequenciesForEmptyStream(t *testing.T) {
	meta := &ArithmeticMetadata{FreqTable: map[byte]int{'a': 1}, CumulativeFreq: map[byte]int{'a': 0}, TotalFreq: 1}

	out, err := NewArithmeticCodec().Decompress(nil, meta)
	require.ErrorIs(t, err, errs.ErrCorruptMetadata)
	require.Nil(t, out)
}

func TestArithmeticCodec_FlushesPartialByte(t *testing.T) {
	codec := NewArithmeticCodec()

	for n := 1; n <= 16; n++ {
		input := bytes.Repeat([]byte{'a'}, n)

		compressed, meta, err := codec.Compress(input)
		require.NoError(t, err)
		require.NotEmpty(t, compressed, "n=%d", n)

		decompressed, err := codec.Decompress(compressed, meta)
		require.NoError(t, err)
		require.Equal(t, input, decompressed)
	}

	input := []byte("aabaaaaaaaaaaaabaaaaaaaaaa")
	compressed, meta, err := codec.Compress(input)
	require.NoError(t, err)
	decompressed, err := codec.Decompress(compressed, meta)
	require.NoError(t, err)
	require.Equal(t, input, decompressed)
}
