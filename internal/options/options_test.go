package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errNoSymbols = errors.New("alphabet must not be empty")

// codecConfig mimics the config structs configured through this package.
type codecConfig struct {
	Alphabet   int
	Format     string
	Verbose    bool
	AppliedLog []string
}

func defaultCodecConfig() *codecConfig {
	return &codecConfig{Alphabet: 256, Format: "json"}
}

func withAlphabet(n int) Option[*codecConfig] {
	return New(func(c *codecConfig) error {
		if n <= 0 {
			return errNoSymbols
		}
		c.Alphabet = n
		c.AppliedLog = append(c.AppliedLog, "alphabet")

		return nil
	})
}

func withFormat(f string) Option[*codecConfig] {
	return NoError(func(c *codecConfig) {
		c.Format = f
		c.AppliedLog = append(c.AppliedLog, "format")
	})
}

func withVerbose() Option[*codecConfig] {
	return NoError(func(c *codecConfig) {
		c.Verbose = true
		c.AppliedLog = append(c.AppliedLog, "verbose")
	})
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option[*codecConfig]
		wantErr error
		want    *codecConfig
	}{
		{
			name: "no options keeps defaults",
			want: &codecConfig{Alphabet: 256, Format: "json"},
		},
		{
			name: "applies in order",
			opts: []Option[*codecConfig]{withAlphabet(16), withFormat("cbor"), withVerbose()},
			want: &codecConfig{Alphabet: 16, Format: "cbor", Verbose: true, AppliedLog: []string{"alphabet", "format", "verbose"}},
		},
		{
			name: "later option wins",
			opts: []Option[*codecConfig]{withFormat("cbor"), withFormat("json")},
			want: &codecConfig{Alphabet: 256, Format: "json", AppliedLog: []string{"format", "format"}},
		},
		{
			name:    "stops at first error",
			opts:    []Option[*codecConfig]{withFormat("cbor"), withAlphabet(0), withVerbose()},
			wantErr: errNoSymbols,
			want:    &codecConfig{Alphabet: 256, Format: "cbor", AppliedLog: []string{"format"}},
		},
		{
			name: "skips nil options",
			opts: []Option[*codecConfig]{nil, withVerbose(), nil},
			want: &codecConfig{Alphabet: 256, Format: "json", Verbose: true, AppliedLog: []string{"verbose"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultCodecConfig()
			err := Apply(cfg, tt.opts...)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.want, cfg)
		})
	}
}

func TestBuild(t *testing.T) {
	cfg, err := Build(defaultCodecConfig, withAlphabet(2), withVerbose())
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Alphabet)
	require.True(t, cfg.Verbose)

	// defaults are fresh for every call
	other, err := Build(defaultCodecConfig)
	require.NoError(t, err)
	require.Equal(t, 256, other.Alphabet)
	require.Empty(t, other.AppliedLog)

	cfg, err = Build(defaultCodecConfig, withAlphabet(-1))
	require.ErrorIs(t, err, errNoSymbols)
	require.Nil(t, cfg)
}

func TestOptions_NonPointerTargets(t *testing.T) {
	var n int
	require.NoError(t, Apply(&n, NoError(func(p *int) { *p = 12 })))
	require.Equal(t, 12, n)

	m := map[string]int{}
	require.NoError(t, Apply(m, NoError(func(m map[string]int) { m["huffman"] = 1 })))
	require.Equal(t, map[string]int{"huffman": 1}, m)
}
