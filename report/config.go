package report

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/squash/analysis"
	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/options"
)

// DefaultConcurrency is the number of files analyzed in parallel by AnalyzeDirectory.
const DefaultConcurrency = 4

// Config holds the settings of an Analyzer.
type Config struct {
	Algorithms     []format.Algorithm
	Selector       Selector
	Baselines      bool
	Concurrency    int
	ScratchDir     string
	MetadataFormat format.MetadataFormat
	Detector       *analysis.Detector
	Logger         zerolog.Logger
}

// DefaultConfig tests every algorithm, picks the lowest ratio and runs the baselines.
func DefaultConfig() *Config {
	return &Config{
		Algorithms:     append([]format.Algorithm(nil), format.Algorithms...),
		Selector:       LowestRatio,
		Baselines:      true,
		Concurrency:    DefaultConcurrency,
		MetadataFormat: format.MetadataJSON,
		Logger:         zerolog.Nop(),
	}
}

// Option configures an Analyzer.
type Option = options.Option[*Config]

// WithAlgorithms restricts the codecs under test.
func WithAlgorithms(algs ...format.Algorithm) Option {
	return options.New(func(c *Config) error {
		if len(algs) == 0 {
			return fmt.Errorf("%w: no algorithms", errs.ErrInvalidConfig)
		}
		for _, alg := range algs {
			if !alg.Valid() {
				return fmt.Errorf("%w: 0x%x", errs.ErrUnsupportedAlgorithm, uint8(alg))
			}
		}
		c.Algorithms = append([]format.Algorithm(nil), algs...)

		return nil
	})
}

// WithSelector sets the best-algorithm policy.
func WithSelector(s Selector) Option {
	return options.New(func(c *Config) error {
		if s == nil {
			return fmt.Errorf("%w: nil selector", errs.ErrInvalidConfig)
		}
		c.Selector = s

		return nil
	})
}

// WithBaselines enables or disables the baseline compressors.
func WithBaselines(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Baselines = enabled
	})
}

// WithConcurrency bounds the number of files analyzed in parallel.
func WithConcurrency(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency must be at least 1, got %d", errs.ErrInvalidConfig, n)
		}
		c.Concurrency = n

		return nil
	})
}

// WithScratchDir sets the parent directory of per-file scratch directories.
// The default is the system temporary directory.
func WithScratchDir(dir string) Option {
	return options.NoError(func(c *Config) {
		c.ScratchDir = dir
	})
}

// WithMetadataFormat selects the metadata document format used during round trips.
func WithMetadataFormat(f format.MetadataFormat) Option {
	return options.NoError(func(c *Config) {
		c.MetadataFormat = f
	})
}

// WithDetector replaces the default file type detector.
func WithDetector(d *analysis.Detector) Option {
	return options.NoError(func(c *Config) {
		c.Detector = d
	})
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = log
	})
}
