package filecodec

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/options"
)

// Config holds the settings of an Adapter.
type Config struct {
	// MetadataFormat selects the sibling metadata document written by CompressFile.
	MetadataFormat format.MetadataFormat
	// Logger receives one debug event per file operation.
	Logger zerolog.Logger
}

// DefaultConfig writes JSON metadata and discards log output.
func DefaultConfig() *Config {
	return &Config{
		MetadataFormat: format.MetadataJSON,
		Logger:         zerolog.Nop(),
	}
}

// Option configures an Adapter.
type Option = options.Option[*Config]

// WithMetadataFormat selects JSON or CBOR metadata documents.
func WithMetadataFormat(f format.MetadataFormat) Option {
	return options.New(func(c *Config) error {
		if f != format.MetadataJSON && f != format.MetadataCBOR {
			return fmt.Errorf("%w: metadata format 0x%x", errs.ErrInvalidConfig, uint8(f))
		}
		c.MetadataFormat = f

		return nil
	})
}

// WithLogger sets the logger used for file operations.
func WithLogger(log zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = log
	})
}
