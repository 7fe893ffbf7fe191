package filecodec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/arloliu/squash/compress"
	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/options"
	"github.com/arloliu/squash/metadata"
)

// Adapter runs a codec against whole files and persists its metadata next to the output.
//
// CompressFile writes the compressed stream to dst and the metadata to dst plus the
// metadata extension (".metadata.json" or ".metadata.cbor"). DecompressFile looks for
// that sibling document next to its source. The last metadata produced in-process is
// kept as a fallback, so an Adapter is not safe for concurrent use.
type Adapter struct {
	codec compress.Codec
	cfg   *Config
	log   zerolog.Logger
	last  compress.Metadata
}

// New creates an Adapter around codec.
//
// Parameters:
//   - codec: Codec used for every file
//   - opts: Functional options
//
// Returns:
//   - *Adapter: The adapter
//   - error: errs.ErrInvalidConfig if an option is invalid
func New(codec compress.Codec, opts ...Option) (*Adapter, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: codec is required", errs.ErrInvalidConfig)
	}

	cfg, err := options.Build(DefaultConfig, opts...)
	if err != nil {
		return nil, err
	}

	a := Adapter{
		codec: codec,
		cfg:   cfg,
		log:   cfg.Logger.With().Str("component", "filecodec").Str("algorithm", codec.Algorithm().Name()).Logger(),
	}

	return &a, nil
}

// ForAlgorithm creates an Adapter around the built-in codec of alg.
func ForAlgorithm(alg format.Algorithm, opts ...Option) (*Adapter, error) {
	codec, err := compress.GetCodec(alg)
	if err != nil {
		return nil, err
	}

	return New(codec, opts...)
}

// Algorithm returns the algorithm of the wrapped codec.
func (a *Adapter) Algorithm() format.Algorithm {
	return a.codec.Algorithm()
}

// LastMetadata returns the metadata of the most recent CompressFile call, or nil.
func (a *Adapter) LastMetadata() compress.Metadata {
	return a.last
}

// MetadataPath returns the sibling metadata path of a compressed file in format f.
func MetadataPath(path string, f format.MetadataFormat) string {
	return path + f.Extension()
}

// CompressFile compresses src into dst and writes the sibling metadata document.
//
// Parameters:
//   - src: Path of the file to compress
//   - dst: Path of the compressed output
//
// Returns:
//   - compress.CompressionStats: Sizes and compression time
//   - error: errs.ErrNotFound if src does not exist, codec or I/O errors otherwise
func (a *Adapter) CompressFile(src, dst string) (compress.CompressionStats, error) {
	stats := compress.CompressionStats{Algorithm: a.codec.Algorithm()}

	data, err := readFile(src)
	if err != nil {
		return stats, err
	}

	start := time.Now()
	compressed, meta, err := a.codec.Compress(data)
	if err != nil {
		return stats, fmt.Errorf("could not compress %s: %w", src, err)
	}
	stats.CompressionTimeNs = time.Since(start).Nanoseconds()

	doc, err := metadata.Marshal(meta, a.cfg.MetadataFormat)
	if err != nil {
		return stats, fmt.Errorf("could not encode metadata for %s: %w", dst, err)
	}

	if err := os.WriteFile(dst, compressed, 0o644); err != nil { //nolint: gosec
		return stats, fmt.Errorf("could not write compressed file: %w", err)
	}
	metaPath := MetadataPath(dst, a.cfg.MetadataFormat)
	if err := os.WriteFile(metaPath, doc, 0o644); err != nil { //nolint: gosec
		return stats, fmt.Errorf("could not write metadata file: %w", err)
	}
	// a sibling in the other format would be picked up by a later fallback
	stale := MetadataPath(dst, otherFormat(a.cfg.MetadataFormat))
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return stats, fmt.Errorf("could not remove stale metadata file: %w", err)
	}
	a.last = meta

	stats.OriginalSize = int64(len(data))
	stats.CompressedSize = int64(len(compressed))

	a.log.Debug().
		Str("src", src).
		Str("dst", dst).
		Str("metadata", metaPath).
		Int64("original_size", stats.OriginalSize).
		Int64("compressed_size", stats.CompressedSize).
		Float64("ratio", stats.CompressionRatio()).
		Dur("duration", time.Duration(stats.CompressionTimeNs)).
		Msg("file compressed")

	return stats, nil
}

// DecompressFile decompresses src into dst.
//
// The metadata is read from the sibling document of src, trying the configured format
// first and the other format second. Without a sibling document the last in-process
// metadata is used.
//
// Parameters:
//   - src: Path of the compressed file
//   - dst: Path of the restored output
//
// Returns:
//   - compress.CompressionStats: Sizes and decompression time
//   - error: errs.ErrNotFound if src or every metadata source is missing
func (a *Adapter) DecompressFile(src, dst string) (compress.CompressionStats, error) {
	stats := compress.CompressionStats{Algorithm: a.codec.Algorithm()}

	data, err := readFile(src)
	if err != nil {
		return stats, err
	}

	meta, err := a.LoadMetadata(src)
	if err != nil {
		return stats, err
	}

	start := time.Now()
	restored, err := a.codec.Decompress(data, meta)
	if err != nil {
		return stats, fmt.Errorf("could not decompress %s: %w", src, err)
	}
	stats.DecompressionTimeNs = time.Since(start).Nanoseconds()

	if err := os.WriteFile(dst, restored, 0o644); err != nil { //nolint: gosec
		return stats, fmt.Errorf("could not write decompressed file: %w", err)
	}

	stats.OriginalSize = int64(len(restored))
	stats.CompressedSize = int64(len(data))

	a.log.Debug().
		Str("src", src).
		Str("dst", dst).
		Int64("restored_size", stats.OriginalSize).
		Dur("duration", time.Duration(stats.DecompressionTimeNs)).
		Msg("file decompressed")

	return stats, nil
}

// LoadMetadata resolves the metadata for the compressed file at path.
//
// Precedence: the sibling document in the configured format, then the sibling in
// the other format, then the last metadata produced by this adapter. Both
// fallbacks are logged at warn level.
func (a *Adapter) LoadMetadata(path string) (compress.Metadata, error) {
	for _, f := range []format.MetadataFormat{a.cfg.MetadataFormat, otherFormat(a.cfg.MetadataFormat)} {
		metaPath := MetadataPath(path, f)
		doc, err := os.ReadFile(metaPath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not read metadata file: %w", err)
		}

		meta, err := metadata.Unmarshal(doc, a.codec.Algorithm(), f)
		if err != nil {
			return nil, fmt.Errorf("could not load %s: %w", metaPath, err)
		}
		if f != a.cfg.MetadataFormat {
			a.log.Warn().
				Str("src", path).
				Str("metadata", metaPath).
				Stringer("configured_format", a.cfg.MetadataFormat).
				Msg("metadata document found only in the other format")
		}

		return meta, nil
	}

	if a.last != nil {
		a.log.Warn().Str("src", path).Msg("no metadata document, using last in-process metadata")
		return a.last, nil
	}

	return nil, fmt.Errorf("%w: metadata for %s", errs.ErrNotFound, path)
}

func otherFormat(f format.MetadataFormat) format.MetadataFormat {
	if f == format.MetadataJSON {
		return format.MetadataCBOR
	}

	return format.MetadataJSON
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	return data, nil
}
