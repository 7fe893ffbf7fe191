// Package errs defines the sentinel errors shared by squash packages.
//
// Errors are always wrapped with context using fmt.Errorf and %w, so callers
// should match them with errors.Is:
//
//	if errors.Is(err, errs.ErrCorruptMetadata) {
//	    // metadata must be regenerated
//	}
package errs

import "errors"

var (
	// ErrNotFound is returned when an input file, compressed artifact or metadata record is missing.
	ErrNotFound = errors.New("not found")

	// ErrCorruptMetadata is returned when a required metadata field is absent or malformed,
	// or when the metadata disagrees with the compressed stream.
	ErrCorruptMetadata = errors.New("corrupt metadata")

	// ErrUnsupportedAlgorithm is returned for algorithms outside the supported set.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrAlgorithmMismatch is returned when metadata produced by one codec is given to another.
	ErrAlgorithmMismatch = errors.New("metadata algorithm mismatch")

	// ErrInputTooLarge is returned when the input exceeds what a codec can model.
	ErrInputTooLarge = errors.New("input too large")

	// ErrChecksumMismatch is returned when restored content does not hash to the recorded checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)
