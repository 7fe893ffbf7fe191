// Package metadata persists compress.Metadata records as JSON or CBOR documents.
//
// # Record Layout
//
// Every record is a flat map keyed by the field names below, plus an "algorithm" field
// naming the producing codec:
//
//	Huffman:    huffman_codes (symbol -> bit string), original_length, padding
//	LZW:        compressed_codes (ordered codes), code_size, max_dict_size
//	Arithmetic: freq_table, cumulative_freq (symbol -> int), total_freq, total_symbols
//
// # Symbol Keys
//
// JSON object keys are strings, so symbol tables are written with decimal string keys
// ("65" for 'A'). CBOR keeps native integer keys. On load, CoerceKeys converts every
// numeric-looking key back to an int, recursively through nested maps and sequences, so
// both formats share a single record-to-metadata conversion. This coercion is part of the
// format: a JSON document whose symbol keys are not decimal integers is rejected.
//
// # Errors
//
// Absent or malformed required fields yield errs.ErrCorruptMetadata. A record whose
// "algorithm" field names another codec yields errs.ErrAlgorithmMismatch.
package metadata
