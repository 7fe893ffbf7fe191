// Package compress provides lossless byte codecs that pair a compressed stream with a metadata record.
//
// Every codec turns an arbitrary byte sequence into a headerless compressed stream plus a
// Metadata value holding exactly what the decoder needs. The stream and the metadata are
// always kept together: the stream alone cannot be decoded.
//
// # Overview
//
// Three entropy and dictionary coders are available:
//   - Huffman: static prefix codes derived from byte frequencies
//   - LZW: dictionary coding with fixed 12-bit codes and a 4096-entry cap
//   - Arithmetic: order-0 static model with 32-bit integer interval arithmetic
//
// # Architecture
//
// The package defines one core interface:
//
//	type Codec interface {
//	    Algorithm() format.Algorithm
//	    Compress(data []byte) ([]byte, Metadata, error)
//	    Decompress(data []byte, meta Metadata) ([]byte, error)
//	}
//
// Metadata is a closed set of record types, one per algorithm:
//
//	*HuffmanMetadata     // code table, original bit length, padding
//	*LZWMetadata         // emitted code list, code size, dictionary cap
//	*ArithmeticMetadata  // frequency table, cumulative table, totals
//
// # Supported Algorithms
//
// **Huffman** (format.AlgorithmHuffman)
//
//	codec := compress.NewHuffmanCodec()
//	compressed, meta, _ := codec.Compress(data)
//	original, _ := codec.Decompress(compressed, meta)
//
// Codes are packed most significant bit first; the last byte is zero padded. An input with
// a single distinct byte gets the one-bit code "0".
//
// **LZW** (format.AlgorithmLZW)
//
//	codec := compress.NewLZWCodec()
//	compressed, meta, _ := codec.Compress(data)
//
// The compressed stream is exactly ceil(len(codes)*12/8) bytes. Once the dictionary
// holds 4096 entries it stops growing; encoding continues with the frozen dictionary.
//
// **Arithmetic** (format.AlgorithmArithmetic)
//
//	codec := compress.NewArithmeticCodec()
//	compressed, meta, _ := codec.Compress(data)
//
// Inputs larger than MaxArithmeticSymbols are rejected with errs.ErrInputTooLarge.
// The decoder treats bits past the end of the stream as zero.
//
// # Algorithm Selection Guide
//
// | Data Type              | Recommended | Reason                                  |
// |------------------------|-------------|-----------------------------------------|
// | Natural-language text  | Arithmetic  | Closest to order-0 entropy              |
// | Logs, repeated records | LZW         | Captures recurring substrings           |
// | Small skewed inputs    | Huffman     | Small metadata, simple decoding         |
// | Random or compressed   | none        | Every codec expands high-entropy input  |
//
// # Thread Safety
//
// Codecs are stateless values. Code tables, dictionaries, interval bounds and pending
// bits live inside a single call, so codecs can be shared across goroutines.
//
// # Error Handling
//
// Decompression validates metadata before decoding:
//   - errs.ErrAlgorithmMismatch when the record belongs to another codec
//   - errs.ErrCorruptMetadata when the record is inconsistent or disagrees with the stream
//
// No partial output is returned together with an error.
//
// # Examples
//
// See the compress_demo example for a side-by-side comparison of the three codecs.
package compress
