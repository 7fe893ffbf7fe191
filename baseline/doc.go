// Package baseline wraps general-purpose compressors used as a yardstick for the squash codecs.
//
// Baseline compressors are never used to store data. The report package runs them next to
// the Huffman, LZW and arithmetic codecs so that results can be read against well-known
// industrial ratios:
//   - Zstd: klauspost/compress/zstd (or valyala/gozstd with the gozstd build tag)
//   - S2: klauspost/compress/s2
//   - LZ4: pierrec/lz4/v4 block format
//
// Unlike compress.Codec, a baseline compressor carries its framing inside the stream and needs
// no metadata record.
package baseline
