package compress

import (
	"fmt"
	"testing"

	"github.com/arloliu/squash/format"
)

// generateBenchmarkData creates test data for benchmarks
func generateBenchmarkData(size int, compressibility string) []byte {
	data := make([]byte, size)

	switch compressibility {
	case "highly_compressible":
		// All zeros - maximum compression
		// data already initialized to zeros
	case "compressible":
		// Repeated pattern - good compression
		pattern := []byte("2024-05-01T12:00:00Z INFO request served path=/api/v1/items status=200")
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	case "semi_compressible":
		// Semi-random data - moderate compression
		for i := range data {
			if i%100 < 50 {
				data[i] = byte(i % 256)
			} else {
				data[i] = byte((i*7 + i*i) % 256)
			}
		}
	default:
		// Default to incompressible
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

var (
	benchSizes = []int{
		1024,   // 1 KB
		16384,  // 16 KB
		262144, // 256 KB
	}

	benchCompressibilities = []string{
		"highly_compressible",
		"compressible",
		"semi_compressible",
		"incompressible",
	}
)

// BenchmarkAllCodecs_Compress benchmarks compression for all codecs with various data patterns
func BenchmarkAllCodecs_Compress(b *testing.B) {
	for _, alg := range format.Algorithms {
		codec, _ := CreateCodec(alg)

		b.Run(alg.String(), func(b *testing.B) {
			for _, size := range benchSizes {
				for _, comp := range benchCompressibilities {
					b.Run(fmt.Sprintf("%dKB_%s", size/1024, comp), func(b *testing.B) {
						data := generateBenchmarkData(size, comp)

						b.ReportAllocs()
						b.SetBytes(int64(len(data)))

						for b.Loop() {
							_, _, err := codec.Compress(data)
							if err != nil {
								b.Fatal(err)
							}
						}
					})
				}
			}
		})
	}
}

// BenchmarkAllCodecs_Decompress benchmarks decompression for all codecs
func BenchmarkAllCodecs_Decompress(b *testing.B) {
	for _, alg := range format.Algorithms {
		codec, _ := CreateCodec(alg)

		b.Run(alg.String(), func(b *testing.B) {
			for _, size := range benchSizes {
				for _, comp := range benchCompressibilities {
					b.Run(fmt.Sprintf("%dKB_%s", size/1024, comp), func(b *testing.B) {
						data := generateBenchmarkData(size, comp)

						// Pre-compress the data
						compressed, meta, err := codec.Compress(data)
						if err != nil {
							b.Fatal(err)
						}

						b.ReportAllocs()
						b.SetBytes(int64(len(data)))

						for b.Loop() {
							_, err := codec.Decompress(compressed, meta)
							if err != nil {
								b.Fatal(err)
							}
						}
					})
				}
			}
		})
	}
}

// BenchmarkCompressionRatio reports the compression ratio of each codec as a custom metric.
func BenchmarkCompressionRatio(b *testing.B) {
	const size = 65536

	for _, alg := range format.Algorithms {
		codec, _ := CreateCodec(alg)

		for _, comp := range benchCompressibilities {
			b.Run(fmt.Sprintf("%s/%s", alg, comp), func(b *testing.B) {
				data := generateBenchmarkData(size, comp)

				var compressed []byte
				for b.Loop() {
					compressed, _, _ = codec.Compress(data)
				}

				stats := CompressionStats{OriginalSize: size, CompressedSize: int64(len(compressed))}
				b.ReportMetric(stats.CompressionRatio(), "ratio")
			})
		}
	}
}
