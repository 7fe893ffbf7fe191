package baseline

import (
	"bytes"
	"testing"
)

func BenchmarkCompressors_Compress(b *testing.B) {
	data := bytes.Repeat([]byte("squash baseline benchmark payload 0123456789 "), 1024)

	for _, c := range All() {
		b.Run(c.Name(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()

			for b.Loop() {
				_, _ = c.Compress(data)
			}
		})
	}
}

func BenchmarkCompressors_Decompress(b *testing.B) {
	data := bytes.Repeat([]byte("squash baseline benchmark payload 0123456789 "), 1024)

	for _, c := range All() {
		compressed, err := c.Compress(data)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(c.Name(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()

			for b.Loop() {
				_, _ = c.Decompress(compressed)
			}
		})
	}
}
