package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/hash"
)

func newTestSimulator(t *testing.T, options ...Option) (*Simulator, string) {
	t.Helper()

	bucket := filepath.Join(t.TempDir(), "bucket")
	options = append([]Option{WithBucket(bucket), WithLatency(false)}, options...)
	sim, err := New(zerolog.Nop(), options...)
	require.NoError(t, err)

	return sim, bucket
}

func writeLocal(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func sampleData() []byte {
	return bytes.Repeat([]byte("cloud bound payload, highly repetitive. "), 300)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		option Option
		fields []string
	}{
		{"empty bucket", WithBucket(""), []string{"Config.BucketDir"}},
		{"bandwidth", WithBandwidth(0, -1), []string{"Config.UploadMbps", "Config.DownloadMbps"}},
		{"pricing", WithPricing(Pricing{EgressPerGB: -0.1}), []string{"Config.Pricing.EgressPerGB"}},
		{"history", WithHistorySize(0), []string{"Config.HistorySize"}},
		{"cache", WithCacheSize(0), []string{"Config.CacheSize"}},
		{"latency cap", WithMaxLatency(-time.Second), []string{"Config.MaxLatency"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := New(zerolog.Nop(), WithBucket(t.TempDir()), tt.option)
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
			require.Nil(t, sim)
			for _, field := range tt.fields {
				assert.Contains(t, err.Error(), field)
			}
		})
	}
}

func TestSimulator_RawRoundTrip(t *testing.T) {
	sim, bucket := newTestSimulator(t)
	data := sampleData()
	src := writeLocal(t, "report.txt", data)

	up, err := sim.Upload(context.Background(), src, UploadOptions{})
	require.NoError(t, err)
	require.Equal(t, "upload", up.Direction)
	require.Equal(t, "report.txt", up.Object)
	require.Equal(t, int64(len(data)), up.SizeBytes)
	require.False(t, up.Compressed)
	require.Zero(t, up.CostUSD)
	require.FileExists(t, filepath.Join(bucket, "report.txt"))

	dst := filepath.Join(t.TempDir(), "restored.txt")
	down, err := sim.Download(context.Background(), "report.txt", dst)
	require.NoError(t, err)
	require.Equal(t, "download", down.Direction)
	require.InDelta(t, float64(len(data))/bytesPerGB*0.09, down.CostUSD, 1e-15)

	restored, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, data, restored)
}

func TestSimulator_CompressedRoundTrip(t *testing.T) {
	for _, alg := range format.Algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			sim, bucket := newTestSimulator(t)
			data := sampleData()
			src := writeLocal(t, "data.log", data)

			up, err := sim.Upload(context.Background(), src, UploadOptions{
				ObjectName: "backup.log",
				Compress:   true,
				Algorithm:  alg,
			})
			require.NoError(t, err)
			require.True(t, up.Compressed)
			require.Equal(t, alg, up.Algorithm)
			require.Equal(t, "backup.log"+CompressedSuffix, up.Object)
			require.Less(t, up.SizeBytes, int64(len(data)))
			require.Equal(t, int64(len(data)), up.OriginalSize)

			require.FileExists(t, filepath.Join(bucket, "backup.log.compressed"))
			require.FileExists(t, filepath.Join(bucket, "backup.log.metadata.json"))
			require.FileExists(t, filepath.Join(bucket, "backup.log.info.json"))
			require.NoFileExists(t, filepath.Join(bucket, "backup.log"))

			record, err := os.ReadFile(filepath.Join(bucket, "backup.log.info.json"))
			require.NoError(t, err)
			var info ObjectInfo
			require.NoError(t, json.Unmarshal(record, &info))
			require.Equal(t, "data.log", info.OriginalName)
			require.Equal(t, int64(len(data)), info.OriginalSize)
			require.Equal(t, alg, info.Algorithm)
			require.Equal(t, hash.Checksum(data), info.Checksum)

			dst := filepath.Join(t.TempDir(), "restored.log")
			down, err := sim.Download(context.Background(), "backup.log", dst)
			require.NoError(t, err)
			require.True(t, down.Compressed)
			require.Equal(t, up.SizeBytes, down.SizeBytes)
			require.Equal(t, int64(len(data)), down.OriginalSize)

			restored, err := os.ReadFile(dst)
			require.NoError(t, err)
			require.Equal(t, data, restored)
		})
	}
}

func TestSimulator_DefaultAlgorithm(t *testing.T) {
	sim, _ := newTestSimulator(t)
	src := writeLocal(t, "a.txt", sampleData())

	up, err := sim.Upload(context.Background(), src, UploadOptions{Compress: true})
	require.NoError(t, err)
	require.Equal(t, format.AlgorithmHuffman, up.Algorithm)
}

func TestSimulator_ChecksumMismatch(t *testing.T) {
	sim, bucket := newTestSimulator(t)
	src := writeLocal(t, "a.txt", sampleData())

	_, err := sim.Upload(context.Background(), src, UploadOptions{Compress: true, Algorithm: format.AlgorithmLZW})
	require.NoError(t, err)

	infoPath := filepath.Join(bucket, "a.txt"+InfoSuffix)
	record, err := os.ReadFile(infoPath)
	require.NoError(t, err)
	var info ObjectInfo
	require.NoError(t, json.Unmarshal(record, &info))
	info.Checksum++
	record, err = json.Marshal(info)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(infoPath, record, 0o600))

	// a fresh simulator reads the tampered record from disk
	fresh, err := New(zerolog.Nop(), WithBucket(bucket), WithLatency(false))
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "out.txt")
	_, err = fresh.Download(context.Background(), "a.txt", dst)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	require.NoFileExists(t, dst)
}

func TestSimulator_CorruptInfoRecord(t *testing.T) {
	sim, bucket := newTestSimulator(t)
	require.NoError(t, os.WriteFile(filepath.Join(bucket, "x"+InfoSuffix), []byte("{"), 0o600))

	_, err := sim.Download(context.Background(), "x", filepath.Join(t.TempDir(), "x"))
	require.ErrorIs(t, err, errs.ErrCorruptMetadata)
}

func TestSimulator_NotFound(t *testing.T) {
	sim, bucket := newTestSimulator(t)

	_, err := sim.Upload(context.Background(), filepath.Join(t.TempDir(), "missing"), UploadOptions{})
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = sim.Download(context.Background(), "missing", filepath.Join(t.TempDir(), "out"))
	require.ErrorIs(t, err, errs.ErrNotFound)

	// info record without its compressed stream
	src := writeLocal(t, "a.txt", sampleData())
	_, err = sim.Upload(context.Background(), src, UploadOptions{Compress: true})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(bucket, "a.txt"+CompressedSuffix)))

	_, err = sim.Download(context.Background(), "a.txt", filepath.Join(t.TempDir(), "out"))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSimulator_InvalidObjectName(t *testing.T) {
	sim, _ := newTestSimulator(t)
	src := writeLocal(t, "a.txt", []byte("x"))

	for _, name := range []string{"../escape", "dir/file", "..", `a\b`} {
		_, err := sim.Upload(context.Background(), src, UploadOptions{ObjectName: name})
		require.Error(t, err, name)

		_, err = sim.Download(context.Background(), name, filepath.Join(t.TempDir(), "out"))
		require.Error(t, err, name)
	}
}

func TestSimulator_RawUploadReplacesCompressed(t *testing.T) {
	sim, bucket := newTestSimulator(t)
	src := writeLocal(t, "a.txt", sampleData())

	_, err := sim.Upload(context.Background(), src, UploadOptions{Compress: true})
	require.NoError(t, err)
	_, compressed, err := sim.Info("a.txt")
	require.NoError(t, err)
	require.True(t, compressed)

	_, err = sim.Upload(context.Background(), src, UploadOptions{})
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(bucket, "a.txt"+CompressedSuffix))
	require.NoFileExists(t, filepath.Join(bucket, "a.txt"+InfoSuffix))

	_, compressed, err = sim.Info("a.txt")
	require.NoError(t, err)
	require.False(t, compressed)

	// and back again
	_, err = sim.Upload(context.Background(), src, UploadOptions{Compress: true})
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(bucket, "a.txt"))
}

func TestSimulator_InfoCache(t *testing.T) {
	sim, bucket := newTestSimulator(t, WithCacheSize(1))
	src := writeLocal(t, "a.txt", sampleData())

	_, err := sim.Upload(context.Background(), src, UploadOptions{ObjectName: "one", Compress: true})
	require.NoError(t, err)

	// served from the cache once the record is gone from disk
	require.NoError(t, os.Remove(filepath.Join(bucket, "one"+InfoSuffix)))
	info, compressed, err := sim.Info("one")
	require.NoError(t, err)
	require.True(t, compressed)
	require.Equal(t, "one", info.Object)

	// a second upload evicts the first entry
	_, err = sim.Upload(context.Background(), src, UploadOptions{ObjectName: "two", Compress: true})
	require.NoError(t, err)
	_, compressed, err = sim.Info("one")
	require.NoError(t, err)
	require.False(t, compressed)
}

func TestSimulator_Summary(t *testing.T) {
	pricing := Pricing{StoragePerGBMonth: 1, EgressPerGB: 0, IngressPerGB: 0.5}
	sim, _ := newTestSimulator(t, WithPricing(pricing))

	sum, err := sim.Summary()
	require.NoError(t, err)
	require.Empty(t, sum.Objects)
	require.Zero(t, sum.TotalBytes)

	raw := writeLocal(t, "raw.bin", []byte("0123456789"))
	up, err := sim.Upload(context.Background(), raw, UploadOptions{})
	require.NoError(t, err)
	require.InDelta(t, 10.0/bytesPerGB*0.5, up.CostUSD, 1e-18)

	_, err = sim.Upload(context.Background(), writeLocal(t, "text.txt", sampleData()), UploadOptions{Compress: true})
	require.NoError(t, err)

	sum, err = sim.Summary()
	require.NoError(t, err)
	require.Len(t, sum.Objects, 4)
	require.Equal(t, "raw.bin", sum.Objects[0].Object)
	require.Equal(t, int64(10), sum.Objects[0].SizeBytes)

	var total int64
	for _, obj := range sum.Objects {
		total += obj.SizeBytes
	}
	require.Equal(t, total, sum.TotalBytes)
	require.InDelta(t, float64(total)/bytesPerGB, sum.StorageGB, 1e-18)
	require.InDelta(t, sum.StorageGB, sum.MonthlyCostUSD, 1e-18)
}

func TestSimulator_History(t *testing.T) {
	sim, _ := newTestSimulator(t, WithHistorySize(2))
	require.Empty(t, sim.History())

	for _, name := range []string{"a", "b", "c"} {
		_, err := sim.Upload(context.Background(), writeLocal(t, name, []byte(name)), UploadOptions{})
		require.NoError(t, err)
	}

	history := sim.History()
	require.Len(t, history, 2)
	require.Equal(t, "b", history[0].Object)
	require.Equal(t, "c", history[1].Object)
}

func TestSimulator_LatencyIsCapped(t *testing.T) {
	sim, _ := newTestSimulator(t, WithLatency(true), WithBandwidth(0.001, 0.001), WithMaxLatency(30*time.Millisecond))
	src := writeLocal(t, "a.bin", make([]byte, 4096))

	start := time.Now()
	up, err := sim.Upload(context.Background(), src, UploadOptions{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.Less(t, time.Since(start), 2*time.Second)
	require.GreaterOrEqual(t, up.Seconds, 0.03)
	require.Positive(t, up.ThroughputMbps)
}

func TestSimulator_LatencyHonorsContext(t *testing.T) {
	sim, _ := newTestSimulator(t, WithLatency(true), WithBandwidth(0.001, 0.001), WithMaxLatency(time.Minute))
	src := writeLocal(t, "a.bin", make([]byte, 4096))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sim.Upload(ctx, src, UploadOptions{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, sim.History())
}

func TestSimulator_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sim, _ := newTestSimulator(t, WithRegisterer(reg))
	data := sampleData()
	src := writeLocal(t, "a.txt", data)

	up, err := sim.Upload(context.Background(), src, UploadOptions{Compress: true})
	require.NoError(t, err)
	_, err = sim.Download(context.Background(), "a.txt", filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	sum, err := sim.Summary()
	require.NoError(t, err)

	m := sim.metrics
	require.InDelta(t, 1, testutil.ToFloat64(m.transfers.WithLabelValues("upload")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.transfers.WithLabelValues("download")), 0)
	require.InDelta(t, float64(up.SizeBytes), testutil.ToFloat64(m.bytes.WithLabelValues("upload")), 0)
	require.InDelta(t, float64(int64(len(data))-up.SizeBytes), testutil.ToFloat64(m.saved), 0)
	require.InDelta(t, float64(sum.TotalBytes), testutil.ToFloat64(m.storedBytes), 0)

	count, err := testutil.GatherAndCount(reg, "squash_storage_transfers_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestTransferTime(t *testing.T) {
	tests := []struct {
		size int64
		mbps float64
		want time.Duration
	}{
		{0, 100, 0},
		{1_000_000, 8, time.Second},
		{125_000, 100, 10 * time.Millisecond},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, transferTime(tt.size, tt.mbps))
	}
}
