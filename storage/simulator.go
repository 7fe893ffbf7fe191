package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/deque"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/arloliu/squash/compress"
	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/hash"
	"github.com/arloliu/squash/metadata"
)

// Object file suffixes of a compressed upload.
const (
	CompressedSuffix = ".compressed"
	MetadataSuffix   = ".metadata.json"
	InfoSuffix       = ".info.json"
)

const (
	directionUpload   = "upload"
	directionDownload = "download"

	bytesPerGB = 1024 * 1024 * 1024
)

// ObjectInfo is the info record stored next to a compressed object.
type ObjectInfo struct {
	Object         string           `json:"object"`
	OriginalName   string           `json:"original_name"`
	OriginalSize   int64            `json:"original_size"`
	CompressedSize int64            `json:"compressed_size"`
	Algorithm      format.Algorithm `json:"algorithm"`
	Checksum       uint64           `json:"checksum"`
	UploadedAt     time.Time        `json:"uploaded_at"`
}

// UploadOptions controls a single upload.
type UploadOptions struct {
	// ObjectName defaults to the base name of the local file.
	ObjectName string

	// Compress stores the object compressed with Algorithm.
	Compress bool

	// Algorithm defaults to Huffman when Compress is set.
	Algorithm format.Algorithm
}

// TransferResult describes one completed upload or download.
type TransferResult struct {
	Direction      string           `json:"direction"`
	Object         string           `json:"object"`
	SizeBytes      int64            `json:"size_bytes"`
	OriginalSize   int64            `json:"original_size"`
	Compressed     bool             `json:"compressed"`
	Algorithm      format.Algorithm `json:"algorithm,omitempty"`
	Seconds        float64          `json:"seconds"`
	ThroughputMbps float64          `json:"throughput_mbps"`
	CostUSD        float64          `json:"cost_usd"`
}

// ObjectEntry is one file in the bucket.
type ObjectEntry struct {
	Object    string `json:"object"`
	SizeBytes int64  `json:"size_bytes"`
}

// Summary describes the bucket contents and their monthly cost.
type Summary struct {
	Objects        []ObjectEntry `json:"objects"`
	TotalBytes     int64         `json:"total_bytes"`
	StorageGB      float64       `json:"storage_gb"`
	MonthlyCostUSD float64       `json:"estimated_monthly_cost_usd"`
}

// Simulator is a local directory posing as a cloud bucket.
type Simulator struct {
	log     zerolog.Logger
	cfg     Config
	metrics *metrics

	cache *lru.Cache // object name -> ObjectInfo

	mutex   *sync.Mutex // guards history
	history *deque.Deque
}

// New creates a Simulator and its bucket directory.
func New(log zerolog.Logger, options ...Option) (*Simulator, error) {
	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.BucketDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create bucket directory: %w", err)
	}

	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create info cache: %w", err)
	}

	s := Simulator{
		log:     log.With().Str("component", "storage").Logger(),
		cfg:     cfg,
		metrics: newMetrics(cfg.Registerer),
		cache:   cache,
		mutex:   &sync.Mutex{},
		history: deque.New(),
	}

	return &s, nil
}

// Upload stores the local file as an object.
//
// Returns:
//   - TransferResult: Transferred size, time, throughput and ingress cost
//   - error: errs.ErrNotFound if localPath does not exist, codec or I/O errors otherwise
func (s *Simulator) Upload(ctx context.Context, localPath string, opts UploadOptions) (TransferResult, error) {
	data, err := os.ReadFile(localPath)
	if errors.Is(err, fs.ErrNotExist) {
		return TransferResult{}, fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}
	if err != nil {
		return TransferResult{}, fmt.Errorf("could not read %s: %w", localPath, err)
	}

	name := opts.ObjectName
	if name == "" {
		name = filepath.Base(localPath)
	}
	if err := checkObjectName(name); err != nil {
		return TransferResult{}, err
	}

	start := time.Now()

	result := TransferResult{
		Direction:    directionUpload,
		Object:       name,
		OriginalSize: int64(len(data)),
	}

	if opts.Compress {
		alg := opts.Algorithm
		if alg == 0 {
			alg = format.AlgorithmHuffman
		}
		info, err := s.putCompressed(name, filepath.Base(localPath), alg, data)
		if err != nil {
			return TransferResult{}, err
		}
		result.Object = name + CompressedSuffix
		result.SizeBytes = info.CompressedSize
		result.Compressed = true
		result.Algorithm = alg

		if saved := info.OriginalSize - info.CompressedSize; saved > 0 {
			s.metrics.saved.Add(float64(saved))
		}
	} else {
		if err := s.putRaw(name, data); err != nil {
			return TransferResult{}, err
		}
		result.SizeBytes = int64(len(data))
	}

	if err := s.wait(ctx, result.SizeBytes, s.cfg.UploadMbps); err != nil {
		return TransferResult{}, err
	}

	s.finish(&result, start, s.cfg.Pricing.IngressPerGB)

	s.log.Info().
		Str("object", result.Object).
		Int64("size", result.SizeBytes).
		Bool("compressed", result.Compressed).
		Float64("seconds", result.Seconds).
		Msg("object uploaded")

	return result, nil
}

// Download restores object into localPath.
//
// Compressed objects are decompressed and checked against their recorded checksum.
// Objects without an info record are copied as stored.
//
// Returns:
//   - TransferResult: Transferred size, time, throughput and egress cost
//   - error: errs.ErrNotFound if the object is missing, errs.ErrChecksumMismatch if the
//     restored content differs from the uploaded one
func (s *Simulator) Download(ctx context.Context, object, localPath string) (TransferResult, error) {
	if err := checkObjectName(object); err != nil {
		return TransferResult{}, err
	}

	info, compressed, err := s.Info(object)
	if err != nil {
		return TransferResult{}, err
	}

	start := time.Now()

	result := TransferResult{
		Direction: directionDownload,
		Object:    object,
	}

	var data []byte
	if compressed {
		data, err = s.getCompressed(object, info)
		if err != nil {
			return TransferResult{}, err
		}
		result.Object = object + CompressedSuffix
		result.SizeBytes = info.CompressedSize
		result.Compressed = true
		result.Algorithm = info.Algorithm
	} else {
		data, err = readObject(s.path(object))
		if err != nil {
			return TransferResult{}, err
		}
		result.SizeBytes = int64(len(data))
	}
	result.OriginalSize = int64(len(data))

	if err := s.wait(ctx, result.SizeBytes, s.cfg.DownloadMbps); err != nil {
		return TransferResult{}, err
	}

	if err := os.WriteFile(localPath, data, 0o644); err != nil { //nolint: gosec
		return TransferResult{}, fmt.Errorf("could not write %s: %w", localPath, err)
	}

	s.finish(&result, start, s.cfg.Pricing.EgressPerGB)

	s.log.Info().
		Str("object", result.Object).
		Int64("size", result.SizeBytes).
		Bool("compressed", result.Compressed).
		Float64("seconds", result.Seconds).
		Msg("object downloaded")

	return result, nil
}

// Info returns the info record of object, and whether the object is stored compressed.
func (s *Simulator) Info(object string) (ObjectInfo, bool, error) {
	if v, ok := s.cache.Get(object); ok {
		info, ok := v.(ObjectInfo)
		if ok {
			return info, true, nil
		}
		s.log.Error().Str("object", object).Msg("unexpected info cache entry")
		s.cache.Remove(object)
	}

	doc, err := os.ReadFile(s.path(object + InfoSuffix))
	if errors.Is(err, fs.ErrNotExist) {
		return ObjectInfo{}, false, nil
	}
	if err != nil {
		return ObjectInfo{}, false, fmt.Errorf("could not read info record: %w", err)
	}

	var info ObjectInfo
	if err := json.Unmarshal(doc, &info); err != nil {
		return ObjectInfo{}, false, fmt.Errorf("%w: info record of %s: %w", errs.ErrCorruptMetadata, object, err)
	}
	s.cache.Add(object, info)

	return info, true, nil
}

// Summary lists the bucket contents and estimates the monthly storage cost.
func (s *Simulator) Summary() (Summary, error) {
	entries, err := os.ReadDir(s.cfg.BucketDir)
	if err != nil {
		return Summary{}, fmt.Errorf("could not list bucket: %w", err)
	}

	sum := Summary{Objects: []ObjectEntry{}}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			return Summary{}, fmt.Errorf("could not stat %s: %w", entry.Name(), err)
		}
		sum.Objects = append(sum.Objects, ObjectEntry{Object: entry.Name(), SizeBytes: fi.Size()})
		sum.TotalBytes += fi.Size()
	}
	sum.StorageGB = gigabytes(sum.TotalBytes)
	sum.MonthlyCostUSD = sum.StorageGB * s.cfg.Pricing.StoragePerGBMonth

	s.metrics.storedBytes.Set(float64(sum.TotalBytes))

	return sum, nil
}

// History returns the most recent transfers, oldest first.
func (s *Simulator) History() []TransferResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]TransferResult, 0, s.history.Len())
	for i := 0; i < s.history.Len(); i++ {
		out = append(out, s.history.At(i).(TransferResult))
	}

	return out
}

func (s *Simulator) putCompressed(name, originalName string, alg format.Algorithm, data []byte) (ObjectInfo, error) {
	codec, err := compress.CreateCodec(alg)
	if err != nil {
		return ObjectInfo{}, err
	}

	compressed, meta, err := codec.Compress(data)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("could not compress %s: %w", name, err)
	}
	doc, err := metadata.Marshal(meta, format.MetadataJSON)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("could not encode metadata for %s: %w", name, err)
	}

	info := ObjectInfo{
		Object:         name,
		OriginalName:   originalName,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(compressed)),
		Algorithm:      alg,
		Checksum:       hash.Checksum(data),
		UploadedAt:     time.Now().UTC(),
	}
	record, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("could not encode info record: %w", err)
	}

	if err := writeObject(s.path(name+CompressedSuffix), compressed); err != nil {
		return ObjectInfo{}, err
	}
	if err := writeObject(s.path(name+MetadataSuffix), doc); err != nil {
		return ObjectInfo{}, err
	}
	if err := writeObject(s.path(name+InfoSuffix), record); err != nil {
		return ObjectInfo{}, err
	}
	s.cache.Add(name, info)

	// a raw upload of the same name is superseded
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ObjectInfo{}, fmt.Errorf("could not remove stale raw object: %w", err)
	}

	return info, nil
}

// putRaw stores data under name and drops any compressed upload of the same name.
func (s *Simulator) putRaw(name string, data []byte) error {
	if err := writeObject(s.path(name), data); err != nil {
		return err
	}

	s.cache.Remove(name)
	for _, suffix := range []string{InfoSuffix, MetadataSuffix, CompressedSuffix} {
		err := os.Remove(s.path(name + suffix))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not remove stale %s object: %w", suffix, err)
		}
	}

	return nil
}

func (s *Simulator) getCompressed(object string, info ObjectInfo) ([]byte, error) {
	compressed, err := readObject(s.path(object + CompressedSuffix))
	if err != nil {
		return nil, err
	}
	doc, err := readObject(s.path(object + MetadataSuffix))
	if err != nil {
		return nil, err
	}

	meta, err := metadata.Unmarshal(doc, info.Algorithm, format.MetadataJSON)
	if err != nil {
		return nil, fmt.Errorf("could not load metadata of %s: %w", object, err)
	}
	codec, err := compress.CreateCodec(info.Algorithm)
	if err != nil {
		return nil, err
	}
	data, err := codec.Decompress(compressed, meta)
	if err != nil {
		return nil, fmt.Errorf("could not decompress %s: %w", object, err)
	}

	if int64(len(data)) != info.OriginalSize || hash.Checksum(data) != info.Checksum {
		return nil, fmt.Errorf("%w: %s", errs.ErrChecksumMismatch, object)
	}

	return data, nil
}

// wait sleeps for the simulated transfer time of size bytes, capped at MaxLatency.
func (s *Simulator) wait(ctx context.Context, size int64, mbps float64) error {
	if !s.cfg.SimulateLatency {
		return nil
	}

	d := min(transferTime(size, mbps), s.cfg.MaxLatency)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("transfer interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (s *Simulator) finish(result *TransferResult, start time.Time, pricePerGB float64) {
	elapsed := time.Since(start)
	result.Seconds = elapsed.Seconds()
	if result.Seconds > 0 {
		result.ThroughputMbps = float64(result.SizeBytes) * 8 / 1_000_000 / result.Seconds
	}
	result.CostUSD = gigabytes(result.SizeBytes) * pricePerGB

	s.metrics.transfer(result.Direction, result.SizeBytes, result.CostUSD)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.history.PushBack(*result)
	for s.history.Len() > s.cfg.HistorySize {
		s.history.PopFront()
	}
}

func (s *Simulator) path(object string) string {
	return filepath.Join(s.cfg.BucketDir, object)
}

// transferTime is the time needed to move size bytes at mbps megabits per second.
func transferTime(size int64, mbps float64) time.Duration {
	seconds := float64(size) * 8 / (mbps * 1_000_000)

	return time.Duration(seconds * float64(time.Second))
}

func gigabytes(n int64) float64 {
	return float64(n) / bytesPerGB
}

func checkObjectName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid object name %q", name)
	}

	return nil
}

func readObject(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	return data, nil
}

func writeObject(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	return nil
}
