package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/arloliu/squash/analysis"
	"github.com/arloliu/squash/baseline"
	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/filecodec"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/hash"
	"github.com/arloliu/squash/internal/options"
)

// Analyzer measures codecs on files and keeps every result it produced.
//
// AnalyzeFile and AnalyzeDirectory may be called concurrently.
type Analyzer struct {
	cfg       *Config
	detector  *analysis.Detector
	baselines []baseline.Compressor
	log       zerolog.Logger

	mu      sync.Mutex
	results []FileResult
}

// New creates an Analyzer.
//
// Returns:
//   - *Analyzer: Ready analyzer with an empty result set
//   - error: errs.ErrInvalidConfig or errs.ErrUnsupportedAlgorithm for invalid options
func New(opts ...Option) (*Analyzer, error) {
	cfg, err := options.Build(DefaultConfig, opts...)
	if err != nil {
		return nil, err
	}

	detector := cfg.Detector
	if detector == nil {
		detector, err = analysis.NewDetector()
		if err != nil {
			return nil, fmt.Errorf("could not create detector: %w", err)
		}
	}

	a := &Analyzer{
		cfg:      cfg,
		detector: detector,
		log:      cfg.Logger.With().Str("component", "report").Logger(),
	}
	if cfg.Baselines {
		a.baselines = baseline.All()
	}

	return a, nil
}

// AnalyzeFile round-trips the file at path through every configured codec and baseline.
//
// Codec failures are recorded in the per-algorithm result rather than returned, so one
// failing codec never hides the others.
//
// Returns:
//   - FileResult: Detection info, per-algorithm results and the selected best algorithm
//   - error: errs.ErrNotFound if path does not exist, I/O errors otherwise
func (a *Analyzer) AnalyzeFile(path string) (FileResult, error) {
	res, err := a.analyzeFile(path)
	if err != nil {
		return FileResult{}, err
	}

	a.mu.Lock()
	a.results = append(a.results, res)
	a.mu.Unlock()

	return res, nil
}

// AnalyzeDirectory analyzes every regular file below dir.
//
// When exts is non-empty only files whose extension matches one of them, case-insensitively
// and with or without the leading dot, are analyzed. Files are processed concurrently up to
// the configured concurrency and reported in path order.
//
// Returns:
//   - DirectoryResult: Results of every analyzed file plus the per-algorithm summary
//   - error: errs.ErrNotFound if dir does not exist; otherwise the aggregated per-file
//     failures, which never discard the results of the other files
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, dir string, exts ...string) (DirectoryResult, error) {
	st, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return DirectoryResult{}, fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}
	if err != nil {
		return DirectoryResult{}, fmt.Errorf("could not stat %s: %w", dir, err)
	}
	if !st.IsDir() {
		return DirectoryResult{}, fmt.Errorf("%s is not a directory", dir)
	}

	paths, err := collectFiles(dir, exts)
	if err != nil {
		return DirectoryResult{}, err
	}

	a.log.Info().Str("dir", dir).Int("files", len(paths)).Int("concurrency", a.cfg.Concurrency).Msg("analyzing directory")

	results := make([]FileResult, len(paths))
	failures := make([]error, len(paths))
	done := make([]bool, len(paths))

	sem := semaphore.NewWeighted(int64(a.cfg.Concurrency))
	var wg sync.WaitGroup
	var ctxErr error
	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			ctxErr = err
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			results[i], failures[i] = a.analyzeFile(path)
			done[i] = true
		}()
	}
	wg.Wait()

	out := DirectoryResult{
		Directory: dir,
		Timestamp: time.Now().UTC(),
	}

	var merr *multierror.Error
	for i, path := range paths {
		if !done[i] {
			continue
		}
		if failures[i] != nil {
			out.Failures = append(out.Failures, FileError{Path: path, Error: failures[i].Error()})
			merr = multierror.Append(merr, fmt.Errorf("could not analyze %s: %w", path, failures[i]))
			a.log.Warn().Err(failures[i]).Str("path", path).Msg("file analysis failed")

			continue
		}
		out.Files = append(out.Files, results[i])
	}
	if ctxErr != nil {
		merr = multierror.Append(merr, fmt.Errorf("directory analysis interrupted: %w", ctxErr))
	}

	out.TotalFiles = len(out.Files)
	out.Summary = Summarize(out.Files)

	a.mu.Lock()
	a.results = append(a.results, out.Files...)
	a.mu.Unlock()

	return out, merr.ErrorOrNil()
}

// Results returns a copy of every file result recorded so far.
func (a *Analyzer) Results() []FileResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]FileResult(nil), a.results...)
}

// Reset discards the recorded results.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	a.results = nil
	a.mu.Unlock()
}

func (a *Analyzer) analyzeFile(path string) (FileResult, error) {
	info, err := a.detector.Detect(path)
	if err != nil {
		return FileResult{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("could not read %s: %w", path, err)
	}

	scratch, err := os.MkdirTemp(a.cfg.ScratchDir, "squash-analyze-*")
	if err != nil {
		return FileResult{}, fmt.Errorf("could not create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	res := FileResult{
		FileInfo:  info,
		Timestamp: time.Now().UTC(),
	}

	for _, alg := range a.cfg.Algorithms {
		r := a.runCodec(alg, path, scratch, data)
		if r.Error != "" {
			a.log.Debug().Str("path", path).Str("algorithm", r.Algorithm).Str("error", r.Error).Msg("codec run failed")
		}
		res.Algorithms = append(res.Algorithms, r)
	}
	for _, c := range a.baselines {
		res.Baselines = append(res.Baselines, runBaseline(c, data))
	}

	res.BestAlgorithm = a.cfg.Selector(res.Algorithms)

	a.log.Debug().
		Str("path", path).
		Str("category", string(info.Category)).
		Str("best", res.BestAlgorithm).
		Msg("file analyzed")

	return res, nil
}

func (a *Analyzer) runCodec(alg format.Algorithm, path, scratch string, data []byte) AlgorithmResult {
	result := AlgorithmResult{
		Algorithm:    alg.Name(),
		OriginalSize: int64(len(data)),
	}

	adapter, err := filecodec.ForAlgorithm(alg,
		filecodec.WithMetadataFormat(a.cfg.MetadataFormat),
		filecodec.WithLogger(a.log),
	)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	compressed := filepath.Join(scratch, alg.Name()+".compressed")
	restored := filepath.Join(scratch, alg.Name()+".restored")

	cstats, err := adapter.CompressFile(path, compressed)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	dstats, err := adapter.DecompressFile(compressed, restored)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	out, err := os.ReadFile(restored)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	fill(&result, cstats.CompressedSize,
		time.Duration(cstats.CompressionTimeNs), time.Duration(dstats.DecompressionTimeNs))
	result.IntegrityCheck = sameContent(data, out)

	return result
}

func runBaseline(c baseline.Compressor, data []byte) AlgorithmResult {
	result := AlgorithmResult{
		Algorithm:    c.Name(),
		Baseline:     true,
		OriginalSize: int64(len(data)),
	}

	start := time.Now()
	compressed, err := c.Compress(data)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	ct := time.Since(start)

	start = time.Now()
	out, err := c.Decompress(compressed)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	dt := time.Since(start)

	fill(&result, int64(len(compressed)), ct, dt)
	result.IntegrityCheck = sameContent(data, out)

	return result
}

func fill(r *AlgorithmResult, compressedSize int64, ct, dt time.Duration) {
	r.CompressedSize = compressedSize
	r.CompressionTime = ct
	r.DecompressionTime = dt
	r.SpaceSaved = r.OriginalSize - compressedSize
	if r.OriginalSize > 0 {
		r.CompressionRatio = float64(compressedSize) / float64(r.OriginalSize)
		r.SpaceSavedPercent = float64(r.SpaceSaved) / float64(r.OriginalSize) * 100
	}
	r.CompressionSpeed = speed(r.OriginalSize, ct)
	r.DecompressionSpeed = speed(r.OriginalSize, dt)
}

// speed returns bytes per second, 0 for an unmeasurably short run.
func speed(n int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}

	return float64(n) / d.Seconds()
}

// sameContent compares length and xxHash64 of two byte slices.
func sameContent(original, restored []byte) bool {
	if len(original) != len(restored) {
		return false
	}

	return hash.Checksum(original) == hash.Checksum(restored)
}

func collectFiles(dir string, exts []string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		want[ext] = true
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(want) > 0 && !want[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	return paths, nil
}
